package bind

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/screwyprof/unstaker/web/api"
	"github.com/screwyprof/unstaker/web/status"
)

// Sentinel errors for request binding
var (
	ErrInvalidPage    = errors.New("invalid page parameter")
	ErrInvalidPerPage = errors.New("invalid per_page parameter")

	ErrNotNumeric  = errors.New("must be numeric")
	ErrNotPositive = errors.New("must be positive")
)

// GetWeightsRequest binds the query string with defaults
func GetWeightsRequest(r *http.Request) (api.WeightsRequest, error) {
	query := r.URL.Query()
	req := api.WeightsRequest{
		Coldkey: query.Get("coldkey"),
		Page:    status.DefaultPage,
		PerPage: status.DefaultPerPage,
	}

	if v := query.Get("page"); v != "" {
		page, err := parsePositive(v)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrInvalidPage, err)
		}
		req.Page = page
	}

	if v := query.Get("per_page"); v != "" {
		perPage, err := parsePositive(v)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrInvalidPerPage, err)
		}
		req.PerPage = perPage
	}

	return req, nil
}

func parsePositive(v string) (uint64, error) {
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, ErrNotNumeric
	}
	if n == 0 {
		return 0, ErrNotPositive
	}
	return n, nil
}

// GetWeightsResponse binds a page of slot weights to the API format
func GetWeightsResponse(page *status.WeightsPage) api.WeightsResponse {
	weights := make([]api.Weight, len(page.Slots))
	for i, s := range page.Slots {
		weights[i] = api.Weight{UID: s.UID, Coldkey: s.Coldkey, Weight: s.Weight}
	}

	c := page.Cycle
	return api.WeightsResponse{
		Cycle: api.Cycle{
			Netuid:         c.Netuid,
			Block:          c.Block,
			StartBlock:     c.StartBlock,
			Tempo:          c.Tempo,
			TotalScore:     c.TotalScore,
			Submitted:      c.Submitted,
			SubmittedBlock: c.SubmittedBlock,
			ExtrinsicHash:  c.ExtrinsicHash,
			DurationMillis: c.Duration.Milliseconds(),
		},
		Data: weights,
	}
}
