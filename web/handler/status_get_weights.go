package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/screwyprof/unstaker/pkg/httpkit"
	"github.com/screwyprof/unstaker/web/api"
	"github.com/screwyprof/unstaker/web/handler/bind"
	"github.com/screwyprof/unstaker/web/status"
)

const GetWeightsRoute = http.MethodGet + " " + "/v1/weights"

var ErrQueryFailed = errors.New("failed to query weights")

type StatusGetWeights struct {
	finder status.WeightsFinder
}

func NewStatusGetWeights(finder status.WeightsFinder) *StatusGetWeights {
	return &StatusGetWeights{finder: finder}
}

func (h *StatusGetWeights) AddRoutes(m *http.ServeMux) {
	m.Handle(GetWeightsRoute, httpkit.HandlerFunc(h.GetWeights))
}

func (h *StatusGetWeights) GetWeights(w http.ResponseWriter, r *http.Request) http.HandlerFunc {
	req, err := bind.GetWeightsRequest(r)
	if err != nil {
		return httpkit.JsonError(api.Wrap(fmt.Errorf("%w: %w", api.ErrBadRequest, err)))
	}

	criteria, err := status.NewWeightsCriteria(req.Coldkey, req.Page, req.PerPage)
	if err != nil {
		return httpkit.JsonError(api.Wrap(fmt.Errorf("%w: %w", api.ErrBadRequest, err)))
	}

	page, err := h.finder.FindWeights(r.Context(), criteria)
	if err != nil {
		return httpkit.JsonError(api.Wrap(classifyFindError(err)))
	}

	if link := paginationLinks(page, r.URL); link != "" {
		w.Header().Set("Link", link)
	}

	return httpkit.JSON(bind.GetWeightsResponse(page))
}

// classifyFindError maps finder failures onto the API sentinels
func classifyFindError(err error) error {
	if errors.Is(err, status.ErrNoReport) {
		return fmt.Errorf("%w: %w", api.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrQueryFailed, err)
}

// paginationLinks builds a GitHub-style Link header with prev and next only
func paginationLinks(page *status.WeightsPage, base *url.URL) string {
	var links []string

	u := *base
	query := u.Query()
	query.Set("per_page", strconv.FormatUint(page.Size.Uint64(), 10))

	if page.HasPrevious() {
		query.Set("page", strconv.FormatUint(page.Number.Uint64()-1, 10))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="prev"`, u.String()))
	}

	if page.HasNext() {
		query.Set("page", strconv.FormatUint(page.Number.Uint64()+1, 10))
		u.RawQuery = query.Encode()
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, u.String()))
	}

	return strings.Join(links, ", ")
}
