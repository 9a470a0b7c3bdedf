// Package taostats is a thin client for the taostats delegation ledger API.
package taostats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const (
	DefaultBaseURL  = "https://api.taostats.io"
	DefaultPageSize = 200

	// ActionAll asks the ledger for both delegate and undelegate records.
	ActionAll = "all"

	delegationsPath = "/api/delegation/v1"
)

// Sentinel errors for ledger requests
var (
	ErrRequestCreation  = errors.New("creating ledger request failed")
	ErrRequestFailed    = errors.New("ledger request failed")
	ErrUnexpectedStatus = errors.New("unexpected ledger status code")
	ErrDecodingResponse = errors.New("decoding ledger response failed")
)

// Client queries the delegation ledger
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a ledger client with a custom HTTP client, base URL and API key
func NewClient(httpClient *http.Client, baseURL, apiKey string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// DelegationsRequest filters delegation records server-side
type DelegationsRequest struct {
	Nominator string
	Netuid    uint16
	Action    string
	Page      uint64
	Limit     uint64
}

// query encodes the request, falling back to the first page of DefaultPageSize records
func (r DelegationsRequest) query() url.Values {
	action := r.Action
	if action == "" {
		action = ActionAll
	}
	page := r.Page
	if page == 0 {
		page = 1
	}
	limit := r.Limit
	if limit == 0 {
		limit = DefaultPageSize
	}

	q := url.Values{}
	q.Set("nominator", r.Nominator)
	q.Set("netuid", strconv.FormatUint(uint64(r.Netuid), 10))
	q.Set("action", action)
	q.Set("page", strconv.FormatUint(page, 10))
	q.Set("limit", strconv.FormatUint(limit, 10))
	return q
}

// delegationsResponse keeps records raw so that one malformed record
// cannot fail decoding of the whole page.
type delegationsResponse struct {
	Data []json.RawMessage `json:"data"`
}

// GetDelegations returns the raw delegation records of a single page.
// Records are decoded individually with DecodeDelegation.
func (c *Client) GetDelegations(ctx context.Context, req DelegationsRequest) ([]json.RawMessage, error) {
	u := c.baseURL + delegationsPath + "?" + req.query().Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestCreation, err)
	}
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var page delegationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodingResponse, err)
	}

	return page.Data, nil
}
