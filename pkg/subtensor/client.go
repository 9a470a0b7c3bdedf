// Package subtensor talks to a subtensor HTTP gateway that exposes chain
// state and signs extrinsics with the validator's keyring.
package subtensor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/screwyprof/unstaker/pkg/clock"
)

// Default configuration values
const (
	DefaultPollInterval = 2 * time.Second
	DefaultRetryCount   = 3
	DefaultRetryWait    = 500 * time.Millisecond
)

// Sentinel errors for gateway calls
var (
	ErrRequestFailed    = errors.New("gateway request failed")
	ErrUnexpectedStatus = errors.New("unexpected gateway status code")
	ErrGatewayRejected  = errors.New("gateway rejected request")
)

// Clock abstracts waiting between block polls
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client, including its timeout
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(clk Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithPollInterval sets how often WaitForNextBlock asks for the latest block
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithRetries sets how many times idempotent reads are retried
func WithRetries(count int, wait time.Duration) Option {
	return func(c *Client) {
		c.retryCount = count
		c.retryWait = wait
	}
}

type Client struct {
	rest         *resty.Client
	httpClient   *http.Client
	clock        Clock
	pollInterval time.Duration
	retryCount   int
	retryWait    time.Duration
}

// NewClient creates a gateway client for baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		clock:        clock.SystemClock{},
		pollInterval: DefaultPollInterval,
		retryCount:   DefaultRetryCount,
		retryWait:    DefaultRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.rest = resty.NewWithClient(c.httpClient).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(c.retryCount).
		SetRetryWaitTime(c.retryWait).
		AddRetryCondition(retryReads)
	return c
}

// retryReads retries GETs on transport errors and 5xx. Weight submission is
// never retried here: a failed submission waits for the next tempo.
func retryReads(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

// LatestBlock returns the current chain height
func (c *Client) LatestBlock(ctx context.Context) (uint64, error) {
	block, err := call[LatestBlock](ctx, c.rest.R(), http.MethodGet, "/chain/latest-block")
	if err != nil {
		return 0, err
	}
	return block.BlockNumber, nil
}

// Metagraph returns the registry snapshot of a subnet
func (c *Client) Metagraph(ctx context.Context, netuid uint16) (Metagraph, error) {
	return call[Metagraph](ctx, c.rest.R(), http.MethodGet, fmt.Sprintf("/subnets/%d/metagraph", netuid))
}

// Hyperparams returns the subnet hyperparameters
func (c *Client) Hyperparams(ctx context.Context, netuid uint16) (Hyperparams, error) {
	return call[Hyperparams](ctx, c.rest.R(), http.MethodGet, fmt.Sprintf("/subnets/%d/hyperparameters", netuid))
}

// KeyringPair returns the key the gateway signs with
func (c *Client) KeyringPair(ctx context.Context) (KeyringPairInfo, error) {
	return call[KeyringPairInfo](ctx, c.rest.R(), http.MethodGet, "/keyring")
}

// SetWeights submits a weight row and returns the extrinsic hash
func (c *Client) SetWeights(ctx context.Context, req SetWeightsRequest) (string, error) {
	dests, weights, err := EmitWeights(req.UIDs, req.Weights)
	if err != nil {
		return "", err
	}

	params := setWeightsParams{
		Netuid:     req.Netuid,
		Hotkey:     req.Hotkey,
		Dests:      dests,
		Weights:    weights,
		VersionKey: req.VersionKey,
	}
	return call[string](ctx, c.rest.R().SetBody(params), http.MethodPost, fmt.Sprintf("/subnets/%d/weights", req.Netuid))
}

// WaitForNextBlock blocks until the chain height exceeds after
func (c *Client) WaitForNextBlock(ctx context.Context, after uint64) (uint64, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-c.clock.After(c.pollInterval):
		}

		latest, err := c.LatestBlock(ctx)
		if err != nil {
			return 0, err
		}
		if latest > after {
			return latest, nil
		}
	}
}

func call[T any](ctx context.Context, req *resty.Request, method, path string) (T, error) {
	var (
		zero T
		env  Response[T]
	)

	resp, err := req.
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&env).
		SetError(&env).
		Execute(method, path)
	if err != nil {
		return zero, fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, path, err)
	}
	if resp.IsError() {
		return zero, fmt.Errorf("%w: %s %s: %d: %s", ErrUnexpectedStatus, method, path, resp.StatusCode(), env.message())
	}
	if !env.Success {
		return zero, fmt.Errorf("%w: %s %s: %s", ErrGatewayRejected, method, path, env.message())
	}
	return env.Data, nil
}
