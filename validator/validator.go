package validator

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/screwyprof/unstaker/pkg/subtensor"
	"github.com/screwyprof/unstaker/pkg/taostats"
)

// Sentinel errors for failure cases
var (
	ErrSnapshotFailed    = errors.New("snapshot retrieval failed")
	ErrInvalidSnapshot   = errors.New("invalid network snapshot")
	ErrScoringFailed     = errors.New("identity scoring failed")
	ErrWeightsMisaligned = errors.New("weights not aligned with snapshot")
	ErrSubmitFailed      = errors.New("weight submission failed")
	ErrBlockWaitFailed   = errors.New("waiting for next block failed")
	ErrInvalidEvent      = errors.New("invalid delegation event")
	ErrTempoOverride     = errors.New("tempo override exceeds chain tempo")
)

// Default configuration values
const (
	DefaultNetuid             = uint16(18)
	DefaultBoundaryLookahead  = uint64(2)
	DefaultFallbackDelay      = time.Second
	DefaultScoringConcurrency = 4
)

// LedgerAPI fetches raw delegation records from the ledger service
// ----------------------------------------------------------------
type LedgerAPI interface {
	GetDelegations(ctx context.Context, req taostats.DelegationsRequest) ([]json.RawMessage, error)
}

// EventFetcher returns the normalized ledger events of one identity.
// Failures are absorbed: an empty result is a valid answer.
type EventFetcher interface {
	FetchEvents(ctx context.Context, coldkey string) []DelegationEvent
}

// Scorer computes the raw score of one identity since startBlock
type Scorer interface {
	SellValue(ctx context.Context, coldkey string, startBlock uint64) (float64, error)
}

// Chain is the subset of the chain client the controller consumes
// ----------------------------------------------------------------
type Chain interface {
	LatestBlock(ctx context.Context) (uint64, error)
	Metagraph(ctx context.Context, netuid uint16) (subtensor.Metagraph, error)
	SetWeights(ctx context.Context, req subtensor.SetWeightsRequest) (string, error)
}

// BlockWaiter is implemented by chain clients that can block until the
// height changes. Without it the controller sleeps a fixed delay.
type BlockWaiter interface {
	WaitForNextBlock(ctx context.Context, after uint64) (uint64, error)
}

// Clock abstracts time for production and testing
// ------------------------------------------------
type Clock interface {
	After(d time.Duration) <-chan time.Time
	Now() time.Time
}

// Event represents a controller lifecycle event
// ---------------------------------------------
type Event any

type ControllerStarted struct {
	Netuid    uint16
	Hotkey    string
	Lookahead uint64
}

type BoundaryChecked struct {
	Block               uint64
	Tempo               uint64
	BlocksSinceLastStep uint64
	Due                 bool
}

type CycleStarted struct {
	Block      uint64
	StartBlock uint64
	Identities int
	StartedAt  time.Time
}

type IdentityScored struct {
	Coldkey string
	Score   float64
}

type IdentityScoreFailed struct {
	Coldkey string
	Err     error
}

type WeightsSubmitted struct {
	Report CycleReport
}

type SubmitFailed struct {
	Report CycleReport
	Err    error
}

type CycleError struct {
	Err error
}

type ControllerShutdown struct {
	Reason error // Why shutdown occurred (ctx.Err())
}
