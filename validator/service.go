package validator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/screwyprof/unstaker/pkg/clock"
	"github.com/screwyprof/unstaker/pkg/subtensor"
	"github.com/screwyprof/unstaker/pkg/wallet"
)

// Option configures the Service
// ------------------------------------------------
type Option func(*Service)

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithNetuid sets the subnet the controller scores and submits for
func WithNetuid(netuid uint16) Option {
	return func(s *Service) { s.netuid = netuid }
}

// WithTempoOverride replaces the chain tempo when positive
func WithTempoOverride(tempo uint64) Option {
	return func(s *Service) { s.tempoOverride = tempo }
}

// WithBoundaryLookahead sets how many blocks before the boundary a cycle may start
func WithBoundaryLookahead(blocks uint64) Option {
	return func(s *Service) { s.lookahead = blocks }
}

// WithFallbackDelay sets the pause used when no block wait is possible
func WithFallbackDelay(d time.Duration) Option {
	return func(s *Service) { s.fallbackDelay = d }
}

// WithScoringConcurrency bounds the parallel ledger queries of a cycle
func WithScoringConcurrency(n int) Option {
	return func(s *Service) { s.concurrency = max(1, n) }
}

// WithVersionKey sets the weights version submitted with every vector
func WithVersionKey(v uint64) Option {
	return func(s *Service) { s.versionKey = v }
}

// Service is the tempo-driven weight controller
// ---------------------------------------------
type Service struct {
	chain         Chain
	scorer        Scorer
	hotkey        wallet.Hotkey
	clock         Clock
	netuid        uint16
	tempoOverride uint64
	lookahead     uint64
	fallbackDelay time.Duration
	concurrency   int
	versionKey    uint64
	events        chan Event

	// boundary of the last attempted submission, so a window is tried once
	attempted    bool
	lastBoundary uint64
}

// NewService constructs a Service with required dependencies and options
// ---------------------------------------------------------------------
// By default it uses a real clock, netuid 18, a two block lookahead
// and scores four identities at a time.
func NewService(chain Chain, scorer Scorer, hotkey wallet.Hotkey, opts ...Option) *Service {
	s := &Service{
		chain:         chain,
		scorer:        scorer,
		hotkey:        hotkey,
		clock:         clock.SystemClock{},
		netuid:        DefaultNetuid,
		lookahead:     DefaultBoundaryLookahead,
		fallbackDelay: DefaultFallbackDelay,
		concurrency:   DefaultScoringConcurrency,
		events:        make(chan Event, 10),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the controller and returns the events channel and done channel.
//
// Shutdown pattern:
//  1. Cancel context to request shutdown: cancel()
//  2. Controller finishes or abandons the current cycle, never submitting a partial vector
//  3. Events channel is closed, then done is closed
//
// The loop itself never stops on a recoverable error.
func (s *Service) Start(ctx context.Context) (<-chan Event, <-chan struct{}) {
	done := make(chan struct{})
	go func() {
		defer close(s.events)
		defer close(done)
		s.run(ctx)
	}()
	return s.events, done
}

func (s *Service) run(ctx context.Context) {
	s.events <- ControllerStarted{
		Netuid:    s.netuid,
		Hotkey:    s.hotkey.SS58Address,
		Lookahead: s.lookahead,
	}

	for {
		height, err := s.step(ctx)
		if ctx.Err() != nil {
			s.events <- ControllerShutdown{Reason: ctx.Err()}
			return
		}
		if err != nil {
			s.events <- CycleError{Err: err}
		}

		s.waitForNextBlock(ctx, height)
		if ctx.Err() != nil {
			s.events <- ControllerShutdown{Reason: ctx.Err()}
			return
		}
	}
}

// step checks the tempo boundary and runs a cycle when due.
// It returns the observed height, or zero when the snapshot was unavailable.
func (s *Service) step(ctx context.Context) (uint64, error) {
	mg, err := s.chain.Metagraph(ctx, s.netuid)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSnapshotFailed, err)
	}

	snapshot, err := convertMetagraph(mg, s.tempoOverride)
	if err != nil {
		return mg.Block, fmt.Errorf("%w: %w", ErrSnapshotFailed, err)
	}

	due := snapshot.DueForUpdate(s.lookahead)
	boundary := snapshot.TargetBoundary(s.lookahead)
	attempted := s.attempted && s.lastBoundary == boundary

	s.events <- BoundaryChecked{
		Block:               snapshot.Block,
		Tempo:               snapshot.Tempo,
		BlocksSinceLastStep: snapshot.BlocksSinceLastStep(),
		Due:                 due && !attempted,
	}
	if !due || attempted {
		return snapshot.Block, nil
	}

	return snapshot.Block, s.runCycle(ctx, snapshot, boundary)
}

func (s *Service) runCycle(ctx context.Context, snapshot NetworkSnapshot, boundary uint64) error {
	startedAt := s.clock.Now()
	startBlock := snapshot.LastStepBlock
	coldkeys := snapshot.UniqueColdkeys()

	s.events <- CycleStarted{
		Block:      snapshot.Block,
		StartBlock: startBlock,
		Identities: len(coldkeys),
		StartedAt:  startedAt,
	}

	scores, err := s.scoreIdentities(ctx, coldkeys, startBlock)
	if err != nil {
		return err
	}

	weights := scores.Normalize()
	projected := Project(weights, snapshot)
	if len(projected) != len(snapshot.UIDs) {
		return fmt.Errorf("%w: %d weights for %d uids", ErrWeightsMisaligned, len(projected), len(snapshot.UIDs))
	}

	// all or nothing: a cancelled cycle submits nothing
	if err := ctx.Err(); err != nil {
		return err
	}

	s.attempted = true
	s.lastBoundary = boundary

	report := newCycleReport(snapshot, scores, weights, projected)
	hash, err := s.chain.SetWeights(ctx, subtensor.SetWeightsRequest{
		Netuid:     s.netuid,
		Hotkey:     s.hotkey.SS58Address,
		UIDs:       snapshot.UIDs,
		Weights:    projected,
		VersionKey: s.versionKey,
	})
	report.Duration = s.clock.Now().Sub(startedAt)
	if err != nil {
		s.events <- SubmitFailed{Report: report, Err: fmt.Errorf("%w: %w", ErrSubmitFailed, err)}
		return nil
	}

	report.Submitted = true
	report.ExtrinsicHash = hash
	report.SubmittedBlock = s.currentBlock(ctx, snapshot.Block)
	s.events <- WeightsSubmitted{Report: report}
	return nil
}

// scoreIdentities scores every identity once. A failing identity scores zero;
// only cancellation aborts the cycle.
func (s *Service) scoreIdentities(ctx context.Context, coldkeys []string, startBlock uint64) (ScoreVector, error) {
	results := make([]float64, len(coldkeys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ck := range coldkeys {
		g.Go(func() error {
			score, err := s.scorer.SellValue(gctx, ck, startBlock)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.events <- IdentityScoreFailed{Coldkey: ck, Err: err}
				return nil
			}
			results[i] = score
			s.events <- IdentityScored{Coldkey: ck, Score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := make(ScoreVector, len(coldkeys))
	for i, ck := range coldkeys {
		scores[ck] = results[i]
	}
	return scores, nil
}

// currentBlock is the chain height after submission, falling back to fallback
func (s *Service) currentBlock(ctx context.Context, fallback uint64) uint64 {
	height, err := s.chain.LatestBlock(ctx)
	if err != nil {
		return fallback
	}
	return height
}

// waitForNextBlock is the only suspension point of the loop. Without a known
// height or a block waiter it sleeps the fallback delay instead.
func (s *Service) waitForNextBlock(ctx context.Context, after uint64) {
	if waiter, ok := s.chain.(BlockWaiter); ok && after > 0 {
		_, err := waiter.WaitForNextBlock(ctx, after)
		if err == nil || ctx.Err() != nil {
			return
		}
		s.events <- CycleError{Err: fmt.Errorf("%w: %w", ErrBlockWaitFailed, err)}
	}

	select {
	case <-ctx.Done():
	case <-s.clock.After(s.fallbackDelay):
	}
}
