package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/screwyprof/unstaker/pkg/logger"
	"github.com/screwyprof/unstaker/pkg/metrics"
	"github.com/screwyprof/unstaker/validator"
	"github.com/screwyprof/unstaker/web/status"
)

// subscribe logs controller events, records them as metrics and
// publishes reports to the status API.
func subscribe(ctx context.Context, events <-chan validator.Event, log *slog.Logger, m *metrics.Metrics, reports *status.Reports) func() {
	return validator.NewSubscriber(events,
		validator.OnControllerStarted(func(e validator.ControllerStarted) {
			log.InfoContext(ctx, "Controller started",
				slog.Uint64("netuid", uint64(e.Netuid)),
				slog.String("hotkey", e.Hotkey),
				slog.Uint64("lookahead", e.Lookahead),
			)
		}),
		validator.OnBoundaryChecked(func(e validator.BoundaryChecked) {
			m.ObserveBlock(e.Block)
			reports.ObserveBlock(e.Block, time.Now())
			log.DebugContext(ctx, "Boundary checked",
				slog.Uint64("block", e.Block),
				slog.Uint64("tempo", e.Tempo),
				slog.Uint64("blocksSinceLastStep", e.BlocksSinceLastStep),
				slog.Bool("due", e.Due),
			)
		}),
		validator.OnCycleStarted(func(e validator.CycleStarted) {
			m.CycleStarted()
			log.InfoContext(ctx, "Cycle started",
				slog.Uint64("block", e.Block),
				slog.Uint64("startBlock", e.StartBlock),
				slog.Int("identities", e.Identities),
				slog.String("startedAt", e.StartedAt.Format(logger.BritishTimeFormat)),
			)
		}),
		validator.OnIdentityScored(func(e validator.IdentityScored) {
			log.DebugContext(ctx, "Identity scored",
				slog.String("coldkey", e.Coldkey),
				slog.Float64("score", e.Score),
			)
		}),
		validator.OnIdentityScoreFailed(func(e validator.IdentityScoreFailed) {
			m.IdentityScoreFailed()
			log.WarnContext(ctx, "Identity scoring failed, using zero",
				slog.String("coldkey", e.Coldkey),
				slog.Any("error", e.Err),
			)
		}),
		validator.OnWeightsSubmitted(func(e validator.WeightsSubmitted) {
			r := e.Report
			m.Submitted(r.SubmittedBlock, r.TotalScore, r.Duration)
			reports.Publish(r)
			log.InfoContext(ctx, "Weights submitted",
				slog.Uint64("block", r.Block),
				slog.Uint64("submittedBlock", r.SubmittedBlock),
				slog.Int("slots", len(r.Slots)),
				slog.Float64("totalScore", r.TotalScore),
				slog.String("extrinsic", r.ExtrinsicHash),
				slog.Duration("duration", r.Duration),
			)
		}),
		validator.OnSubmitFailed(func(e validator.SubmitFailed) {
			m.SubmitFailed(e.Report.Duration)
			reports.Publish(e.Report)
			log.ErrorContext(ctx, "Weight submission failed, retrying next window",
				slog.Uint64("block", e.Report.Block),
				slog.Any("error", e.Err),
			)
		}),
		validator.OnCycleError(func(e validator.CycleError) {
			m.CycleFailed()
			log.ErrorContext(ctx, "Cycle failed", slog.Any("error", e.Err))
		}),
		validator.OnControllerShutdown(func(e validator.ControllerShutdown) {
			log.InfoContext(ctx, "Controller stopped", slog.String("reason", e.Reason.Error()))
		}),
	)
}
