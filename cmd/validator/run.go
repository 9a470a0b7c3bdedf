package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/screwyprof/unstaker/pkg/clock"
	"github.com/screwyprof/unstaker/pkg/logger"
	"github.com/screwyprof/unstaker/pkg/metrics"
	"github.com/screwyprof/unstaker/pkg/subtensor"
	"github.com/screwyprof/unstaker/pkg/taostats"
	"github.com/screwyprof/unstaker/pkg/wallet"
	"github.com/screwyprof/unstaker/validator"
	"github.com/screwyprof/unstaker/validator/config"
	"github.com/screwyprof/unstaker/web/handler"
	"github.com/screwyprof/unstaker/web/status"
)

var ErrKeyringMismatch = errors.New("gateway signs with a different hotkey")

const shutdownTimeout = 10 * time.Second

// run wires the validator and blocks until ctx is cancelled.
// Every error it returns is a startup failure.
func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	log.InfoContext(ctx, "Validator starting",
		slog.String("version", version),
		slog.Uint64("netuid", uint64(cfg.Netuid)),
	)

	hotkey, err := wallet.Load(cfg.WalletPath, cfg.WalletName, cfg.WalletHotkey)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load wallet hotkey", slog.Any("error", err))
		return err
	}

	httpClient := &http.Client{Timeout: cfg.HttpClientTimeout}
	chain := subtensor.NewClient(cfg.SubtensorURL,
		subtensor.WithHTTPClient(httpClient),
		subtensor.WithPollInterval(cfg.BlockPollInterval),
	)

	versionKey, err := checkGateway(ctx, chain, cfg, hotkey)
	if err != nil {
		log.ErrorContext(ctx, "Subtensor gateway check failed",
			slog.String("url", cfg.SubtensorURL),
			slog.Any("error", err),
		)
		return err
	}

	ledger := validator.NewLedger(
		taostats.NewClient(httpClient, cfg.TaostatsAPIURL, cfg.TaostatsAPIKey),
		cfg.Netuid,
		validator.WithLedgerLogger(logger.Component(log, "ledger")),
	)

	svc := validator.NewService(chain, validator.NewSellScorer(ledger), hotkey,
		validator.WithNetuid(cfg.Netuid),
		validator.WithTempoOverride(cfg.Tempo),
		validator.WithFallbackDelay(cfg.FallbackDelay),
		validator.WithScoringConcurrency(cfg.ScoringConcurrency),
		validator.WithVersionKey(versionKey),
	)

	m := metrics.New()
	reports := status.NewReports()

	var server *http.Server
	if cfg.StatusAddr != "" {
		server = newStatusServer(cfg.StatusAddr, reports, m, log)
		go func() {
			log.InfoContext(ctx, "Status API started", slog.String("addr", cfg.StatusAddr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.ErrorContext(ctx, "Status API failed", slog.Any("error", err))
			}
		}()
	}

	events, done := svc.Start(ctx)
	closer := subscribe(ctx, events, log, m, reports)
	defer closer()

	<-done

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "Status API forced to shutdown", slog.Any("error", err))
		}
	}

	log.InfoContext(ctx, "Validator stopped gracefully")
	return nil
}

// checkGateway confirms the gateway signs as hotkey, that the tempo override
// is reachable, and returns the weights version key
func checkGateway(ctx context.Context, chain *subtensor.Client, cfg config.Config, hotkey wallet.Hotkey) (uint64, error) {
	keyring, err := chain.KeyringPair(ctx)
	if err != nil {
		return 0, err
	}
	if keyring.KeyringPair.Address != hotkey.SS58Address {
		return 0, fmt.Errorf("%w: gateway %s, wallet %s", ErrKeyringMismatch, keyring.KeyringPair.Address, hotkey.SS58Address)
	}

	params, err := chain.Hyperparams(ctx, cfg.Netuid)
	if err != nil {
		return 0, err
	}
	if cfg.Tempo > 0 {
		if err := validator.CheckTempoOverride(cfg.Tempo, params.Tempo); err != nil {
			return 0, err
		}
	}
	return params.WeightsVersion, nil
}

func newStatusServer(addr string, reports *status.Reports, m *metrics.Metrics, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	handler.NewStatusGetWeights(reports).AddRoutes(mux)
	handler.NewStatusGetHealth(reports, handler.DefaultMaxBlockAge, clock.SystemClock{}.Now).AddRoutes(mux)
	mux.Handle("GET /metrics", m.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           logger.NewMiddleware(logger.Component(log, "http"), logger.WithQuietPaths("/metrics", "/healthz"))(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
