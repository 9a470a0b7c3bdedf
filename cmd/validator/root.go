package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/screwyprof/unstaker/pkg/logger"
	"github.com/screwyprof/unstaker/validator/config"
)

// newRootCmd loads the environment first so flags override it
func newRootCmd() *cobra.Command {
	cfg, envErr := config.New()

	cmd := &cobra.Command{
		Use:           "validator",
		Short:         "Weights subnet miners by the value their stakers unstake",
		Version:       fmt.Sprintf("%s (%s)", version, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logger.NewFromConfig(logger.Config{
				LogLevel:         cfg.LogLevel,
				LogHumanFriendly: cfg.LogHumanFriendly,
			})
			slog.SetDefault(log)

			if envErr != nil {
				log.Error("Failed to load configuration", slog.Any("error", envErr))
				return envErr
			}
			if err := cfg.Validate(); err != nil {
				log.Error("Invalid configuration", slog.Any("error", err))
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.Uint16Var(&cfg.Netuid, "netuid", cfg.Netuid, "subnet to score and set weights on")
	flags.StringVar(&cfg.TaostatsAPIKey, "api-key", cfg.TaostatsAPIKey, "taostats API key")
	flags.Uint64Var(&cfg.Tempo, "tempo", cfg.Tempo, "override the chain tempo (0 uses the chain value)")
	flags.StringVar(&cfg.WalletPath, "wallet.path", cfg.WalletPath, "wallets directory")
	flags.StringVar(&cfg.WalletName, "wallet.name", cfg.WalletName, "wallet (coldkey) name")
	flags.StringVar(&cfg.WalletHotkey, "wallet.hotkey", cfg.WalletHotkey, "hotkey name")
	flags.StringVar(&cfg.SubtensorURL, "subtensor.url", cfg.SubtensorURL, "subtensor gateway URL")
	flags.StringVar(&cfg.StatusAddr, "status.addr", cfg.StatusAddr, "status API listen address (empty disables)")

	return cmd
}
