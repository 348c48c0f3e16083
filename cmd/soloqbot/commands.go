package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"
	"github.com/spf13/cobra"

	"github.com/rehabot/soloqbot/config"
	"github.com/rehabot/soloqbot/discord"
	"github.com/rehabot/soloqbot/relay"
	"github.com/rehabot/soloqbot/riot"
	"github.com/rehabot/soloqbot/soloq"
)

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "soloqbot",
		Short:        "Discord bot relaying !send messages and posting the SoloQ report",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv(envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return runBot(ctx, cfg)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file to read environment variables from when present")

	root.AddCommand(newReportCommand())
	return root
}

func newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Build the SoloQ report once and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadReport()
			if err != nil {
				return err
			}

			reporter, err := newReporter(cfg)
			if err != nil {
				return err
			}

			rows := reporter.Report(cmd.Context(), cfg.Players)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), soloq.FormatTable(rows))
			return err
		},
	}
}

func newReporter(cfg *config.Report) (*soloq.Reporter, error) {
	client, err := riot.NewClient(cfg.APIKey)
	if err != nil {
		return nil, err
	}

	return soloq.NewReporter(client,
		soloq.WithRegion(cfg.Region),
		soloq.WithLocation(cfg.Location),
		soloq.WithAccountCache(riot.NewAccountCache(cfg.AccountCache)),
	), nil
}

// runBot wires the adapter, the relay and the report into go-sarah and blocks until ctx is done
// or the gateway connection cannot be opened.
func runBot(ctx context.Context, cfg *config.Config) error {
	adapter, err := discord.NewAdapter(cfg.Discord)
	if err != nil {
		return err
	}

	r := relay.New(adapter, cfg.ChannelID, cfg.StartupMessage)
	adapter.OnReady(r.Announce)

	sarah.RegisterBot(sarah.NewBot(adapter))

	sendProps, err := relay.NewSendCommandProps(r, cfg.Prefix)
	if err != nil {
		return fmt.Errorf("failed to build send command: %w", err)
	}
	sarah.RegisterCommandProps(sendProps)

	sarahConfig := sarah.NewConfig()
	if cfg.Report != nil {
		reporter, err := newReporter(cfg.Report)
		if err != nil {
			return err
		}

		taskProps, err := soloq.NewReportTaskProps(reporter, cfg.Report.Players, &soloq.TaskConfig{
			Schedule:    cfg.Report.Schedule,
			Destination: cfg.ChannelID,
			Format:      cfg.Report.Format,
		})
		if err != nil {
			return fmt.Errorf("failed to build report task: %w", err)
		}
		sarah.RegisterScheduledTaskProps(taskProps)
		sarahConfig.TimeZone = cfg.Report.TimeZone

		logger.Infof("SoloQ report scheduled at %q (%s) for %d players", cfg.Report.Schedule, cfg.Report.TimeZone, len(cfg.Report.Players))
	} else {
		logger.Infof("SoloQ report disabled: set %s and %s or %s to enable it", config.EnvAPIKey, config.EnvPlayersJSON, config.EnvPlayersFile)
	}

	if err := sarah.Run(ctx, sarahConfig); err != nil {
		return fmt.Errorf("failed to run: %w", err)
	}

	logger.Infof("Bot is running. Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
	case err := <-adapter.Failed():
		return err
	}

	logger.Infof("Shutting down...")
	return nil
}
