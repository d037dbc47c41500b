package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-chat-tui/internal/client"
	"github.com/MKhiriev/go-chat-tui/internal/config"
	"github.com/MKhiriev/go-chat-tui/internal/logger"
	"github.com/MKhiriev/go-chat-tui/models"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

const role = "tuisen"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	cmd := &cobra.Command{
		Use:           "tuisen",
		Short:         "Terminal client for a single Twitch chat channel",
		Long:          "tuisen joins one chat channel, shows the live message stream with scrollback and lets you write messages when a username and token are configured.",
		Version:       info.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.Flags(), info)
		},
	}
	config.RegisterFlags(cmd.Flags())

	return cmd
}

func run(ctx context.Context, fs *pflag.FlagSet, info models.AppBuildInfo) error {
	bootLog := logger.NewLogger(role)

	cfg, err := config.GetClientConfig(fs)
	if err != nil {
		bootLog.Error().Err(err).Msg("error getting configs")
		return err
	}

	log := logger.NewClientLogger(role, cfg.Log.Path, cfg.Log.Level)
	defer log.Close()

	log.Info().Str("version", info.BuildVersion()).Str("commit", info.BuildCommit()).Msg("starting")

	app, err := client.NewApp(cfg, info, log)
	if err != nil {
		bootLog.Error().Err(err).Msg("init client app error")
		return err
	}

	if err = app.Run(ctx); err != nil {
		bootLog.Error().Err(err).Msg("client run error")
		return err
	}

	return nil
}
