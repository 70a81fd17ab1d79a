package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/lakewatch/lakeview/pkg/deltalog"
	"github.com/lakewatch/lakeview/pkg/observability"
	"github.com/lakewatch/lakeview/pkg/server"
	"github.com/lakewatch/lakeview/pkg/session"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra flags are typically global
var serveCfgFile string

//nolint:gochecknoglobals // Cobra commands are typically global
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lakeview dashboard server",
	Long: `Scans the configured root for Delta tables, loads their histories into
the session cache, and serves the aggregated views over HTTP.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveCfgFile, "config", "lakeview.yaml", "config file (default is lakeview.yaml)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	config, err := LoadConfig(serveCfgFile)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(config.Logging)
	if err != nil {
		return ErrInvalidLogLevel
	}
	logger.SetLevel(level)
	logger.Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observability.StartMetricsServer(logger, config.MetricsAddr)

	provider := deltalog.NewProvider(logger)
	sess, err := session.New(ctx, logger, &config.Scan, provider)
	if err != nil {
		return err
	}

	svc, err := server.NewService(logger, &config.Server, sess)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return svc.Stop()
}
