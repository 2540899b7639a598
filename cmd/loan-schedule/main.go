// Command loan-schedule generates declining-balance repayment schedules for the
// loans in a configuration file, or serves them over HTTP.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/loan-schedule/internal/config"
	"github.com/iwvelando/loan-schedule/internal/schedule"
	"github.com/iwvelando/loan-schedule/internal/server"
	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Set via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "loan-schedule",
		Short:         "Declining-balance loan repayment schedules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print the repayment schedule of every configured loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			configLocation, _ := cmd.Flags().GetString("config")
			outputFormat, _ := cmd.Flags().GetString("output-format")
			logLevel, _ := cmd.Flags().GetString("log-level")
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), configLocation, outputFormat, logLevel)
		},
	}
	cmd.Flags().String("config", constants.DefaultConfigFile, "path to configuration file")
	cmd.Flags().String("output-format", "", "type of output override: pretty, csv, json")
	return cmd
}

func runGenerate(ctx context.Context, w io.Writer, configLocation, outputFormatFlag, logLevel string) error {
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", configLocation, err)
	}

	logger, err := initializeLogger(conf.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if outputFormatFlag != "" {
		outputFormat = outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	if err := conf.Validate(); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	results, err := schedule.GetSchedules(ctx, logger, *conf)
	if err != nil {
		logger.Error("failed to compute schedules",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}

	return output.Write(w, outputFormat, results)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			configLocation, _ := cmd.Flags().GetString("server-config")
			address, _ := cmd.Flags().GetString("address")
			logLevel, _ := cmd.Flags().GetString("log-level")

			cfg, err := server.LoadConfig(configLocation)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}

			logger, err := initializeLogger(cfg.Logging, logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Serve(ctx, logger, cfg, version)
		},
	}
	cmd.Flags().String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().String("address", "", "listen address override")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "loan-schedule %s\n", version)
		},
	}
}
