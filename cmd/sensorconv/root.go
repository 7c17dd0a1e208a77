package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sensorconv/internal/config"
	"sensorconv/internal/logger"
	"sensorconv/internal/pipeline"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "sensorconv",
		Short: "Unify sensor readings from data-1 and data-2 JSON files",
		Long: `sensorconv converts sensor readings from two JSON schemas into one,
merges them, sorts them by timestamp and writes the result.

With no flags it reads data-1.json and data-2.json from the working
directory and writes output.json. Paths can also be set in a YAML config
file or through SENSORCONV_* environment variables.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd, cfgFile)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln("Error:", err)
		c.PrintErrln(c.UsageString())

		return &reportedError{err: err}
	})

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file")
	flags.String(config.KeyFormatAFile, config.DefaultFormatAFile, "data-1 input file")
	flags.String(config.KeyFormatBFile, config.DefaultFormatBFile, "data-2 input file")
	flags.String(config.KeyOutput, config.DefaultOutputPath, "unified output file")
	flags.String(config.KeySummary, "", "optional markdown summary file")
	flags.String(config.KeyMetrics, "", "optional Prometheus textfile for run metrics")
	flags.String(config.KeyLogLevel, config.DefaultLogLevel, "log level: debug, info, warn, error")

	cmd.AddCommand(newSeedCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func runConvert(cmd *cobra.Command, cfgFile string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		logger.New(cmd.ErrOrStderr(), logger.DefaultName, "info").Error("Invalid configuration", "error", err)
		return &reportedError{err: err}
	}

	log := logger.New(cmd.ErrOrStderr(), logger.DefaultName, cfg.Logging.Level)
	log.Debug("Configuration loaded", "config", cfg.String())

	if _, err := pipeline.New(cfg, log).Run(cmd.Context()); err != nil {
		return &reportedError{err: err}
	}

	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sensorconv %s\n", version)
		},
	}
}
