package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sensorconv/internal/config"
	"sensorconv/internal/jsonfile"
	"sensorconv/internal/logger"
	"sensorconv/internal/seeder"
)

var errSeedTargetExists = errors.New("target file exists (use --force to overwrite)")

type seedFlags struct {
	dir   string
	start string
	end   string
	force bool
	opts  seeder.Options
}

func newSeedCmd() *cobra.Command {
	f := &seedFlags{opts: seeder.DefaultOptions()}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate sample data-1.json and data-2.json files",
		Long: `seed writes randomly generated but reproducible input files. A share of
the entries is deliberately invalid so the converter's skip path is
exercised.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.dir, "dir", ".", "directory to write the files into")
	flags.IntVar(&f.opts.Count, "count", f.opts.Count, "entries per file")
	flags.Float64Var(&f.opts.InvalidRatio, "invalid-ratio", f.opts.InvalidRatio, "share of invalid entries (0-1)")
	flags.IntVar(&f.opts.Sensors, "sensors", f.opts.Sensors, "distinct sensors per file")
	flags.Int64Var(&f.opts.Seed, "seed", f.opts.Seed, "random seed (0 picks a random one)")
	flags.StringVar(&f.start, "start", f.opts.Start.Format(time.RFC3339), "earliest reading time (RFC 3339)")
	flags.StringVar(&f.end, "end", f.opts.End.Format(time.RFC3339), "latest reading time (RFC 3339)")
	flags.BoolVar(&f.force, "force", false, "overwrite existing files")

	return cmd
}

func runSeed(cmd *cobra.Command, f *seedFlags) error {
	log := logger.New(cmd.ErrOrStderr(), logger.DefaultName, "info").With("command", "seed")

	opts := f.opts

	var err error
	if opts.Start, err = time.Parse(time.RFC3339, f.start); err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}

	if opts.End, err = time.Parse(time.RFC3339, f.end); err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	gen, err := seeder.NewGenerator(opts)
	if err != nil {
		return err
	}

	targets := []struct {
		path string
		ds   *seeder.Dataset
	}{
		{filepath.Join(f.dir, config.DefaultFormatAFile), gen.FormatA()},
		{filepath.Join(f.dir, config.DefaultFormatBFile), gen.FormatB()},
	}

	if !f.force {
		for _, t := range targets {
			if jsonfile.Exists(t.path) {
				return fmt.Errorf("%w: %s", errSeedTargetExists, t.path)
			}
		}
	}

	store := jsonfile.NewStore(log)

	for _, t := range targets {
		if err := store.Save(t.path, t.ds.Entries); err != nil {
			return &reportedError{err: err}
		}

		log.Info("Seeded dataset",
			"format", t.ds.Format,
			"path", t.path,
			"entries", len(t.ds.Entries),
			"valid", t.ds.Valid,
		)
	}

	return nil
}
