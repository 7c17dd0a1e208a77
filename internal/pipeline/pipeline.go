// Package pipeline runs a complete conversion: check inputs, load, convert,
// merge, sort and save.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"sensorconv/internal/config"
	"sensorconv/internal/formatter"
	"sensorconv/internal/jsonfile"
	"sensorconv/internal/logger"
	"sensorconv/internal/metrics"
	"sensorconv/internal/models"
	"sensorconv/internal/normalizer"
)

// Run errors not covered by jsonfile.
var (
	ErrMissingInput = errors.New("input file not found")
	ErrUnexpected   = errors.New("unexpected failure")
)

// State is a step of the conversion run.
type State int

// Run states in the order they are reached. StateAborted is terminal and may
// follow any other state.
const (
	StateStart State = iota
	StateInputsChecked
	StateLoaded
	StateConverted
	StateMerged
	StateSorted
	StateSaved
	StateDone
	StateAborted
)

var stateNames = map[State]string{
	StateStart:         "start",
	StateInputsChecked: "inputs_checked",
	StateLoaded:        "loaded",
	StateConverted:     "converted",
	StateMerged:        "merged",
	StateSorted:        "sorted",
	StateSaved:         "saved",
	StateDone:          "done",
	StateAborted:       "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("state(%d)", int(s))
}

// SourceReport holds the counts for one input file.
type SourceReport struct {
	Name      string
	File      string
	Format    string
	Loaded    int
	Converted int
	Skipped   int
}

// Report describes a finished run, successful or not.
type Report struct {
	State      State
	LastState  State
	Sources    []SourceReport
	Output     int
	OutputPath string
	Duration   time.Duration
}

// source is an enabled input bound to its converter.
type source struct {
	cfg       config.SourceConfig
	converter normalizer.Converter
	items     []any
	result    *normalizer.Result
}

// Pipeline wires the file store, converters and optional reporting.
type Pipeline struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *jsonfile.Store
	metrics *metrics.Recorder
	now     func() time.Time
}

// New creates a pipeline for cfg.
func New(cfg *config.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		log:     log,
		store:   jsonfile.NewStore(log),
		metrics: metrics.NewRecorder(),
		now:     time.Now,
	}
}

// Metrics exposes the recorder filled in by Run.
func (p *Pipeline) Metrics() *metrics.Recorder {
	return p.metrics
}

// Run executes one conversion. Any error leaves the report in StateAborted
// with LastState naming the last state reached. The output file is only
// touched after every earlier step succeeded.
func (p *Pipeline) Run(ctx context.Context) (report *Report, err error) {
	start := p.now()
	report = &Report{State: StateStart, OutputPath: p.cfg.Output.Path}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrUnexpected, rec)
		}

		if err != nil {
			report.LastState = report.State
			report.State = StateAborted
			p.log.Error("An error occurred during data conversion", "state", report.LastState, "error", err)
		}

		report.Duration = p.now().Sub(start)
		p.writeMetrics(report)
	}()

	sources, err := p.bindSources()
	if err != nil {
		return report, err
	}

	if err := p.checkInputs(sources); err != nil {
		return report, err
	}

	p.transition(report, StateInputsChecked)

	if err := p.load(ctx, sources); err != nil {
		return report, err
	}

	p.transition(report, StateLoaded)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	p.convert(sources, report)
	p.transition(report, StateConverted)

	merged := merge(sources)
	p.log.Info("Combined dataset", "entries", len(merged))
	p.transition(report, StateMerged)

	p.log.Info("Sorting combined dataset by timestamp")
	SortByTimestamp(merged)
	p.transition(report, StateSorted)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	if err := p.store.Save(p.cfg.Output.Path, merged); err != nil {
		return report, err
	}

	report.Output = len(merged)
	p.transition(report, StateSaved)

	p.writeSummary(report, merged)

	p.transition(report, StateDone)
	p.log.Info("Data conversion completed successfully", "output", p.cfg.Output.Path, "entries", len(merged))

	return report, nil
}

func (p *Pipeline) transition(report *Report, to State) {
	p.log.Debug("State transition", "from", report.State, "to", to)
	report.State = to
}

func (p *Pipeline) bindSources() ([]*source, error) {
	enabled := p.cfg.GetEnabledSources()
	sources := make([]*source, 0, len(enabled))

	for _, src := range enabled {
		conv, err := normalizer.ConverterFor(src.Format)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Label(), err)
		}

		sources = append(sources, &source{cfg: src, converter: conv})
	}

	return sources, nil
}

// checkInputs verifies every input exists before anything is read.
func (p *Pipeline) checkInputs(sources []*source) error {
	var missing []string

	for _, src := range sources {
		if !jsonfile.Exists(src.cfg.File) {
			p.log.Error("Input file not found", "path", src.cfg.File)
			missing = append(missing, src.cfg.File)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingInput, strings.Join(missing, ", "))
	}

	return nil
}

func (p *Pipeline) load(ctx context.Context, sources []*source) error {
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}

		items, err := p.store.LoadArray(src.cfg.File)
		if err != nil {
			return err
		}

		src.items = items
		p.log.Info("Loaded entries", "entries", len(items), "path", src.cfg.File)
	}

	return nil
}

func (p *Pipeline) convert(sources []*source, report *Report) {
	for _, src := range sources {
		p.log.Info("Converting entries", "format", src.converter.Name(), "path", src.cfg.File)

		src.result = normalizer.ConvertDataset(src.items, src.converter, p.log)

		sr := SourceReport{
			Name:      src.cfg.Label(),
			File:      src.cfg.File,
			Format:    src.cfg.Format,
			Loaded:    len(src.items),
			Converted: len(src.result.Readings),
			Skipped:   len(src.result.Skipped),
		}
		report.Sources = append(report.Sources, sr)

		p.log.Info("Converted entries",
			"format", src.converter.Name(),
			"converted", sr.Converted,
			"skipped", sr.Skipped,
		)
	}
}

// merge concatenates the converted readings in source order.
func merge(sources []*source) []models.Reading {
	total := 0
	for _, src := range sources {
		total += len(src.result.Readings)
	}

	merged := make([]models.Reading, 0, total)
	for _, src := range sources {
		merged = append(merged, src.result.Readings...)
	}

	return merged
}

// SortByTimestamp orders readings ascending by timestamp. Readings with equal
// timestamps keep their relative order.
func SortByTimestamp(readings []models.Reading) {
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Timestamp < readings[j].Timestamp
	})
}

// writeSummary renders the optional markdown report. Failures are logged but
// do not fail a run whose output is already saved.
func (p *Pipeline) writeSummary(report *Report, readings []models.Reading) {
	path := p.cfg.Output.SummaryPath
	if path == "" {
		return
	}

	stats := make([]formatter.SourceStats, 0, len(report.Sources))
	for _, s := range report.Sources {
		stats = append(stats, formatter.SourceStats{
			Name:      s.Name,
			Format:    s.Format,
			Loaded:    s.Loaded,
			Converted: s.Converted,
			Skipped:   s.Skipped,
		})
	}

	content := formatter.RenderSummary(stats, readings)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		p.log.Warn("Failed to write summary", "path", path, "error", err)
		return
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		p.log.Warn("Failed to write summary", "path", path, "error", err)
		return
	}

	p.log.Info("Summary written", "path", path)
}

func (p *Pipeline) writeMetrics(report *Report) {
	for _, s := range report.Sources {
		p.metrics.ObserveSource(s.Name, s.Format, s.Loaded, s.Converted, s.Skipped)
	}

	p.metrics.Finish(report.Output, report.Duration, report.State == StateDone, p.now())

	path := p.cfg.Output.MetricsPath
	if path == "" {
		return
	}

	if err := p.metrics.WriteTextfile(path); err != nil {
		p.log.Warn("Failed to write metrics", "path", path, "error", err)
		return
	}

	p.log.Debug("Metrics written", "path", path)
}
