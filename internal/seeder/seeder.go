// Package seeder generates sample data-1 and data-2 input files.
package seeder

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"sensorconv/internal/normalizer"
)

// Seeder option errors.
var (
	ErrInvalidCount        = errors.New("count must be non-negative")
	ErrInvalidRatio        = errors.New("invalid ratio must be between 0 and 1")
	ErrInvalidSensorCount  = errors.New("sensors must be at least 1")
	ErrInvalidTimeInterval = errors.New("end must be after start")
)

// Options controls the generated datasets.
type Options struct {
	// Count is the number of entries per dataset.
	Count int
	// InvalidRatio is the share of entries deliberately broken so that the
	// converter skips them.
	InvalidRatio float64
	Sensors      int
	Start        time.Time
	End          time.Time
	Seed         int64
}

// DefaultOptions returns options for a small day-long sample.
func DefaultOptions() Options {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	return Options{
		Count:        50,
		InvalidRatio: 0.1,
		Sensors:      5,
		Start:        start,
		End:          start.Add(24 * time.Hour),
		Seed:         1,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.Count < 0 {
		return ErrInvalidCount
	}

	if o.InvalidRatio < 0 || o.InvalidRatio > 1 {
		return ErrInvalidRatio
	}

	if o.Sensors < 1 {
		return ErrInvalidSensorCount
	}

	if !o.End.After(o.Start) {
		return ErrInvalidTimeInterval
	}

	return nil
}

// Dataset is a generated input file along with how many entries should
// survive conversion.
type Dataset struct {
	Format  string
	Entries []map[string]any
	Valid   int
}

// Generator produces reproducible sample data for a given seed.
type Generator struct {
	opts  Options
	faker *gofakeit.Faker
}

// NewGenerator creates a generator.
func NewGenerator(opts Options) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Generator{
		opts:  opts,
		faker: gofakeit.New(opts.Seed),
	}, nil
}

// FormatA generates a data-1 dataset.
func (g *Generator) FormatA() *Dataset {
	ds := &Dataset{Format: normalizer.FormatA, Entries: make([]map[string]any, 0, g.opts.Count)}

	for i := 0; i < g.opts.Count; i++ {
		entry := map[string]any{
			"id":        fmt.Sprintf("sensor-%d", g.faker.Number(1, g.opts.Sensors)),
			"value":     g.value(),
			"timestamp": g.when().Format(normalizer.ISOLayout),
		}

		if g.broken() {
			g.breakEntry(entry, []string{"id", "value", "timestamp"})
		} else {
			ds.Valid++
		}

		ds.Entries = append(ds.Entries, entry)
	}

	return ds
}

// FormatB generates a data-2 dataset.
func (g *Generator) FormatB() *Dataset {
	ds := &Dataset{Format: normalizer.FormatB, Entries: make([]map[string]any, 0, g.opts.Count)}

	for i := 0; i < g.opts.Count; i++ {
		entry := map[string]any{
			"deviceId": fmt.Sprintf("device-%d", g.faker.Number(1, g.opts.Sensors)),
			"reading":  g.value(),
			"time":     g.when().UnixMilli(),
		}

		if g.broken() {
			g.breakEntry(entry, []string{"deviceId", "reading", "time"})
		} else {
			ds.Valid++
		}

		ds.Entries = append(ds.Entries, entry)
	}

	return ds
}

// value returns a reading rounded to one decimal. Roughly one in ten is zero
// to exercise the zero-is-valid rule.
func (g *Generator) value() float64 {
	if g.faker.Number(1, 10) == 1 {
		return 0
	}

	return math.Round(g.faker.Float64Range(-20, 120)*10) / 10
}

// when returns a whole-second time inside the configured window.
func (g *Generator) when() time.Time {
	return g.faker.DateRange(g.opts.Start, g.opts.End).UTC().Truncate(time.Second)
}

func (g *Generator) broken() bool {
	return g.faker.Float64() < g.opts.InvalidRatio
}

// breakEntry removes or nulls one required field.
func (g *Generator) breakEntry(entry map[string]any, fields []string) {
	field := g.faker.RandomString(fields)

	if g.faker.Bool() {
		delete(entry, field)
		return
	}

	entry[field] = nil
}
