// Package normalizer converts raw sensor entries from the supported source
// formats into unified readings.
package normalizer

import (
	"fmt"

	"sensorconv/internal/logger"
	"sensorconv/internal/models"
)

// SkippedEntry records an entry that failed conversion.
type SkippedEntry struct {
	Index int
	Err   error
}

// Result is the outcome of converting one dataset.
type Result struct {
	Format   string
	Readings []models.Reading
	Skipped  []SkippedEntry
}

// Total returns the number of entries that were processed.
func (r *Result) Total() int {
	return len(r.Readings) + len(r.Skipped)
}

// Processor runs a Converter across a whole dataset.
type Processor struct {
	converter Converter
	log       *logger.Logger
}

// NewProcessor creates a new processor instance.
func NewProcessor(conv Converter, log *logger.Logger) *Processor {
	return &Processor{
		converter: conv,
		log:       log.With("format", conv.Name()),
	}
}

// Process converts every item in order. Items that are not JSON objects or
// fail conversion are logged and skipped; the batch is never aborted.
func (p *Processor) Process(items []any) *Result {
	result := &Result{
		Format:   p.converter.Name(),
		Readings: make([]models.Reading, 0, len(items)),
	}

	for i, item := range items {
		reading, err := p.convert(item)
		if err != nil {
			p.log.Warn("Skipping entry", "index", i, "error", err)
			result.Skipped = append(result.Skipped, SkippedEntry{Index: i, Err: err})

			continue
		}

		result.Readings = append(result.Readings, reading)
	}

	return result
}

// convert shields the batch from a panicking converter.
func (p *Processor) convert(item any) (reading models.Reading, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	entry, ok := AsEntry(item)
	if !ok {
		return models.Reading{}, &ValidationError{
			Kind:    KindInvalidField,
			Message: fmt.Sprintf("entry is not an object: %v", item),
		}
	}

	return p.converter.Convert(entry)
}

// ConvertDataset is a shorthand for NewProcessor(conv, log).Process(items).
func ConvertDataset(items []any, conv Converter, log *logger.Logger) *Result {
	return NewProcessor(conv, log).Process(items)
}
