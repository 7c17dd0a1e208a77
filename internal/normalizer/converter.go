package normalizer

import (
	"errors"
	"fmt"

	"sensorconv/internal/models"
)

// Source format names.
const (
	FormatA = "data-1"
	FormatB = "data-2"
)

// ErrUnknownFormat is returned by ConverterFor for unsupported format names.
var ErrUnknownFormat = errors.New("unknown source format")

// Converter maps one raw entry of a specific source schema into a Reading.
type Converter interface {
	Name() string
	Convert(entry Entry) (models.Reading, error)
}

// ConverterFor returns the converter registered for a format name.
func ConverterFor(format string) (Converter, error) {
	switch format {
	case FormatA:
		return NewFormatAConverter(), nil
	case FormatB:
		return NewFormatBConverter(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// FormatAConverter handles entries shaped as
// {"id": "sensor-1", "value": 23.5, "timestamp": "2023-06-01T12:00:00Z"}.
type FormatAConverter struct{}

// NewFormatAConverter creates a new data-1 converter.
func NewFormatAConverter() *FormatAConverter {
	return &FormatAConverter{}
}

// Name returns the source format name.
func (c *FormatAConverter) Name() string {
	return FormatA
}

// Convert validates and converts a data-1 entry.
func (c *FormatAConverter) Convert(entry Entry) (models.Reading, error) {
	if !entry.truthy("timestamp") {
		return models.Reading{}, missing(entry, "timestamp", "timestamp")
	}

	iso, ok := entry["timestamp"].(string)
	if !ok {
		return models.Reading{}, invalid(entry, "timestamp", "timestamp must be a string")
	}

	ms, err := ParseISOToEpochMs(iso)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			vErr.Entry = entry
		}

		return models.Reading{}, err
	}

	if !entry.truthy("id") {
		return models.Reading{}, missing(entry, "id", "sensor ID")
	}

	sensor, ok := entry["id"].(string)
	if !ok {
		return models.Reading{}, invalid(entry, "id", "sensor ID must be a string")
	}

	if !entry.present("value") {
		return models.Reading{}, missing(entry, "value", "sensor value")
	}

	value, ok := number(entry["value"])
	if !ok {
		return models.Reading{}, invalid(entry, "value", "sensor value must be a number")
	}

	return models.Reading{
		Sensor:    sensor,
		Value:     value,
		Timestamp: ms,
	}, nil
}

// FormatBConverter handles entries shaped as
// {"deviceId": "device-2", "reading": 45.7, "time": 1685624400000}.
type FormatBConverter struct{}

// NewFormatBConverter creates a new data-2 converter.
func NewFormatBConverter() *FormatBConverter {
	return &FormatBConverter{}
}

// Name returns the source format name.
func (c *FormatBConverter) Name() string {
	return FormatB
}

// Convert validates and converts a data-2 entry. The time field is already
// in epoch milliseconds.
func (c *FormatBConverter) Convert(entry Entry) (models.Reading, error) {
	if !entry.truthy("deviceId") {
		return models.Reading{}, missing(entry, "deviceId", "deviceId")
	}

	sensor, ok := entry["deviceId"].(string)
	if !ok {
		return models.Reading{}, invalid(entry, "deviceId", "deviceId must be a string")
	}

	if !entry.present("reading") {
		return models.Reading{}, missing(entry, "reading", "reading")
	}

	value, ok := number(entry["reading"])
	if !ok {
		return models.Reading{}, invalid(entry, "reading", "reading must be a number")
	}

	if !entry.present("time") {
		return models.Reading{}, missing(entry, "time", "time")
	}

	ms, ok := integer(entry["time"])
	if !ok {
		return models.Reading{}, invalid(entry, "time", "time must be an integer")
	}

	return models.Reading{
		Sensor:    sensor,
		Value:     value,
		Timestamp: ms,
	}, nil
}
