package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"sensorconv/internal/models"
	"sensorconv/internal/normalizer"
)

// SourceStats describes how one input file fared.
type SourceStats struct {
	Name      string
	Format    string
	Loaded    int
	Converted int
	Skipped   int
}

// SensorSummary aggregates the readings of one sensor.
type SensorSummary struct {
	Sensor string
	Count  int
	Min    models.Reading
	Max    models.Reading
	First  int64
	Last   int64
}

// Summarize groups readings by sensor, ordered by sensor name.
func Summarize(readings []models.Reading) []SensorSummary {
	index := make(map[string]*SensorSummary)

	for _, r := range readings {
		s, ok := index[r.Sensor]
		if !ok {
			index[r.Sensor] = &SensorSummary{
				Sensor: r.Sensor,
				Count:  1,
				Min:    r,
				Max:    r,
				First:  r.Timestamp,
				Last:   r.Timestamp,
			}

			continue
		}

		s.Count++

		if r.Float() < s.Min.Float() {
			s.Min = r
		}

		if r.Float() > s.Max.Float() {
			s.Max = r
		}

		if r.Timestamp < s.First {
			s.First = r.Timestamp
		}

		if r.Timestamp > s.Last {
			s.Last = r.Timestamp
		}
	}

	summaries := make([]SensorSummary, 0, len(index))
	for _, s := range index {
		summaries = append(summaries, *s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Sensor < summaries[j].Sensor
	})

	return summaries
}

// RenderSummary renders the per-source and per-sensor tables of a run.
func RenderSummary(sources []SourceStats, readings []models.Reading) string {
	var sb strings.Builder

	sb.WriteString("# Sensor data summary\n\n")
	fmt.Fprintf(&sb, "Unified readings: %d\n\n", len(readings))

	sb.WriteString("## Sources\n\n")

	sourceRows := make([][]string, 0, len(sources))
	for _, s := range sources {
		sourceRows = append(sourceRows, []string{
			s.Name,
			s.Format,
			strconv.Itoa(s.Loaded),
			strconv.Itoa(s.Converted),
			strconv.Itoa(s.Skipped),
		})
	}

	writeLines(&sb, Table([]string{"Source", "Format", "Loaded", "Converted", "Skipped"}, sourceRows))

	sb.WriteString("\n## Sensors\n\n")

	summaries := Summarize(readings)
	if len(summaries) == 0 {
		sb.WriteString("No readings.\n")
		return sb.String()
	}

	sensorRows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		sensorRows = append(sensorRows, []string{
			s.Sensor,
			strconv.Itoa(s.Count),
			s.Min.Value.String(),
			s.Max.Value.String(),
			normalizer.FormatEpochMs(s.First),
			normalizer.FormatEpochMs(s.Last),
		})
	}

	writeLines(&sb, Table([]string{"Sensor", "Readings", "Min", "Max", "First", "Last"}, sensorRows))

	return sb.String()
}

func writeLines(sb *strings.Builder, lines []string) {
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}
