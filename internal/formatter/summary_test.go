package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorconv/internal/models"
)

func TestTable(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:   "Basic table",
			header: []string{"Header 1", "Header 2"},
			rows:   [][]string{{"val 1", "val 2"}},
			expected: `| Header 1 | Header 2 |
| -------- | -------- |
| val 1    | val 2    |`,
		},
		{
			name:   "Minimum width",
			header: []string{"A", "B"},
			rows:   [][]string{{"1", "2"}},
			expected: `| A   | B   |
| --- | --- |
| 1   | 2   |`,
		},
		{
			name:   "Ragged rows padded",
			header: []string{"H1"},
			rows:   [][]string{{"v1", "extra"}},
			expected: `| H1  |       |
| --- | ----- |
| v1  | extra |`,
		},
		{
			name:   "Wide characters",
			header: []string{"Sensor", "N"},
			rows:   [][]string{{"溫度", "1"}},
			expected: `| Sensor | N   |
| ------ | --- |
| 溫度   | 1   |`,
		},
		{
			name:   "Pipes escaped",
			header: []string{"Sensor"},
			rows:   [][]string{{"a|b"}},
			expected: `| Sensor |
| ------ |
| a\|b   |`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(Table(tt.header, tt.rows), "\n")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTable_Empty(t *testing.T) {
	assert.Nil(t, Table(nil, nil))
}

func TestSummarize(t *testing.T) {
	readings := []models.Reading{
		{Sensor: "b", Value: "5", Timestamp: 300},
		{Sensor: "a", Value: "2.5", Timestamp: 100},
		{Sensor: "b", Value: "-1", Timestamp: 200},
		{Sensor: "b", Value: "9", Timestamp: 400},
	}

	got := Summarize(readings)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].Sensor)
	assert.Equal(t, 1, got[0].Count)

	b := got[1]
	assert.Equal(t, "b", b.Sensor)
	assert.Equal(t, 3, b.Count)
	assert.Equal(t, "-1", b.Min.Value.String())
	assert.Equal(t, "9", b.Max.Value.String())
	assert.Equal(t, int64(200), b.First)
	assert.Equal(t, int64(400), b.Last)
}

func TestRenderSummary(t *testing.T) {
	sources := []SourceStats{
		{Name: "data-1.json", Format: "data-1", Loaded: 2, Converted: 1, Skipped: 1},
		{Name: "data-2.json", Format: "data-2", Loaded: 1, Converted: 1},
	}
	readings := []models.Reading{
		{Sensor: "sensor-1", Value: "23.5", Timestamp: 1685620800000},
		{Sensor: "device-2", Value: "45.7", Timestamp: 1685624400000},
	}

	out := RenderSummary(sources, readings)

	assert.Contains(t, out, "Unified readings: 2")
	assert.Contains(t, out, "| data-1.json | data-1 | 2      | 1         | 1       |")
	assert.Contains(t, out, "| device-2 | 1        | 45.7 | 45.7 | 2023-06-01T13:00:00Z | 2023-06-01T13:00:00Z |")
	assert.Less(t, strings.Index(out, "device-2 |"), strings.Index(out, "sensor-1 |"))
}

func TestRenderSummary_NoReadings(t *testing.T) {
	out := RenderSummary(nil, nil)
	assert.Contains(t, out, "No readings.")
}
