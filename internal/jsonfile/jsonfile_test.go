package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensorconv/internal/logger"
	"sensorconv/internal/models"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	return path
}

func TestLoad_DecodesNumbersVerbatim(t *testing.T) {
	path := writeTemp(t, "data.json", `[{"id":"sensor-1","value":23.50,"big":12345678901234567890}]`)

	v, err := NewStore(logger.Discard()).Load(path)
	require.NoError(t, err)

	items, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	obj := items[0].(map[string]any)
	assert.Equal(t, json.Number("23.50"), obj["value"])
	assert.Equal(t, json.Number("12345678901234567890"), obj["big"])
}

func TestLoad_NotFound(t *testing.T) {
	var buf bytes.Buffer
	store := NewStore(logger.New(&buf, "test", "info"))
	path := filepath.Join(t.TempDir(), "missing.json")

	_, err := store.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var fErr *FileError
	require.True(t, errors.As(err, &fErr))
	assert.Equal(t, OpRead, fErr.Op)
	assert.Equal(t, path, fErr.Path)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), path)
}

func TestLoad_InvalidJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `[{"id": "a"`},
		{"trailing garbage", `[] []`},
		{"empty", ``},
		{"not json", `hello`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "bad.json", tt.content)

			_, err := NewStore(logger.Discard()).Load(path)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestLoad_Directory(t *testing.T) {
	_, err := NewStore(logger.Discard()).Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIO)
}

func TestLoad_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}

	path := writeTemp(t, "secret.json", `[]`)
	require.NoError(t, os.Chmod(path, 0))

	_, err := NewStore(logger.Discard()).Load(path)
	assert.ErrorIs(t, err, ErrPermission)
}

func TestLoadArray(t *testing.T) {
	store := NewStore(logger.Discard())

	items, err := store.LoadArray(writeTemp(t, "ok.json", `[1, {"a": 2}, "x"]`))
	require.NoError(t, err)
	assert.Len(t, items, 3)

	items, err = store.LoadArray(writeTemp(t, "empty.json", `[]`))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = store.LoadArray(writeTemp(t, "obj.json", `{"id": "a"}`))
	assert.ErrorIs(t, err, ErrParse)
	assert.Contains(t, err.Error(), "got object")
}

func TestSave_IndentedOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.json")
	readings := []models.Reading{
		{Sensor: "sensor-1", Value: "23.5", Timestamp: 1685620800000},
	}

	require.NoError(t, NewStore(logger.Discard()).Save(path, readings))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
  {
    "sensor": "sensor-1",
    "value": 23.5,
    "timestamp": 1685620800000
  }
]
`
	assert.Equal(t, want, string(data))
}

func TestSave_ReplacesExistingFile(t *testing.T) {
	path := writeTemp(t, "output.json", `{"old": "content that is much longer than the new content"}`)

	require.NoError(t, NewStore(logger.Discard()).Save(path, []models.Reading{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not be left behind")
}

func TestSave_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "output.json")

	require.NoError(t, NewStore(logger.Discard()).Save(path, []int{1}))
	assert.True(t, Exists(path))
}

func TestSave_TargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "output.json")
	require.NoError(t, os.Mkdir(target, 0755))

	err := NewStore(logger.Discard()).Save(target, []int{1})
	require.Error(t, err)

	var fErr *FileError
	require.True(t, errors.As(err, &fErr))
	assert.Equal(t, OpWrite, fErr.Op)
}

func TestSave_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}

	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

	err := NewStore(logger.Discard()).Save(filepath.Join(dir, "output.json"), []int{1})
	assert.ErrorIs(t, err, ErrPermission)
}

func TestSave_UnencodableValue(t *testing.T) {
	err := NewStore(logger.Discard()).Save(filepath.Join(t.TempDir(), "x.json"), map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, ErrIO)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := NewStore(logger.Discard())
	path := filepath.Join(t.TempDir(), "output.json")

	readings := []models.Reading{
		{Sensor: "sensor-1", Value: "23.5", Timestamp: 1685620800000},
		{Sensor: "device-2", Value: "0", Timestamp: 0},
		{Sensor: "device-2", Value: "-4.25e-3", Timestamp: 1685624400000},
	}
	require.NoError(t, store.Save(path, readings))

	items, err := store.LoadArray(path)
	require.NoError(t, err)
	require.Len(t, items, len(readings))

	for i, r := range readings {
		assert.Equal(t, map[string]any{
			"sensor":    r.Sensor,
			"value":     r.Value,
			"timestamp": json.Number(jsonInt(r.Timestamp)),
		}, items[i])
	}
}

func TestExists(t *testing.T) {
	path := writeTemp(t, "a.json", `[]`)

	assert.True(t, Exists(path))
	assert.False(t, Exists(path+".nope"))
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
