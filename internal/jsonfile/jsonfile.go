// Package jsonfile loads and saves JSON documents on the local filesystem.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"sensorconv/internal/logger"
)

// Failure classes. Every error returned by this package is a *FileError that
// matches exactly one of these via errors.Is.
var (
	ErrNotFound   = errors.New("file not found")
	ErrParse      = errors.New("invalid JSON")
	ErrPermission = errors.New("permission denied")
	ErrIO         = errors.New("i/o error")
)

// Operation names used in FileError.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// FileError describes a failed load or save.
type FileError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}

	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the failure class and the underlying cause.
func (e *FileError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// Store reads and writes JSON files, logging every failure with its path.
type Store struct {
	log *logger.Logger
}

// NewStore creates a new store.
func NewStore(log *logger.Logger) *Store {
	return &Store{log: log.With("component", "jsonfile")}
}

// Exists reports whether path names an existing file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads path and decodes its JSON content. Numbers decode as
// json.Number so they can be written back unchanged.
func (s *Store) Load(path string) (any, error) {
	s.log.Info("Loading data", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		fErr := &FileError{Op: OpRead, Path: path, Kind: classify(err), Err: err}
		s.log.Error("Failed to load file", "path", path, "error", fErr)

		return nil, fErr
	}

	v, err := decode(data)
	if err != nil {
		fErr := &FileError{Op: OpRead, Path: path, Kind: ErrParse, Err: err}
		s.log.Error("Invalid JSON", "path", path, "error", err)

		return nil, fErr
	}

	return v, nil
}

// LoadArray loads path and requires the document to be a JSON array.
func (s *Store) LoadArray(path string) ([]any, error) {
	v, err := s.Load(path)
	if err != nil {
		return nil, err
	}

	items, ok := v.([]any)
	if !ok {
		fErr := &FileError{
			Op:   OpRead,
			Path: path,
			Kind: ErrParse,
			Err:  fmt.Errorf("expected a JSON array, got %s", typeName(v)),
		}
		s.log.Error("Unexpected document shape", "path", path, "error", fErr)

		return nil, fErr
	}

	return items, nil
}

// Save writes v as 2-space indented JSON, replacing any existing file. The
// document goes to a temporary file first so a failed save never leaves a
// truncated target behind.
func (s *Store) Save(path string, v any) error {
	s.log.Info("Saving data", "path", path)

	data, err := encode(v)
	if err != nil {
		fErr := &FileError{Op: OpWrite, Path: path, Kind: ErrIO, Err: err}
		s.log.Error("Failed to encode data", "path", path, "error", err)

		return fErr
	}

	if err := writeFile(path, data); err != nil {
		kind := classify(err)
		if kind == ErrNotFound {
			kind = ErrIO
		}

		fErr := &FileError{Op: OpWrite, Path: path, Kind: kind, Err: err}
		if errors.Is(fErr, ErrPermission) {
			s.log.Error("Permission denied when writing", "path", path)
		} else {
			s.log.Error("Failed to save data", "path", path, "error", err)
		}

		return fErr
	}

	s.log.Info("Successfully saved data", "path", path, "bytes", len(data))

	return nil
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}

	return v, nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermission
	default:
		return ErrIO
	}
}

func typeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
