package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erazemk/arsenal/internal/metrics"
)

var tracer = otel.Tracer("github.com/erazemk/arsenal/internal/store")

// ParseError is returned when a store file holds malformed JSON.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// file is one JSON document holding a whole collection. The mutex guards
// every load-modify-save sequence on the document.
type file[T any] struct {
	name string
	path string
	mu   sync.Mutex

	// rename replaces the document with the written temp file. Nil means os.Rename.
	rename func(oldpath, newpath string) error
}

// load reads the whole collection. A missing or empty file is an empty collection.
func (f *file[T]) load() ([]T, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &ParseError{Path: f.path, Err: err}
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// save replaces the document with records. The data is written to a
// temporary file in the same directory and renamed over the original.
func (f *file[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f.name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", f.path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", f.path, err)
	}
	rename := f.rename
	if rename == nil {
		rename = os.Rename
	}
	if err := rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

// read loads the collection under the file lock.
func (f *file[T]) read(ctx context.Context, op string) ([]T, error) {
	_, span := f.startSpan(ctx, op)
	defer span.End()

	f.mu.Lock()
	records, err := f.load()
	f.mu.Unlock()

	f.finish(span, op, err)
	return records, err
}

// update runs fn over the loaded collection and saves the result when fn
// reports a change. Errors from fn abort the update without writing.
func (f *file[T]) update(ctx context.Context, op string, fn func([]T) ([]T, bool, error)) error {
	_, span := f.startSpan(ctx, op)
	defer span.End()

	f.mu.Lock()
	err := f.updateLocked(fn)
	f.mu.Unlock()

	f.finish(span, op, err)
	return err
}

// updateLocked is update for callers already holding f.mu.
func (f *file[T]) updateLocked(fn func([]T) ([]T, bool, error)) error {
	records, err := f.load()
	if err != nil {
		return err
	}
	records, changed, err := fn(records)
	if err != nil || !changed {
		return err
	}
	return f.save(records)
}

func (f *file[T]) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "store."+op, trace.WithAttributes(
		attribute.String("store.file", f.name),
	))
}

func (f *file[T]) finish(span trace.Span, op string, err error) {
	if err != nil && !isDomainError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.StoreOperations.WithLabelValues(f.name, op, metrics.Result(err)).Inc()
}
