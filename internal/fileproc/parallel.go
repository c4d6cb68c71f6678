// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/panbanda/relic/pkg/models"
	"github.com/sourcegraph/conc/pool"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Len returns the number of collected errors.
func (e *ProcessingErrors) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors)
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// Unwrap exposes the individual file errors to errors.Is and errors.As.
func (e *ProcessingErrors) Unwrap() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]error, len(e.Errors))
	for i, pe := range e.Errors {
		out[i] = pe
	}
	return out
}

func (e *ProcessingErrors) sortByPath() {
	e.mu.Lock()
	defer e.mu.Unlock()
	sort.SliceStable(e.Errors, func(i, j int) bool {
		return e.Errors[i].Path < e.Errors[j].Path
	})
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
const DefaultWorkerMultiplier = 2

// DefaultWorkers returns the worker count used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// ProgressFunc is called after each file is processed.
type ProgressFunc func()

// ErrorFunc is called when a file processing error occurs.
type ErrorFunc func(path string, err error)

// Options tunes a parallel run. The zero value uses 2x NumCPU workers and
// no size cap.
type Options struct {
	Workers     int
	MaxFileSize int64
	OnProgress  ProgressFunc
	OnError     ErrorFunc
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return DefaultWorkers()
	}
	return o.Workers
}

// ForEachFile runs fn over files in parallel. Successful results are
// returned in input order; failures are collected and never stop the batch.
// Files not yet started when ctx is cancelled fail with ctx.Err().
func ForEachFile[T any](ctx context.Context, files []string, opts Options, fn func(ctx context.Context, path string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	slots := make([]T, len(files))
	ok := make([]bool, len(files))
	errs := &ProcessingErrors{}

	fail := func(path string, err error) {
		errs.Add(path, err)
		if opts.OnError != nil {
			opts.OnError(path, err)
		}
	}

	p := pool.New().WithMaxGoroutines(opts.workers())
	for i, path := range files {
		p.Go(func() {
			defer func() {
				if opts.OnProgress != nil {
					opts.OnProgress()
				}
			}()

			if err := ctx.Err(); err != nil {
				fail(path, err)
				return
			}

			result, err := fn(ctx, path)
			if err != nil {
				fail(path, err)
				return
			}
			slots[i] = result
			ok[i] = true
		})
	}
	p.Wait()

	results := make([]T, 0, len(files))
	for i := range slots {
		if ok[i] {
			results = append(results, slots[i])
		}
	}

	if !errs.HasErrors() {
		return results, nil
	}
	errs.sortByPath()
	return results, errs
}

// MapContents reads each file, enforcing opts.MaxFileSize, and passes its
// content to fn. Ordering and error semantics match ForEachFile.
func MapContents[T any](ctx context.Context, files []string, opts Options, fn func(path string, content []byte) (T, error)) ([]T, *ProcessingErrors) {
	return ForEachFile(ctx, files, opts, func(_ context.Context, path string) (T, error) {
		content, err := ReadFile(path, opts.MaxFileSize)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(path, content)
	})
}

// ReadFile reads a file, failing with models.ErrFileTooLarge when it exceeds
// maxSize bytes. maxSize <= 0 disables the cap.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if maxSize <= 0 {
		return io.ReadAll(f)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", models.ErrFileTooLarge, info.Size(), maxSize)
	}

	// The file may grow between Stat and Read.
	content, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > maxSize {
		return nil, fmt.Errorf("%w: exceeds limit of %d bytes", models.ErrFileTooLarge, maxSize)
	}
	return content, nil
}
