// Package spill provides an append-only, gob encoded log of items kept on
// disk so long sessions do not hold every result in memory.
package spill

import (
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// ErrClosed is returned when appending to a closed spill.
var ErrClosed = errors.New("spill is closed")

// Spill is an append-only log of items of type T.
type Spill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(fn func(index uint64, item T) error) error
	Collect() ([]T, error)
	Close() error
	Remove() error
}

type fileSpill[T any] struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *gob.Encoder
	length  uint64
}

// New creates a spill file inside dir. An empty dir uses the system temp directory.
func New[T any](dir string) (Spill[T], error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "mutorch-spill")
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		slog.Error("Failed to create spill directory", "dir", dir, "error", err)
		return nil, fmt.Errorf("create spill directory: %w", err)
	}

	file, err := os.CreateTemp(dir, "spill-*.gob")
	if err != nil {
		slog.Error("Failed to create spill file", "dir", dir, "error", err)
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	slog.Debug("Created spill", "path", file.Name())

	return &fileSpill[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

func (s *fileSpill[T]) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.length
}

func (s *fileSpill[T]) Path() string {
	return s.path
}

func (s *fileSpill[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return ErrClosed
	}

	if err := s.encoder.Encode(item); err != nil {
		slog.Error("Failed to encode spill item", "path", s.path, "index", s.length, "error", err)
		return fmt.Errorf("encode item %d: %w", s.length, err)
	}

	s.length++

	return nil
}

// Range decodes the items in append order. The callback must not append.
func (s *fileSpill[T]) Range(fn func(index uint64, item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open spill: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("Failed to close spill reader", "path", s.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := range s.length {
		var item T
		if err := decoder.Decode(&item); err != nil {
			return fmt.Errorf("decode item %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

func (s *fileSpill[T]) Collect() ([]T, error) {
	items := make([]T, 0, s.Len())

	err := s.Range(func(_ uint64, item T) error {
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Close stops accepting items. Already written items stay readable.
func (s *fileSpill[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil
	s.encoder = nil

	if err != nil {
		return fmt.Errorf("close spill: %w", err)
	}

	slog.Debug("Closed spill", "path", s.path, "length", s.length)

	return nil
}

// Remove closes the spill and deletes its file.
func (s *fileSpill[T]) Remove() error {
	if err := s.Close(); err != nil {
		return err
	}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove spill: %w", err)
	}

	return nil
}
