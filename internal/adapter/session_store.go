package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	m "gooze.dev/pkg/mutorch/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSession is returned when the session input is malformed.
var ErrInvalidSession = errors.New("invalid session input")

// SessionStore loads the mutants and the baseline run produced by upstream tools.
type SessionStore interface {
	Load(ctx context.Context, path m.Path) (m.SessionInput, error)
}

type sessionStore struct {
	fs SourceFSAdapter
}

// NewSessionStore constructs a SessionStore reading YAML (or JSON) documents.
func NewSessionStore(fs SourceFSAdapter) SessionStore {
	return &sessionStore{fs: fs}
}

func (s *sessionStore) Load(ctx context.Context, path m.Path) (m.SessionInput, error) {
	data, err := s.fs.ReadFile(ctx, path)
	if err != nil {
		slog.Error("Failed to read session input", "path", path, "error", err)
		return m.SessionInput{}, fmt.Errorf("read session input: %w", err)
	}

	var input m.SessionInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		slog.Error("Failed to decode session input", "path", path, "error", err)
		return m.SessionInput{}, fmt.Errorf("decode session input %s: %w", path, err)
	}

	if err := validateSession(input); err != nil {
		return m.SessionInput{}, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("Loaded session input", "path", path, "mutants", len(input.Mutants), "tests", len(input.Baseline.Tests),
		"coverage", input.Baseline.Coverage != nil)

	return input, nil
}

func validateSession(input m.SessionInput) error {
	mutantIDs := make(map[string]struct{}, len(input.Mutants))

	for i, mutant := range input.Mutants {
		if mutant == nil || mutant.ID == "" {
			return fmt.Errorf("%w: mutant #%d has no id", ErrInvalidSession, i)
		}

		if _, dup := mutantIDs[mutant.ID]; dup {
			return fmt.Errorf("%w: duplicate mutant id %q", ErrInvalidSession, mutant.ID)
		}

		mutantIDs[mutant.ID] = struct{}{}
	}

	testIDs := make(map[string]struct{}, len(input.Baseline.Tests))

	for i, test := range input.Baseline.Tests {
		if test.ID == "" {
			return fmt.Errorf("%w: test #%d has no id", ErrInvalidSession, i)
		}

		if _, dup := testIDs[test.ID]; dup {
			return fmt.Errorf("%w: duplicate test id %q", ErrInvalidSession, test.ID)
		}

		if test.TimeSpentMs < 0 {
			return fmt.Errorf("%w: test %q has negative duration", ErrInvalidSession, test.ID)
		}

		testIDs[test.ID] = struct{}{}
	}

	return nil
}
