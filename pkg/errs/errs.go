// Package errs defines the boundary error kinds for the search core.
// Only configuration problems ever surface here: resource exhaustion
// during a search is handled internally by stopping the search and
// reporting the best move found so far (see mcts.Tree.Run), it is
// never returned as an error.
package errs

import "github.com/pkg/errors"

// Sentinel kinds, matched with errors.Is against wrapped errors
// returned from the configuration boundary (Settings.Validate,
// mcts.New).
var (
	// ErrUnsupportedBoardSize is returned when the requested board
	// size falls outside {4, 5, 6, 7, 8}.
	ErrUnsupportedBoardSize = errors.New("unsupported board size")

	// ErrInvalidConfiguration is returned for a malformed Settings
	// value, e.g. c_puct <= 0 or dirichlet_eps outside [0, 1].
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrInternalInvariant marks a programmer error, not a runtime
	// data condition: a child-visit-sum mismatch, an arena handed out
	// a value for an unsupported type, etc. Callers should treat this
	// as fatal; it is never expected in correct usage.
	ErrInternalInvariant = errors.New("internal invariant violation")
)

// UnsupportedBoardSize wraps ErrUnsupportedBoardSize with the
// offending size.
func UnsupportedBoardSize(size int) error {
	return errors.Wrapf(ErrUnsupportedBoardSize, "size=%d", size)
}

// InvalidConfiguration wraps ErrInvalidConfiguration with a reason.
func InvalidConfiguration(reason string) error {
	return errors.Wrap(ErrInvalidConfiguration, reason)
}

// InternalInvariant wraps ErrInternalInvariant with a reason.
func InternalInvariant(reason string) error {
	return errors.Wrap(ErrInternalInvariant, reason)
}
