// Package errs defines the error kinds surfaced by the classifier core.
//
// Arithmetic errors (entropy or chi-square over an empty distribution) are
// deliberately absent: the spec requires those to report zero, not raise.
package errs

import "errors"

// Sentinel kinds. Wrap with fmt.Errorf("...: %w", ErrX) and compare with
// errors.Is, never by matching message text.
var (
	// ErrSchema: instance arity does not match the feature count, or a
	// numeric feature was fed a non-numeric value.
	ErrSchema = errors.New("schema error")

	// ErrUnknownValue: a serialized distribution references a target id
	// that does not exist and on-demand creation was disabled.
	ErrUnknownValue = errors.New("unknown value error")

	// ErrConfig: an illegal configuration (K below 1 at classification
	// time, a stored matrix requested for a metric that has none, an
	// unrecognised --log-level or --log-format). An AlgorithmType other
	// than IB1 is refused by the option registry as IllegalValue instead;
	// value-difference on a numeric feature and the decay beta range are
	// not checked.
	ErrConfig = errors.New("config error")

	// ErrState: an operation was attempted against a state machine that
	// forbids it (add_value after freeze, mutating a frozen option,
	// printing a matrix that was never built). FVDistance against an
	// unbuilt matrix does not return it: it falls back to Overlap.
	ErrState = errors.New("state error")
)
