package jointset

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat is wrapped by the ValidationError returned for a
	// format code outside 1..4.
	ErrUnknownFormat = errors.New("unrecognized input format code")

	// ErrEmptyInput is returned when the orientation table has no rows.
	ErrEmptyInput = errors.New("jointset: input table has no rows")
)

// ValidationError reports a violated input contract. It is fatal: a run
// that hits one never starts computing.
type ValidationError struct {
	Row   int // zero-based table row, -1 when not tied to a row
	Field string
	Value float64
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("jointset: invalid %s %g: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("jointset: row %d: invalid %s %g: %v", e.Row, e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IssueKind classifies a recoverable, per-class problem.
type IssueKind string

const (
	// IssueDegenerateClass covers n-R≈0 (K capped), too few members for
	// the confidence cone, and an undefined mean direction.
	IssueDegenerateClass IssueKind = "degenerate_class"
	// IssueGoodnessOfFit marks a class whose goodness-of-fit tests could
	// not be completed.
	IssueGoodnessOfFit IssueKind = "goodness_of_fit"
	// IssueClusteringDegeneracy marks clustering problems that were
	// clamped rather than failed, such as duplicate or empty medoids.
	IssueClusteringDegeneracy IssueKind = "clustering_degeneracy"
)

// Issue is a warning attached to one class (or to the run when Class is 0).
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Class  int       `json:"class"`
	Detail string    `json:"detail"`
}

func (i Issue) String() string {
	if i.Class == 0 {
		return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
	}
	return fmt.Sprintf("class %d: %s: %s", i.Class, i.Kind, i.Detail)
}

// Status summarizes how far a class got through the pipeline.
type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// GoodnessOfFitError wraps a failure in one stage of the goodness-of-fit
// procedure for a single class.
type GoodnessOfFitError struct {
	Class int
	Stage string
	Err   error
}

func (e *GoodnessOfFitError) Error() string {
	return fmt.Sprintf("jointset: class %d: goodness-of-fit %s: %v", e.Class, e.Stage, e.Err)
}

func (e *GoodnessOfFitError) Unwrap() error { return e.Err }
