package errors

import (
	"context"
	stderrors "errors"
)

// CheckContext returns an error if the context is canceled or timed out.
// This provides a standardized way to check and wrap context errors.
func CheckContext(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		return Wrap(err, Canceled, operation+" canceled")
	}
	return nil
}

// IsFatal reports whether err carries the EvaluationFatal code anywhere in
// its chain. The goal manager uses this to decide between absorbing an
// evaluator fault and aborting the search.
func IsFatal(err error) bool {
	return stderrors.Is(err, New(EvaluationFatal, ""))
}

// IsInvariant reports whether err is an invariant violation.
func IsInvariant(err error) bool {
	return stderrors.Is(err, New(InvariantViolation, ""))
}
