package engine

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a missing register, transaction, participant or
// action. It is a client error and is never retried.
var ErrNotFound = errors.New("not found")

// ResolutionError means a blueprint or submission references a
// participant or action that does not exist: a data-integrity failure,
// not an expected runtime condition.
type ResolutionError struct {
	Ref    string
	Reason string
}

func (err *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %s", err.Ref, err.Reason)
}

func (err *ResolutionError) Unwrap() error { return ErrNotFound }

// CalculationError means a calculation rule did not evaluate to a decimal
// number. Surfaced to the submitter as a bad request, never defaulted.
type CalculationError struct {
	Field string
	Err   error
}

func (err *CalculationError) Error() string {
	return fmt.Sprintf("calculation %q: could not obtain calculation result: %v", err.Field, err.Err)
}

func (err *CalculationError) Unwrap() error { return err.Err }

// UpstreamError wraps a register or wallet failure. No retries happen at
// this layer; the submission fails as a whole.
type UpstreamError struct {
	Op  string
	Err error
}

func (err *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", err.Op, err.Err)
}

func (err *UpstreamError) Unwrap() error { return err.Err }

func upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &UpstreamError{Op: op, Err: err}
}
