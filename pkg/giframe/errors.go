package giframe

import "errors"

var (
	// ErrUnknownStage means the workflow found itself in a stage it does not
	// know how to advance from.
	ErrUnknownStage = errors.New("giframe: unknown internal status")
	// ErrPending is returned by Result before the workflow has finished.
	ErrPending = errors.New("giframe: result not ready")
)
