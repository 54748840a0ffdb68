package errors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmptyKey           = errors.New("empty key")
	ErrInvalidData        = errors.New("invalid data type")
	ErrEntityExists       = errors.New("entity already exists")
	ErrEvaluation         = errors.New("evaluation service failure")
	ErrUnknownAggregation = errors.New("unknown aggregation method")
	ErrRunInProgress      = errors.New("a run is already in progress")
	ErrNoReflection       = errors.New("no reflection prompt pending")
)
