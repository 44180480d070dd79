package agent

import (
	"errors"
	"fmt"
)

// ErrUnknownIntent is returned by Lookup for intents with no handler.
var ErrUnknownIntent = errors.New("unknown intent")

// UpstreamError marks a failure of the generation service during a named
// pipeline stage. It is never retried.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(stage string, err error) error {
	return &UpstreamError{Stage: stage, Err: err}
}
