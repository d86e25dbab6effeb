package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUpstreamAuth       = errors.New("upstream authentication failed")
	ErrUpstreamRateLimit  = errors.New("upstream rate limit exceeded")
	ErrUpstreamNetwork    = errors.New("upstream network failure")
	ErrUpstream           = errors.New("upstream error")
	ErrValidation         = errors.New("validation failure")
	ErrNoUsableCandidates = errors.New("no usable candidates")
	ErrCancelled          = errors.New("cancelled")
	ErrInvalidTransition  = errors.New("invalid stage transition")
)

// ErrorKind is the machine-readable error category carried by the error event.
type ErrorKind string

const (
	KindUpstreamAuth       ErrorKind = "upstream_auth"
	KindUpstreamRateLimit  ErrorKind = "upstream_rate_limit"
	KindUpstreamNetwork    ErrorKind = "upstream_network"
	KindUpstream           ErrorKind = "upstream"
	KindValidation         ErrorKind = "validation_failure"
	KindNoUsableCandidates ErrorKind = "no_usable_candidates"
	KindCancelled          ErrorKind = "cancelled"
	KindInternal           ErrorKind = "internal"
)

// PipelineError attaches the failing stage to a categorized error.
type PipelineError struct {
	Kind    ErrorKind
	Stage   Stage
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s at %s: %s: %v", e.Kind, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Stage, e.Message)
}

// Detail is the message and cause without the kind and stage prefix.
func (e *PipelineError) Detail() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// NewPipelineError classifies cause and wraps it with the stage it failed in.
func NewPipelineError(stage Stage, message string, cause error) *PipelineError {
	return &PipelineError{
		Kind:    KindOf(cause),
		Stage:   stage,
		Message: message,
		Cause:   cause,
	}
}

// KindOf maps an error chain to its category. A PipelineError keeps the kind it was built with.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrUpstreamAuth):
		return KindUpstreamAuth
	case errors.Is(err, ErrUpstreamRateLimit):
		return KindUpstreamRateLimit
	case errors.Is(err, ErrUpstreamNetwork):
		return KindUpstreamNetwork
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNoUsableCandidates):
		return KindNoUsableCandidates
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return KindCancelled
	default:
		return KindInternal
	}
}

// IsRetryable reports whether the error is worth retrying at the call site.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamRateLimit) || errors.Is(err, ErrUpstreamNetwork)
}

// IsFatal reports whether the error must abort the whole request.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUpstreamAuth)
}
