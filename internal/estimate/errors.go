package estimate

import (
	"errors"
	"fmt"
)

// FailureKind classifies where the remote estimation path broke down.
type FailureKind string

const (
	// FailureNetwork covers transport errors and non-2xx upstream status.
	FailureNetwork FailureKind = "network"
	// FailureEnvelope means the completion response had an unexpected shape.
	FailureEnvelope FailureKind = "envelope"
	// FailureParse means no valid JSON object could be extracted.
	FailureParse FailureKind = "parse"
	// FailureSchema means the JSON was valid but had no materials array.
	FailureSchema FailureKind = "schema"
)

// PipelineError wraps a stage failure with its classification. Every kind is
// caught at the pipeline boundary and answered with the fallback estimator;
// none propagates to the end user.
type PipelineError struct {
	Kind FailureKind
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func newNetworkError(err error) error {
	return &PipelineError{Kind: FailureNetwork, Err: err}
}

func newEnvelopeError(format string, args ...any) error {
	return &PipelineError{Kind: FailureEnvelope, Err: fmt.Errorf(format, args...)}
}

func newParseError(err error) error {
	return &PipelineError{Kind: FailureParse, Err: err}
}

func newSchemaError(format string, args ...any) error {
	return &PipelineError{Kind: FailureSchema, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure classification from an error chain. Transport
// errors raised outside this package count as network failures.
func KindOf(err error) FailureKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureNetwork
}
