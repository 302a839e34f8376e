package source

import (
	"errors"
	"fmt"
)

// FailureKind classifies why an adapter call produced no data.
type FailureKind string

const (
	// FailureTransient covers timeouts, connection errors and non-2xx responses. The call is
	// not retried within the run.
	FailureTransient FailureKind = "transient"
	// FailureParse means the response arrived but its payload could not be decoded.
	FailureParse FailureKind = "parse"
	// FailureRequest means the request itself could not be built (bad URL, unsupported method).
	FailureRequest FailureKind = "request"
)

// Failure is the only error type returned by adapter calls.
type Failure struct {
	Kind       FailureKind
	Endpoint   string
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.StatusCode != 0 {
		return fmt.Sprintf("%s failure from %s (status %d): %v", f.Kind, f.Endpoint, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("%s failure from %s: %v", f.Kind, f.Endpoint, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// KindOf returns the failure kind carried by err, or "" when err is not a *Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func transientFailure(endpoint string, status int, err error) *Failure {
	return &Failure{Kind: FailureTransient, Endpoint: endpoint, StatusCode: status, Err: err}
}

func parseFailure(endpoint string, err error) *Failure {
	return &Failure{Kind: FailureParse, Endpoint: endpoint, Err: err}
}
