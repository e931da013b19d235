// Package upstream holds the shared failure taxonomy and retry policy for
// the three source adapters. Every adapter classifies its errors the same
// way, and the retry decision lives in one place instead of per-adapter
// ad-hoc error handling.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// FailureKind classifies why an adapter call produced no data
type FailureKind string

const (
	// KindTimeout means the call did not finish within its budget
	KindTimeout FailureKind = "timeout"
	// KindBadQuery means the upstream rejected the request (HTTP 4xx); retrying is pointless
	KindBadQuery FailureKind = "bad_query"
	// KindTransient means a 5xx or connection error; one retry is allowed
	KindTransient FailureKind = "transient"
)

// Failure is a classified adapter error. It is never surfaced as a request
// failure; the aggregator absorbs it into a missing input.
type Failure struct {
	Kind   FailureKind
	Source string
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s adapter failed (%s): %v", f.Source, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Retryable reports whether the policy allows one more attempt
func (f *Failure) Retryable() bool {
	return f.Kind == KindTransient
}

// ClassifyStatus maps an HTTP status code to a failure kind
func ClassifyStatus(source string, status int) *Failure {
	kind := KindTransient
	if status >= 400 && status < 500 {
		kind = KindBadQuery
	}
	return &Failure{
		Kind:   kind,
		Source: source,
		Err:    fmt.Errorf("HTTP error %d", status),
	}
}

// ClassifyError maps a transport-level error to a failure kind.
// Context deadline expiry is a timeout; everything else is transient.
func ClassifyError(source string, err error) *Failure {
	kind := KindTransient
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = KindTimeout
	}
	return &Failure{Kind: kind, Source: source, Err: err}
}

// IsSuccess reports whether a status code counts as a usable response
func IsSuccess(status int) bool {
	return status == http.StatusOK
}
