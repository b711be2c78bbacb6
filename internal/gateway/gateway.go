// Package gateway defines the contract with the remote diagnosis service.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/cropdoctor/diagnosis-api/internal/model"
)

// Gateway submits diagnosis requests to the remote service and reads records
// back. Every method may fail on transport; callers decide the fallback.
type Gateway interface {
	Create(ctx context.Context, req *model.CreateDiagnosisRequest) (*model.Diagnosis, error)
	GetByID(ctx context.Context, id int) (*model.Diagnosis, error)
	// GetHistory returns one page of records plus the remote total count.
	GetHistory(ctx context.Context, farmerID *string, limit, offset int) ([]*model.Diagnosis, int, error)
}

// ErrorKind tags the failure mode of a remote call. The sync layer falls back
// to the cache on every kind today; the tag keeps the distinction available
// for per-kind policy later.
type ErrorKind int

const (
	KindTimeout ErrorKind = iota + 1
	KindUnreachable
	KindServerError
	KindMalformed
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindUnreachable:
		return "unreachable"
	case KindServerError:
		return "server_error"
	case KindMalformed:
		return "malformed"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// TransportError wraps any remote-call failure with its kind and, for server
// errors, the HTTP status code.
type TransportError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote call failed (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote call failed (%s): %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// KindOf returns the error kind of err, or 0 if err is not a TransportError.
func KindOf(err error) ErrorKind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// IsNotFound reports whether err is a remote not-found.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
