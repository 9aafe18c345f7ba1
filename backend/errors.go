package backend

import (
	"errors"
	"fmt"
)

// Kind tells apart the two ways a fetch can fail.
type Kind int

const (
	// KindNetwork covers transport failures and non-2xx responses.
	KindNetwork Kind = iota + 1
	// KindBackendReportedFailure is a response without success: true.
	KindBackendReportedFailure
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindBackendReportedFailure:
		return "backend_reported_failure"
	default:
		return "unknown"
	}
}

// Sentinels matched by FetchError through errors.Is.
var (
	ErrNetwork                = errors.New("backend unreachable")
	ErrBackendReportedFailure = errors.New("backend reported failure")
)

// FetchError is returned by every Client fetch.
type FetchError struct {
	Kind     Kind
	Endpoint string
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", e.Endpoint, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Endpoint, e.Kind, e.Err)
}

// Unwrap returns the wrapped error for errors.Is/As compatibility.
func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrBackendReportedFailure:
		return e.Kind == KindBackendReportedFailure
	}
	return false
}

func networkError(endpoint string, err error) *FetchError {
	return &FetchError{Kind: KindNetwork, Endpoint: endpoint, Err: err}
}

func reportedFailure(endpoint string, err error) *FetchError {
	return &FetchError{Kind: KindBackendReportedFailure, Endpoint: endpoint, Err: err}
}
