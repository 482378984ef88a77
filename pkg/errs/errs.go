// Package errs defines the error taxonomy shared by every pipeline stage.
//
// Each failure is classified by one of the sentinel kinds below. Callers test
// the kind with errors.Is and still reach the underlying cause through
// errors.Unwrap or errors.As.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel error kinds.
var (
	// ErrNetwork covers link probes and browser navigation failures.
	ErrNetwork = errors.New("network error")
	// ErrParse covers malformed structured output from the completion service.
	ErrParse = errors.New("parse error")
	// ErrResourceMissing covers absent font or template assets.
	ErrResourceMissing = errors.New("resource missing")
	// ErrFilesystem covers mkdir and write failures.
	ErrFilesystem = errors.New("filesystem error")
	// ErrUpstreamUnavailable covers an unreachable or empty completion service.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrConfig covers invalid configuration, including label overflow.
	ErrConfig = errors.New("configuration error")
)

// Error annotates a cause with the operation that failed and its kind.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	default:
		return fmt.Sprint(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// New builds an *Error of the given kind.
func New(kind error, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Network wraps err as an ErrNetwork.
func Network(op string, err error) error { return New(ErrNetwork, op, err) }

// Parse wraps err as an ErrParse.
func Parse(op string, err error) error { return New(ErrParse, op, err) }

// ResourceMissing wraps err as an ErrResourceMissing.
func ResourceMissing(op string, err error) error { return New(ErrResourceMissing, op, err) }

// Filesystem wraps err as an ErrFilesystem.
func Filesystem(op string, err error) error { return New(ErrFilesystem, op, err) }

// Upstream wraps err as an ErrUpstreamUnavailable.
func Upstream(op string, err error) error { return New(ErrUpstreamUnavailable, op, err) }

// Config wraps err as an ErrConfig.
func Config(op string, err error) error { return New(ErrConfig, op, err) }

// KindOf returns the taxonomy kind of err, or nil if it is unclassified.
func KindOf(err error) error {
	for _, kind := range []error{ErrNetwork, ErrParse, ErrResourceMissing, ErrFilesystem, ErrUpstreamUnavailable, ErrConfig} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
