package installer

import (
	"errors"
	"fmt"
)

// Kind classifies installer failures.
type Kind int

const (
	// InvalidArgument means the caller passed input the facade rejects
	// before any daemon contact, e.g. an unknown instruction set.
	InvalidArgument Kind = iota + 1
	// RemoteOperationFailed means installd was unreachable, the call failed
	// in transit, or the daemon reported a status failure.
	RemoteOperationFailed
	// MalformedResponse means a legacy text-protocol reply was missing
	// expected fields or carried non-numeric data where a number was
	// required.
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case RemoteOperationFailed:
		return "remote_operation_failed"
	case MalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Error is the single failure type every installer operation returns. The
// two daemon protocols surface their transport-specific failures only as the
// wrapped cause.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.err }

// IsInvalidArgument reports whether err is an installer error of kind
// InvalidArgument.
func IsInvalidArgument(err error) bool { return hasKind(err, InvalidArgument) }

// IsRemoteOperationFailed reports whether err is an installer error of kind
// RemoteOperationFailed.
func IsRemoteOperationFailed(err error) bool { return hasKind(err, RemoteOperationFailed) }

// IsMalformedResponse reports whether err is an installer error of kind
// MalformedResponse.
func IsMalformedResponse(err error) bool { return hasKind(err, MalformedResponse) }

func hasKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

func invalidArgf(format string, args ...interface{}) error {
	return &Error{Kind: InvalidArgument, msg: fmt.Sprintf(format, args...)}
}

func malformedf(format string, args ...interface{}) error {
	return &Error{Kind: MalformedResponse, msg: fmt.Sprintf(format, args...)}
}

// remoteError wraps any lower-level failure as RemoteOperationFailed,
// carrying the underlying message.
func remoteError(err error) error {
	return &Error{Kind: RemoteOperationFailed, msg: err.Error(), err: err}
}
