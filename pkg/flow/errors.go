package flow

import (
	"errors"
	"fmt"

	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

// Manager errors.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnknownFlow   = errors.New("unknown flow")
	ErrUnknownSource = errors.New("unknown flow source")
	ErrNoDiscovery   = errors.New("zeroconf flow requires a discovery record")
)

// ErrorKind classifies a failed connect handshake.
type ErrorKind uint8

const (
	// ErrorKindNone means the handshake succeeded.
	ErrorKindNone ErrorKind = iota
	// ErrorKindAuth means the gateway rejected the credentials.
	ErrorKindAuth
	// ErrorKindConnect means the gateway was unreachable or spoke
	// something unexpected.
	ErrorKindConnect
	// ErrorKindUnknown covers everything else.
	ErrorKindUnknown
)

// ClassifyError maps a handshake error to its kind.
func ClassifyError(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, smile.ErrInvalidAuthentication):
		return ErrorKindAuth
	case errors.Is(err, smile.ErrProtocol):
		return ErrorKindConnect
	default:
		return ErrorKindUnknown
	}
}

// Code returns the user-facing error code.
func (k ErrorKind) Code() string {
	switch k {
	case ErrorKindAuth:
		return "invalid_auth"
	case ErrorKindConnect:
		return "cannot_connect"
	case ErrorKindUnknown:
		return "unknown"
	default:
		return ""
	}
}

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "NONE"
	case ErrorKindAuth:
		return "AUTH"
	case ErrorKindConnect:
		return "CONNECT"
	case ErrorKindUnknown:
		return "UNKNOWN"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// ValidationError reports a submitted field that does not fit the schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
