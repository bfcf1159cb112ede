package log

import "time"

// Event is one step outcome of a setup flow.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// FlowID identifies the flow instance (UUID).
	FlowID string `cbor:"2,keyasint"`

	// Domain is the integration handling the flow.
	Domain string `cbor:"3,keyasint,omitempty"`

	// Source is how the flow was started ("user", "zeroconf").
	Source string `cbor:"4,keyasint,omitempty"`

	// StepID is the flow step that produced the event.
	StepID string `cbor:"5,keyasint,omitempty"`

	// Category classifies the event.
	Category Category `cbor:"6,keyasint"`

	// UniqueID is the device identifier once known.
	UniqueID string `cbor:"7,keyasint,omitempty"`

	// Host is the gateway address once known.
	Host string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Discovery *DiscoveryEvent `cbor:"9,keyasint,omitempty"`
	Form      *FormEvent      `cbor:"10,keyasint,omitempty"`
	Entry     *EntryEvent     `cbor:"11,keyasint,omitempty"`
	Abort     *AbortEvent     `cbor:"12,keyasint,omitempty"`
	Error     *ErrorEvent     `cbor:"13,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryDiscovery indicates a discovery record was received.
	CategoryDiscovery Category = 0
	// CategoryForm indicates a form was shown.
	CategoryForm Category = 1
	// CategoryError indicates a validation attempt failed.
	CategoryError Category = 2
	// CategoryEntry indicates a config entry was created.
	CategoryEntry Category = 3
	// CategoryAbort indicates the flow was aborted.
	CategoryAbort Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryDiscovery:
		return "DISCOVERY"
	case CategoryForm:
		return "FORM"
	case CategoryError:
		return "ERROR"
	case CategoryEntry:
		return "ENTRY"
	case CategoryAbort:
		return "ABORT"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name as printed by String.
func ParseCategory(s string) (Category, bool) {
	for c := CategoryDiscovery; c <= CategoryAbort; c++ {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// DiscoveryEvent records a received discovery record.
type DiscoveryEvent struct {
	Hostname string `cbor:"1,keyasint"`
	Port     int    `cbor:"2,keyasint,omitempty"`
	Title    string `cbor:"3,keyasint,omitempty"`
}

// FormEvent records a form shown to the user.
type FormEvent struct {
	// Fields are the requested field names in order.
	Fields []string `cbor:"1,keyasint"`

	// Errors are the error codes attached to the form.
	Errors map[string]string `cbor:"2,keyasint,omitempty"`
}

// EntryEvent records a created config entry.
type EntryEvent struct {
	EntryID string `cbor:"1,keyasint"`
	Title   string `cbor:"2,keyasint"`
}

// AbortEvent records why a flow ended without an entry.
type AbortEvent struct {
	Reason string `cbor:"1,keyasint"`
}

// ErrorEvent records a failed validation attempt.
type ErrorEvent struct {
	// Code is the user-facing error code (invalid_auth, cannot_connect, unknown).
	Code string `cbor:"1,keyasint"`

	// Message is the underlying error text.
	Message string `cbor:"2,keyasint,omitempty"`
}
