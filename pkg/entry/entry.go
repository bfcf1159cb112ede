package entry

import (
	"errors"
	"maps"
	"time"
)

// Registry errors.
var (
	ErrAlreadyConfigured = errors.New("already configured")
	ErrNotFound          = errors.New("entry not found")
)

// Entry is a persisted configuration record for one device.
type Entry struct {
	// EntryID is the registry-assigned identifier (UUID).
	EntryID string `json:"entry_id"`

	// Domain is the integration the entry belongs to (e.g. "plugwise").
	Domain string `json:"domain"`

	// Title is the display name.
	Title string `json:"title"`

	// UniqueID identifies the physical device. May be empty.
	UniqueID string `json:"unique_id,omitempty"`

	// Source is how the entry was created ("user", "zeroconf").
	Source string `json:"source"`

	// Data holds the connection input.
	Data map[string]any `json:"data"`

	// CreatedAt is when the entry was added.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the data last changed.
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Clone returns a deep enough copy for callers to modify Data freely.
func (e *Entry) Clone() *Entry {
	c := *e
	c.Data = maps.Clone(e.Data)
	return &c
}

// String returns the string value of a data field, or "".
func (e *Entry) String(key string) string {
	s, _ := e.Data[key].(string)
	return s
}

// Int returns the integer value of a data field.
// Whole-number floats from decoded JSON are accepted.
func (e *Entry) Int(key string) (int, bool) {
	switch v := e.Data[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}
