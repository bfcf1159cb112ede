package flow

import "github.com/plugwise-go/plugwise-setup/pkg/entry"

// ResultType is the outcome of a flow step.
type ResultType string

const (
	// ResultForm asks the host to show a form.
	ResultForm ResultType = "form"
	// ResultCreateEntry ends the flow with a new config entry.
	ResultCreateEntry ResultType = "create_entry"
	// ResultAbort ends the flow without an entry.
	ResultAbort ResultType = "abort"
)

// Result is what a step hands back to the host.
type Result struct {
	Type    ResultType
	FlowID  string
	Handler string

	// StepID, Schema, Errors and Placeholders are set for forms.
	StepID       string
	Schema       *Schema
	Errors       map[string]string
	Placeholders map[string]string

	// Err is the handshake failure behind a form's base error.
	Err error

	// Title and Data are set when an entry is created.
	Title string
	Data  Input

	// Entry is the persisted entry, set by the Manager.
	Entry *entry.Entry

	// Reason is set for aborts.
	Reason string
}

// Terminal reports whether the flow ended with this result.
func (r Result) Terminal() bool {
	return r.Type != ResultForm
}
