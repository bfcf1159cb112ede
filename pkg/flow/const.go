package flow

import (
	"time"

	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

// Domain is the integration name entries are registered under.
const Domain = "plugwise"

// Input field names.
const (
	FieldHost     = "host"
	FieldPort     = "port"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldName     = "name"

	// FieldPWType tags how the entry talks to the gateway.
	FieldPWType = "plugwise_type"
)

// PWTypeAPI marks an entry that connects directly to the gateway API.
const PWTypeAPI = "api"

// StepUser is the id of the data-entry step.
const StepUser = "user"

// ErrorBase is the error slot not tied to a single field.
const ErrorBase = "base"

// Abort reasons.
const (
	AbortAlreadyConfigured = "already_configured"
	AbortAlreadyInProgress = "already_in_progress"
	AbortUserCancelled     = "user_cancelled"
)

// Username labels shown in the selection field.
const (
	LabelSmile   = "smile (Adam/Anna/P1)"
	LabelStretch = "stretch (Stretch)"
)

// ValidateTimeout bounds one connect handshake.
const ValidateTimeout = 30 * time.Second

// DefaultUsername is the username assumed until discovery says otherwise.
const DefaultUsername = smile.UsernameSmile

// Source identifies how a flow was started.
type Source string

const (
	SourceUser     Source = "user"
	SourceZeroconf Source = "zeroconf"
)
