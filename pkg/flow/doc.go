// Package flow implements the setup flow that registers a Plugwise
// gateway as a configuration entry.
//
// # Entry points
//
// A flow starts either from a user request (SourceUser) or from an mDNS
// announcement (SourceZeroconf). The zeroconf step records the
// discovery, derives the unique id from the host name, aborts when the
// gateway is already configured (refreshing the stored host if it
// moved) and then continues with the user step.
//
// # User step
//
// Without input the user step returns a form. A manual flow asks for
// host, port, username and password; a discovered flow asks only for
// the password because the rest comes from the discovery record. With
// input the step performs one connect handshake:
//
//	start -> (discovery?) -> awaiting_input -> validating
//	    validating -> entry_created
//	    validating -> awaiting_input (errors["base"] set)
//	    validating -> already_configured
//
// Handshake failures never end the flow. They are classified into a
// closed set of kinds (ErrorKindAuth, ErrorKindConnect,
// ErrorKindUnknown) and reported in the form's "base" error slot as
// invalid_auth, cannot_connect or unknown.
//
// # Manager
//
// Manager hosts flow instances for an application: it assigns flow
// ids, validates submitted input against the current form schema,
// persists created entries through a Registry and aborts concurrent
// flows for the same device once one of them has created the entry.
package flow
