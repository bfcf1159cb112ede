package flow

import (
	"context"
	"log/slog"
	"maps"
	"strconv"
	"strings"
	"sync"

	"github.com/plugwise-go/plugwise-setup/pkg/discovery"
	"github.com/plugwise-go/plugwise-setup/pkg/entry"
	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

// Registry is the host's view of persisted config entries.
type Registry interface {
	// Lookup returns the entry owning uniqueID in domain.
	Lookup(domain, uniqueID string) (*entry.Entry, bool)

	// UpdateData merges updates into an entry, reporting whether it changed.
	UpdateData(entryID string, updates map[string]any) (bool, error)

	// Add persists a new entry. It fails with entry.ErrAlreadyConfigured
	// when the unique id is taken.
	Add(e *entry.Entry) error
}

// ProgressChecker reports whether a flow other than flowID is in
// progress for uniqueID.
type ProgressChecker interface {
	InProgress(flowID, uniqueID string) bool
}

// Deps are the collaborators of a flow.
type Deps struct {
	Registry  Registry
	Connector Connector

	// Progress is consulted when a unique id is claimed. Nil means
	// no other flows exist.
	Progress ProgressChecker

	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// Flow is the state of one setup attempt. A flow is driven by one
// caller at a time; steps run under the flow's own lock.
type Flow struct {
	id     string
	source Source
	deps   Deps
	logger *slog.Logger

	stepMu   sync.Mutex
	username string
	lastErr  error
	lastForm *Schema

	// mu guards the fields the manager reads while a step may run.
	// discovery is written under both locks.
	mu           sync.RWMutex
	discovery    *discovery.ServiceInfo
	uniqueID     string
	placeholders map[string]string
}

// NewFlow creates a flow.
func NewFlow(id string, source Source, deps Deps) *Flow {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		id:       id,
		source:   source,
		deps:     deps,
		logger:   logger.With("flow_id", id),
		username: DefaultUsername,
	}
}

// ID returns the flow id.
func (f *Flow) ID() string { return f.id }

// Source returns how the flow was started.
func (f *Flow) Source() Source { return f.source }

// UniqueID returns the unique id claimed by the flow, or "".
func (f *Flow) UniqueID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.uniqueID
}

// Placeholders returns the title placeholders set by discovery.
func (f *Flow) Placeholders() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return maps.Clone(f.placeholders)
}

// Discovery returns the discovery record, or nil for manual flows.
func (f *Flow) Discovery() *discovery.ServiceInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.discovery
}

// DefaultUsername returns the username used for discovered gateways.
func (f *Flow) DefaultUsername() string {
	f.stepMu.Lock()
	defer f.stepMu.Unlock()
	return f.username
}

// LastError returns the error of the most recent failed handshake.
func (f *Flow) LastError() error {
	f.stepMu.Lock()
	defer f.stepMu.Unlock()
	return f.lastErr
}

// Schema returns the schema of the form currently shown.
func (f *Flow) Schema() *Schema {
	f.stepMu.Lock()
	defer f.stepMu.Unlock()

	if f.lastForm != nil {
		return f.lastForm
	}
	return gatewaySchema(f.discovery != nil)
}

// StepZeroconf handles a discovered gateway.
func (f *Flow) StepZeroconf(ctx context.Context, info *discovery.ServiceInfo) Result {
	f.stepMu.Lock()
	f.mu.Lock()
	f.discovery = info
	f.mu.Unlock()

	uniqueID := info.UniqueID()
	if res, aborted := f.setUniqueID(uniqueID, true); aborted {
		f.stepMu.Unlock()
		return res
	}
	if res, aborted := f.abortIfUniqueIDConfigured(map[string]any{FieldHost: info.Host}); aborted {
		f.stepMu.Unlock()
		return res
	}

	if !strings.Contains(uniqueID, DefaultUsername) {
		f.username = smile.UsernameStretch
	}

	f.mu.Lock()
	f.placeholders = map[string]string{
		FieldHost:     info.Host,
		FieldName:     info.Title(),
		FieldPort:     strconv.Itoa(info.Port),
		FieldUsername: f.username,
	}
	f.mu.Unlock()
	f.stepMu.Unlock()

	return f.StepUser(ctx, nil)
}

// StepUser shows the form (input == nil) or validates submitted input.
func (f *Flow) StepUser(ctx context.Context, input Input) Result {
	f.stepMu.Lock()
	defer f.stepMu.Unlock()

	errs := make(map[string]string)
	var stepErr error

	if input != nil {
		input = input.Clone()
		if f.discovery != nil {
			input[FieldHost] = f.discovery.Host
			input[FieldPort] = f.discovery.Port
			input[FieldUsername] = f.username
		}

		gw, err := f.deps.Connector.Connect(ctx, input.SmileConfig())
		f.lastErr = err

		switch kind := ClassifyError(err); kind {
		case ErrorKindNone:
			if res, aborted := f.setUniqueID(gw.UniqueID(), false); aborted {
				return res
			}
			if res, aborted := f.abortIfUniqueIDConfigured(nil); aborted {
				return res
			}

			input[FieldPWType] = PWTypeAPI
			return Result{
				Type:    ResultCreateEntry,
				FlowID:  f.id,
				Handler: Domain,
				Title:   gw.Name,
				Data:    input,
			}
		case ErrorKindUnknown:
			f.logger.Error("Unexpected exception", "host", input.String(FieldHost), "error", err)
			errs[ErrorBase] = kind.Code()
			stepErr = err
		default:
			f.logger.Debug("gateway validation failed", "host", input.String(FieldHost), "kind", kind, "error", err)
			errs[ErrorBase] = kind.Code()
			stepErr = err
		}
	}

	res := f.showForm(gatewaySchema(f.discovery != nil), errs)
	res.Err = stepErr
	return res
}

func (f *Flow) showForm(schema *Schema, errs map[string]string) Result {
	f.lastForm = schema
	return Result{
		Type:         ResultForm,
		FlowID:       f.id,
		Handler:      Domain,
		StepID:       StepUser,
		Schema:       schema,
		Errors:       errs,
		Placeholders: f.Placeholders(),
	}
}

func (f *Flow) abort(reason string) Result {
	return Result{
		Type:    ResultAbort,
		FlowID:  f.id,
		Handler: Domain,
		Reason:  reason,
	}
}

// setUniqueID claims uniqueID for this flow. With raiseOnProgress the
// flow aborts when another flow already claimed the same id; without,
// a flow that got this far keeps going and the registry decides.
func (f *Flow) setUniqueID(uniqueID string, raiseOnProgress bool) (Result, bool) {
	if raiseOnProgress && f.deps.Progress != nil && f.deps.Progress.InProgress(f.id, uniqueID) {
		return f.abort(AbortAlreadyInProgress), true
	}

	f.mu.Lock()
	f.uniqueID = uniqueID
	f.mu.Unlock()
	return Result{}, false
}

// abortIfUniqueIDConfigured aborts when an entry already owns the
// flow's unique id. Updates are written to that entry first, which is
// how a gateway that moved to a new address gets its host refreshed.
func (f *Flow) abortIfUniqueIDConfigured(updates map[string]any) (Result, bool) {
	uniqueID := f.UniqueID()
	if uniqueID == "" {
		return Result{}, false
	}

	existing, ok := f.deps.Registry.Lookup(Domain, uniqueID)
	if !ok {
		return Result{}, false
	}

	if len(updates) > 0 {
		changed, err := f.deps.Registry.UpdateData(existing.EntryID, updates)
		switch {
		case err != nil:
			f.logger.Warn("failed to update existing entry", "entry_id", existing.EntryID, "error", err)
		case changed:
			f.logger.Info("updated existing entry from discovery", "entry_id", existing.EntryID, "unique_id", uniqueID)
		}
	}

	return f.abort(AbortAlreadyConfigured), true
}
