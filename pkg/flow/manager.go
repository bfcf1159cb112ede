package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plugwise-go/plugwise-setup/pkg/discovery"
	"github.com/plugwise-go/plugwise-setup/pkg/entry"
	"github.com/plugwise-go/plugwise-setup/pkg/log"
)

// Options configures a Manager.
type Options struct {
	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger

	// EventLogger receives one event per step outcome. Nil disables it.
	EventLogger log.Logger
}

// FlowInfo describes an in-progress flow.
type FlowInfo struct {
	FlowID       string
	Source       Source
	UniqueID     string
	StepID       string
	Placeholders map[string]string
	StartedAt    time.Time
}

type managedFlow struct {
	flow      *Flow
	startedAt time.Time
}

// Manager hosts setup flows.
type Manager struct {
	registry  Registry
	connector Connector
	logger    *slog.Logger
	events    log.Logger

	mu    sync.RWMutex
	flows map[string]*managedFlow

	now func() time.Time
}

// NewManager creates a flow manager.
func NewManager(registry Registry, connector Connector, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	events := opts.EventLogger
	if events == nil {
		events = log.NoopLogger{}
	}
	return &Manager{
		registry:  registry,
		connector: connector,
		logger:    logger,
		events:    events,
		flows:     make(map[string]*managedFlow),
		now:       time.Now,
	}
}

// Init starts a flow. Zeroconf flows need the discovery record; user
// flows take nil.
func (m *Manager) Init(ctx context.Context, source Source, info *discovery.ServiceInfo) (Result, error) {
	switch source {
	case SourceUser:
	case SourceZeroconf:
		if info == nil {
			return Result{}, ErrNoDiscovery
		}
		if err := info.Validate(); err != nil {
			return Result{}, err
		}
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	f := NewFlow(uuid.New().String(), source, Deps{
		Registry:  m.registry,
		Connector: m.connector,
		Progress:  progressAdapter{m},
		Logger:    m.logger,
	})

	m.mu.Lock()
	m.flows[f.ID()] = &managedFlow{flow: f, startedAt: m.now()}
	m.mu.Unlock()

	var res Result
	if source == SourceZeroconf {
		m.emit(f, log.Event{
			Category: log.CategoryDiscovery,
			Host:     info.Host,
			UniqueID: info.UniqueID(),
			Discovery: &log.DiscoveryEvent{
				Hostname: info.Hostname,
				Port:     info.Port,
				Title:    info.Title(),
			},
		})
		res = f.StepZeroconf(ctx, info)
	} else {
		res = f.StepUser(ctx, nil)
	}

	return m.finish(f, res)
}

// Configure submits form input to a flow.
func (m *Manager) Configure(ctx context.Context, flowID string, raw map[string]any) (Result, error) {
	f, ok := m.flow(flowID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownFlow, flowID)
	}

	input, err := f.Schema().Validate(raw)
	if err != nil {
		return Result{}, err
	}

	return m.finish(f, f.StepUser(ctx, input))
}

// Abort ends a flow on behalf of the user.
func (m *Manager) Abort(flowID string) error {
	f, ok := m.remove(flowID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFlow, flowID)
	}
	m.emit(f, log.Event{
		Category: log.CategoryAbort,
		Abort:    &log.AbortEvent{Reason: AbortUserCancelled},
	})
	return nil
}

// Get describes one in-progress flow.
func (m *Manager) Get(flowID string) (FlowInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mf, ok := m.flows[flowID]
	if !ok {
		return FlowInfo{}, false
	}
	return mf.info(), true
}

// InProgress lists in-progress flows, oldest first.
func (m *Manager) InProgress() []FlowInfo {
	m.mu.RLock()
	infos := make([]FlowInfo, 0, len(m.flows))
	for _, mf := range m.flows {
		infos = append(infos, mf.info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].StartedAt.Equal(infos[j].StartedAt) {
			return infos[i].FlowID < infos[j].FlowID
		}
		return infos[i].StartedAt.Before(infos[j].StartedAt)
	})
	return infos
}

// inProgress reports whether a flow other than flowID claimed uniqueID.
func (m *Manager) inProgress(flowID, uniqueID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, mf := range m.flows {
		if id != flowID && mf.flow.UniqueID() == uniqueID {
			return true
		}
	}
	return false
}

// finish applies a step result: forms keep the flow, terminal results
// remove it. Created entries are persisted here.
func (m *Manager) finish(f *Flow, res Result) (Result, error) {
	switch res.Type {
	case ResultForm:
		if code := res.Errors[ErrorBase]; code != "" {
			ev := log.Event{Category: log.CategoryError, Error: &log.ErrorEvent{Code: code}}
			if res.Err != nil {
				ev.Error.Message = res.Err.Error()
			}
			m.emit(f, ev)
		}
		m.emit(f, log.Event{
			Category: log.CategoryForm,
			Form:     &log.FormEvent{Fields: res.Schema.FieldNames(), Errors: res.Errors},
		})
		return res, nil

	case ResultAbort:
		m.remove(f.ID())
		m.emit(f, log.Event{Category: log.CategoryAbort, Abort: &log.AbortEvent{Reason: res.Reason}})
		return res, nil

	case ResultCreateEntry:
		e := &entry.Entry{
			Domain:   Domain,
			Title:    res.Title,
			UniqueID: f.UniqueID(),
			Source:   string(f.Source()),
			Data:     res.Data,
		}
		if err := m.registry.Add(e); err != nil {
			if errors.Is(err, entry.ErrAlreadyConfigured) {
				return m.finish(f, f.abort(AbortAlreadyConfigured))
			}
			return Result{}, fmt.Errorf("create entry: %w", err)
		}

		res.Entry = e
		m.remove(f.ID())
		m.emit(f, log.Event{
			Category: log.CategoryEntry,
			Entry:    &log.EntryEvent{EntryID: e.EntryID, Title: e.Title},
		})
		m.logger.Info("config entry created", "entry_id", e.EntryID, "title", e.Title, "unique_id", e.UniqueID)

		m.abortDuplicates(f.ID(), e.UniqueID)
		return res, nil
	}

	return res, nil
}

// abortDuplicates ends other flows for a device that now has an entry.
func (m *Manager) abortDuplicates(flowID, uniqueID string) {
	if uniqueID == "" {
		return
	}

	m.mu.Lock()
	var dups []*Flow
	for id, mf := range m.flows {
		if id != flowID && mf.flow.UniqueID() == uniqueID {
			dups = append(dups, mf.flow)
			delete(m.flows, id)
		}
	}
	m.mu.Unlock()

	for _, f := range dups {
		m.emit(f, log.Event{Category: log.CategoryAbort, Abort: &log.AbortEvent{Reason: AbortAlreadyConfigured}})
	}
}

func (m *Manager) flow(flowID string) (*Flow, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mf, ok := m.flows[flowID]
	if !ok {
		return nil, false
	}
	return mf.flow, true
}

func (m *Manager) remove(flowID string) (*Flow, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mf, ok := m.flows[flowID]
	if !ok {
		return nil, false
	}
	delete(m.flows, flowID)
	return mf.flow, true
}

func (m *Manager) emit(f *Flow, ev log.Event) {
	ev.Timestamp = m.now()
	ev.FlowID = f.ID()
	ev.Domain = Domain
	ev.Source = string(f.Source())
	ev.StepID = StepUser
	if ev.UniqueID == "" {
		ev.UniqueID = f.UniqueID()
	}
	if ev.Host == "" {
		if d := f.Discovery(); d != nil {
			ev.Host = d.Host
		}
	}
	m.events.Log(ev)
}

func (mf *managedFlow) info() FlowInfo {
	return FlowInfo{
		FlowID:       mf.flow.ID(),
		Source:       mf.flow.Source(),
		UniqueID:     mf.flow.UniqueID(),
		StepID:       StepUser,
		Placeholders: mf.flow.Placeholders(),
		StartedAt:    mf.startedAt,
	}
}

// progressAdapter exposes the manager's progress check to flows.
type progressAdapter struct{ m *Manager }

func (p progressAdapter) InProgress(flowID, uniqueID string) bool {
	return p.m.inProgress(flowID, uniqueID)
}
