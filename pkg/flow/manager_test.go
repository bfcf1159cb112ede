package flow

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/plugwise-go/plugwise-setup/pkg/discovery"
	"github.com/plugwise-go/plugwise-setup/pkg/entry"
	"github.com/plugwise-go/plugwise-setup/pkg/flow/mocks"
	"github.com/plugwise-go/plugwise-setup/pkg/log"
	"github.com/plugwise-go/plugwise-setup/pkg/smile"
)

type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(event log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingLogger) categories() []log.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	cats := make([]log.Category, len(r.events))
	for i, e := range r.events {
		cats[i] = e.Category
	}
	return cats
}

func (r *recordingLogger) last() log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type managerFixture struct {
	manager   *Manager
	registry  *entry.Registry
	connector *mocks.MockConnector
	events    *recordingLogger
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	registry := entry.NewRegistry(nil)
	connector := mocks.NewMockConnector(t)
	events := &recordingLogger{}
	return &managerFixture{
		manager:   NewManager(registry, connector, Options{EventLogger: events}),
		registry:  registry,
		connector: connector,
		events:    events,
	}
}

func TestManagerUserFlowCreatesEntry(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	res, err := fx.manager.Init(ctx, SourceUser, nil)
	require.NoError(t, err)
	require.Equal(t, ResultForm, res.Type)
	require.NotEmpty(t, res.FlowID)

	info, ok := fx.manager.Get(res.FlowID)
	require.True(t, ok)
	assert.Equal(t, SourceUser, info.Source)

	fx.connector.EXPECT().Connect(mock.Anything, testConfig(smile.UsernameSmile)).Return(testGateway(), nil).Once()

	res, err = fx.manager.Configure(ctx, res.FlowID, map[string]any{
		FieldHost:     testHost,
		FieldPassword: testPassword,
	})
	require.NoError(t, err)
	require.Equal(t, ResultCreateEntry, res.Type)
	require.NotNil(t, res.Entry)
	assert.Equal(t, "Smile Anna", res.Entry.Title)
	assert.Equal(t, "smile123abc", res.Entry.UniqueID)
	assert.Equal(t, string(SourceUser), res.Entry.Source)
	assert.NotEmpty(t, res.Entry.EntryID)

	entries := fx.registry.Entries(Domain)
	require.Len(t, entries, 1)
	assert.Equal(t, PWTypeAPI, entries[0].String(FieldPWType))
	assert.Equal(t, testHost, entries[0].String(FieldHost))

	_, ok = fx.manager.Get(res.FlowID)
	assert.False(t, ok)
	assert.Empty(t, fx.manager.InProgress())
	assert.Equal(t, []log.Category{log.CategoryForm, log.CategoryEntry}, fx.events.categories())

	last := fx.events.last()
	assert.Equal(t, res.FlowID, last.FlowID)
	assert.Equal(t, Domain, last.Domain)
	assert.Equal(t, res.Entry.EntryID, last.Entry.EntryID)
}

func TestManagerInvalidAuthKeepsFlow(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	res, err := fx.manager.Init(ctx, SourceUser, nil)
	require.NoError(t, err)
	flowID := res.FlowID

	fx.connector.EXPECT().Connect(mock.Anything, mock.Anything).Return(nil, smile.ErrInvalidAuthentication).Once()

	res, err = fx.manager.Configure(ctx, flowID, map[string]any{
		FieldHost:     testHost,
		FieldPassword: "wrong",
	})
	require.NoError(t, err)
	assert.Equal(t, ResultForm, res.Type)
	assert.Equal(t, map[string]string{ErrorBase: "invalid_auth"}, res.Errors)
	assert.Empty(t, fx.registry.Entries(Domain))
	assert.Len(t, fx.manager.InProgress(), 1)

	assert.Equal(t, []log.Category{log.CategoryForm, log.CategoryError, log.CategoryForm}, fx.events.categories())
	errEvent := fx.events.events[1]
	require.NotNil(t, errEvent.Error)
	assert.Equal(t, "invalid_auth", errEvent.Error.Code)
	assert.Contains(t, errEvent.Error.Message, "invalid authentication")

	// A corrected password completes the same flow.
	fx.connector.EXPECT().Connect(mock.Anything, mock.Anything).Return(testGateway(), nil).Once()
	res, err = fx.manager.Configure(ctx, flowID, map[string]any{
		FieldHost:     testHost,
		FieldPassword: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, ResultCreateEntry, res.Type)
	assert.Len(t, fx.registry.Entries(Domain), 1)
}

func TestManagerConcurrentConfigureSameFlow(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	res, err := fx.manager.Init(ctx, SourceUser, nil)
	require.NoError(t, err)
	flowID := res.FlowID

	const attempts = 8
	fx.connector.EXPECT().Connect(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, config smile.Config) (*smile.Gateway, error) {
			return nil, fmt.Errorf("%w: password %s", smile.ErrInvalidAuthentication, config.Password)
		}).Times(attempts)

	var wg sync.WaitGroup
	results := make([]Result, attempts)
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = fx.manager.Configure(ctx, flowID, map[string]any{
				FieldHost:     testHost,
				FieldPassword: fmt.Sprintf("attempt-%d", i),
			})
		}()
	}
	wg.Wait()

	for i := range attempts {
		require.NoError(t, errs[i])
		assert.Equal(t, ResultForm, results[i].Type)
		assert.Equal(t, map[string]string{ErrorBase: "invalid_auth"}, results[i].Errors)
		require.Error(t, results[i].Err)
		assert.Contains(t, results[i].Err.Error(), fmt.Sprintf("password attempt-%d", i))
	}

	fx.events.mu.Lock()
	var messages []string
	for _, ev := range fx.events.events {
		if ev.Category == log.CategoryError {
			messages = append(messages, ev.Error.Message)
		}
	}
	fx.events.mu.Unlock()

	require.Len(t, messages, attempts)
	for i := range attempts {
		want := fmt.Sprintf("password attempt-%d", i)
		assert.True(t, slices.ContainsFunc(messages, func(m string) bool { return strings.HasSuffix(m, want) }), want)
	}
	assert.Len(t, fx.manager.InProgress(), 1)
}

func TestManagerConfigureRejectsInvalidInput(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	res, err := fx.manager.Init(ctx, SourceUser, nil)
	require.NoError(t, err)

	_, err = fx.manager.Configure(ctx, res.FlowID, map[string]any{FieldHost: testHost})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = fx.manager.Configure(ctx, res.FlowID, map[string]any{
		FieldHost:     testHost,
		FieldPort:     "http",
		FieldPassword: testPassword,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, ok := fx.manager.Get(res.FlowID)
	assert.True(t, ok)
}

func TestManagerUnknownFlow(t *testing.T) {
	fx := newManagerFixture(t)

	_, err := fx.manager.Configure(context.Background(), "missing", map[string]any{})
	assert.ErrorIs(t, err, ErrUnknownFlow)
	assert.ErrorIs(t, fx.manager.Abort("missing"), ErrUnknownFlow)
}

func TestManagerInitValidation(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	_, err := fx.manager.Init(ctx, SourceZeroconf, nil)
	assert.ErrorIs(t, err, ErrNoDiscovery)

	info := testDiscovery("smile123abc")
	info.Host = ""
	_, err = fx.manager.Init(ctx, SourceZeroconf, info)
	assert.ErrorIs(t, err, discovery.ErrInvalidRecord)

	_, err = fx.manager.Init(ctx, Source("ssdp"), nil)
	assert.ErrorIs(t, err, ErrUnknownSource)

	assert.Empty(t, fx.manager.InProgress())
}

func TestManagerZeroconfFlow(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	res, err := fx.manager.Init(ctx, SourceZeroconf, testDiscovery("smile123abc"))
	require.NoError(t, err)
	require.Equal(t, ResultForm, res.Type)
	assert.Equal(t, []string{FieldPassword}, res.Schema.FieldNames())
	assert.Equal(t, "Smile Anna v4.0.15", res.Placeholders[FieldName])

	info, ok := fx.manager.Get(res.FlowID)
	require.True(t, ok)
	assert.Equal(t, "smile123abc", info.UniqueID)
	assert.Equal(t, SourceZeroconf, info.Source)

	_, err = fx.manager.Configure(ctx, res.FlowID, map[string]any{FieldHost: "10.0.0.2", FieldPassword: testPassword})
	assert.ErrorIs(t, err, ErrInvalidInput)

	fx.connector.EXPECT().Connect(mock.Anything, testConfig(smile.UsernameSmile)).Return(testGateway(), nil).Once()
	res, err = fx.manager.Configure(ctx, res.FlowID, map[string]any{FieldPassword: testPassword})
	require.NoError(t, err)
	require.Equal(t, ResultCreateEntry, res.Type)
	assert.Equal(t, string(SourceZeroconf), res.Entry.Source)

	assert.Equal(t, []log.Category{log.CategoryDiscovery, log.CategoryForm, log.CategoryEntry}, fx.events.categories())
	assert.Equal(t, testHost, fx.events.last().Host)
	assert.Equal(t, "smile123abc", fx.events.last().UniqueID)
}

func TestManagerZeroconfDuplicateAbortsBeforeForm(t *testing.T) {
	fx := newManagerFixture(t)
	require.NoError(t, fx.registry.Add(&entry.Entry{
		Domain:   Domain,
		Title:    "Smile Anna",
		UniqueID: "smile123abc",
		Data:     map[string]any{FieldHost: "1.1.1.2", FieldPassword: testPassword},
	}))

	res, err := fx.manager.Init(context.Background(), SourceZeroconf, testDiscovery("smile123abc"))
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res.Type)
	assert.Equal(t, AbortAlreadyConfigured, res.Reason)
	assert.Empty(t, fx.manager.InProgress())

	existing, ok := fx.registry.Lookup(Domain, "smile123abc")
	require.True(t, ok)
	assert.Equal(t, testHost, existing.String(FieldHost))
	assert.Len(t, fx.registry.Entries(Domain), 1)
}

func TestManagerZeroconfAlreadyInProgress(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	first, err := fx.manager.Init(ctx, SourceZeroconf, testDiscovery("smile123abc"))
	require.NoError(t, err)
	require.Equal(t, ResultForm, first.Type)

	second, err := fx.manager.Init(ctx, SourceZeroconf, testDiscovery("smile123abc"))
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, second.Type)
	assert.Equal(t, AbortAlreadyInProgress, second.Reason)

	flows := fx.manager.InProgress()
	require.Len(t, flows, 1)
	assert.Equal(t, first.FlowID, flows[0].FlowID)
}

func TestManagerPostValidationDuplicate(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	first, err := fx.manager.Init(ctx, SourceUser, nil)
	require.NoError(t, err)
	second, err := fx.manager.Init(ctx, SourceUser, nil)
	require.NoError(t, err)

	fx.connector.EXPECT().Connect(mock.Anything, mock.Anything).Return(testGateway(), nil).Twice()
	submit := map[string]any{FieldHost: testHost, FieldPassword: testPassword}

	res, err := fx.manager.Configure(ctx, first.FlowID, submit)
	require.NoError(t, err)
	require.Equal(t, ResultCreateEntry, res.Type)

	res, err = fx.manager.Configure(ctx, second.FlowID, submit)
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res.Type)
	assert.Equal(t, AbortAlreadyConfigured, res.Reason)
	assert.Len(t, fx.registry.Entries(Domain), 1)
	assert.Empty(t, fx.manager.InProgress())
}

func TestManagerAbortsDiscoveryFlowsOnCreate(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	discovered, err := fx.manager.Init(ctx, SourceZeroconf, testDiscovery("smile123abc"))
	require.NoError(t, err)
	require.Equal(t, ResultForm, discovered.Type)

	manual, err := fx.manager.Init(ctx, SourceUser, nil)
	require.NoError(t, err)

	fx.connector.EXPECT().Connect(mock.Anything, mock.Anything).Return(testGateway(), nil).Once()
	res, err := fx.manager.Configure(ctx, manual.FlowID, map[string]any{
		FieldHost:     testHost,
		FieldPassword: testPassword,
	})
	require.NoError(t, err)
	require.Equal(t, ResultCreateEntry, res.Type)

	_, ok := fx.manager.Get(discovered.FlowID)
	assert.False(t, ok)
	assert.Empty(t, fx.manager.InProgress())

	last := fx.events.last()
	assert.Equal(t, log.CategoryAbort, last.Category)
	assert.Equal(t, discovered.FlowID, last.FlowID)
	assert.Equal(t, AbortAlreadyConfigured, last.Abort.Reason)
}

func TestManagerAddConflictBecomesAbort(t *testing.T) {
	registry := mocks.NewMockRegistry(t)
	connector := mocks.NewMockConnector(t)
	m := NewManager(registry, connector, Options{})
	ctx := context.Background()

	res, err := m.Init(ctx, SourceUser, nil)
	require.NoError(t, err)

	connector.EXPECT().Connect(mock.Anything, mock.Anything).Return(testGateway(), nil).Once()
	registry.EXPECT().Lookup(Domain, "smile123abc").Return(nil, false).Once()
	registry.EXPECT().Add(mock.Anything).Return(entry.ErrAlreadyConfigured).Once()

	res, err = m.Configure(ctx, res.FlowID, map[string]any{FieldHost: testHost, FieldPassword: testPassword})
	require.NoError(t, err)
	assert.Equal(t, ResultAbort, res.Type)
	assert.Equal(t, AbortAlreadyConfigured, res.Reason)
	assert.Empty(t, m.InProgress())
}

func TestManagerAddFailureKeepsFlow(t *testing.T) {
	registry := mocks.NewMockRegistry(t)
	connector := mocks.NewMockConnector(t)
	m := NewManager(registry, connector, Options{})
	ctx := context.Background()

	res, err := m.Init(ctx, SourceUser, nil)
	require.NoError(t, err)
	flowID := res.FlowID

	connector.EXPECT().Connect(mock.Anything, mock.Anything).Return(testGateway(), nil).Once()
	registry.EXPECT().Lookup(Domain, "smile123abc").Return(nil, false).Once()
	registry.EXPECT().Add(mock.Anything).Return(errors.New("disk full")).Once()

	_, err = m.Configure(ctx, flowID, map[string]any{FieldHost: testHost, FieldPassword: testPassword})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, ok := m.Get(flowID)
	assert.True(t, ok)
}

func TestManagerAbort(t *testing.T) {
	fx := newManagerFixture(t)

	res, err := fx.manager.Init(context.Background(), SourceUser, nil)
	require.NoError(t, err)

	require.NoError(t, fx.manager.Abort(res.FlowID))
	_, ok := fx.manager.Get(res.FlowID)
	assert.False(t, ok)

	last := fx.events.last()
	assert.Equal(t, log.CategoryAbort, last.Category)
	assert.Equal(t, AbortUserCancelled, last.Abort.Reason)

	assert.ErrorIs(t, fx.manager.Abort(res.FlowID), ErrUnknownFlow)
}

func TestManagerInProgressOrder(t *testing.T) {
	fx := newManagerFixture(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	fx.manager.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var ids []string
	for range 3 {
		res, err := fx.manager.Init(ctx, SourceUser, nil)
		require.NoError(t, err)
		ids = append(ids, res.FlowID)
	}

	flows := fx.manager.InProgress()
	require.Len(t, flows, 3)
	for i, info := range flows {
		assert.Equal(t, ids[i], info.FlowID)
		assert.Equal(t, StepUser, info.StepID)
	}
}
