package entry

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry holds configuration entries and enforces unique identifiers
// per domain. It is safe for concurrent use; all mutations are
// serialized, which makes Add the tie-breaker between racing flows.
type Registry struct {
	mu      sync.RWMutex
	store   Store
	entries []*Entry

	now func() time.Time
}

// NewRegistry creates a registry. A nil store keeps entries in memory only.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store: store,
		now:   time.Now,
	}
}

// Load replaces the in-memory entries with the stored state.
func (r *Registry) Load() error {
	if r.store == nil {
		return nil
	}
	state, err := r.store.Load()
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	if state == nil {
		return nil
	}
	for _, e := range state.Entries {
		e.Data = normalize(e.Data)
		r.entries = append(r.entries, e)
	}
	return nil
}

// Lookup returns a copy of the entry owning uniqueID in domain.
func (r *Registry) Lookup(domain, uniqueID string) (*Entry, bool) {
	if uniqueID == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e := r.find(domain, uniqueID); e != nil {
		return e.Clone(), true
	}
	return nil, false
}

// Get returns a copy of the entry with the given id.
func (r *Registry) Get(entryID string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.index(entryID); i >= 0 {
		return r.entries[i].Clone(), true
	}
	return nil, false
}

// Entries returns copies of all entries in domain, or of every entry
// when domain is empty.
func (r *Registry) Entries(domain string) []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Entry
	for _, e := range r.entries {
		if domain == "" || e.Domain == domain {
			out = append(out, e.Clone())
		}
	}
	return out
}

// Add stores a new entry, assigning EntryID and CreatedAt.
// It returns ErrAlreadyConfigured if the unique id is already taken.
func (r *Registry) Add(e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.UniqueID != "" && r.find(e.Domain, e.UniqueID) != nil {
		return fmt.Errorf("%w: %s/%s", ErrAlreadyConfigured, e.Domain, e.UniqueID)
	}

	if e.EntryID == "" {
		e.EntryID = uuid.New().String()
	}
	e.CreatedAt = r.now()

	r.entries = append(r.entries, e.Clone())
	if err := r.saveLocked(); err != nil {
		r.entries = r.entries[:len(r.entries)-1]
		return err
	}
	return nil
}

// UpdateData merges updates into the entry's data.
// It reports whether anything changed; unchanged data is not saved.
func (r *Registry) UpdateData(entryID string, updates map[string]any) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(entryID)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", ErrNotFound, entryID)
	}
	e := r.entries[i]

	changed := false
	for k, v := range updates {
		if old, ok := e.Data[k]; !ok || !reflect.DeepEqual(old, v) {
			changed = true
			break
		}
	}
	if !changed {
		return false, nil
	}

	prev := e.Data
	prevUpdated := e.UpdatedAt
	e.Data = maps.Clone(e.Data)
	if e.Data == nil {
		e.Data = make(map[string]any, len(updates))
	}
	maps.Copy(e.Data, updates)
	e.UpdatedAt = r.now()

	if err := r.saveLocked(); err != nil {
		e.Data = prev
		e.UpdatedAt = prevUpdated
		return false, err
	}
	return true, nil
}

// Remove deletes an entry.
func (r *Registry) Remove(entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.index(entryID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, entryID)
	}
	prev := r.entries
	r.entries = slices.Delete(slices.Clone(r.entries), i, i+1)

	if err := r.saveLocked(); err != nil {
		r.entries = prev
		return err
	}
	return nil
}

func (r *Registry) find(domain, uniqueID string) *Entry {
	for _, e := range r.entries {
		if e.Domain == domain && e.UniqueID == uniqueID {
			return e
		}
	}
	return nil
}

func (r *Registry) index(entryID string) int {
	for i, e := range r.entries {
		if e.EntryID == entryID {
			return i
		}
	}
	return -1
}

func (r *Registry) saveLocked() error {
	if r.store == nil {
		return nil
	}
	if err := r.store.Save(&State{Entries: r.entries}); err != nil {
		return fmt.Errorf("save entries: %w", err)
	}
	return nil
}

// normalize turns whole-number floats from decoded JSON back into ints.
func normalize(data map[string]any) map[string]any {
	for k, v := range data {
		if f, ok := v.(float64); ok && f == float64(int(f)) {
			data[k] = int(f)
		}
	}
	return data
}
