// Package store owns the authoritative cost source collection, the selection
// set used by bulk operations, and the cached summary. Every mutation runs
// under one collection-wide lock, persists the full collection once, then
// recomputes the summary from scratch and notifies subscribers.
package store

import (
	"sync"

	"github.com/google/uuid"

	"github.com/penwyp/go-cost-tracker/internal/core/calculator"
	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/storage"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

// duplicateNameSuffix marks records produced by DuplicateSource.
const duplicateNameSuffix = " (copy)"

// Listener receives the fresh summary after each mutation.
type Listener func(summary model.CostSummary)

// persistedState is the single canonical persisted representation: the
// collection and the default currency live together under KeySources.
type persistedState struct {
	Sources         []model.CostSource `json:"sources"`
	DefaultCurrency string             `json:"defaultCurrency"`
}

// SourceInput carries the caller-settable fields when creating a source.
// ID and timestamps are always stamped by the store.
type SourceInput struct {
	Name        string
	Type        model.SourceType
	Provider    string
	BillingMode model.BillingMode
	Cost        float64
	Currency    string
	StartDate   string
	EndDate     string
	IsEnabled   bool
	Description string
}

// SourceUpdate carries a partial edit; nil fields are left untouched.
type SourceUpdate struct {
	Name        *string
	Type        *model.SourceType
	Provider    *string
	BillingMode *model.BillingMode
	Cost        *float64
	Currency    *string
	StartDate   *string
	EndDate     *string
	IsEnabled   *bool
	Description *string
}

// CostSourceStore is the single mutation path for cost sources. External
// code never touches the collection directly.
type CostSourceStore struct {
	mu              sync.Mutex
	sources         []model.CostSource
	selected        map[string]bool
	summary         model.CostSummary
	defaultCurrency string
	hadPersisted    bool
	storage         storage.Store
	listeners       map[int]Listener
	nextListenerID  int
}

// NewCostSourceStore creates a store backed by the given persistence layer.
// A failed or corrupt load is logged and the store starts empty; persistence
// being unavailable never makes the store unusable.
func NewCostSourceStore(st storage.Store) *CostSourceStore {
	s := &CostSourceStore{
		selected:        make(map[string]bool),
		defaultCurrency: model.CurrencyUSD,
		storage:         st,
		listeners:       make(map[int]Listener),
	}

	var state persistedState
	found, err := st.Get(storage.KeySources, &state)
	if err != nil {
		util.LogWarnf("Failed to load persisted sources, starting empty: %v", err)
	} else if found {
		s.hadPersisted = true
		s.sources = state.Sources
		if state.DefaultCurrency != "" {
			s.defaultCurrency = state.DefaultCurrency
		}
	}

	s.summary = calculator.CalculateSummary(s.sources)
	return s
}

// mutate runs fn under the store lock, persists once, recomputes the summary
// once, and notifies listeners outside the lock.
func (s *CostSourceStore) mutate(fn func()) {
	s.mu.Lock()
	fn()
	s.persistLocked()
	s.summary = calculator.CalculateSummary(s.sources)

	summary := s.summary
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(summary)
	}
}

// persistLocked writes the whole collection in one batched write. Failures
// are logged and swallowed; the in-memory state stays authoritative.
func (s *CostSourceStore) persistLocked() {
	state := persistedState{Sources: s.sources, DefaultCurrency: s.defaultCurrency}
	if err := s.storage.Set(storage.KeySources, state); err != nil {
		util.LogErrorf("Failed to persist cost sources: %v", err)
	}
}

func (s *CostSourceStore) indexOfLocked(id string) int {
	for i := range s.sources {
		if s.sources[i].ID == id {
			return i
		}
	}
	return -1
}

// AddSource appends a new source with a fresh id and creation timestamps and
// returns the id.
func (s *CostSourceStore) AddSource(input SourceInput) string {
	id := uuid.NewString()
	now := util.GetTimeProvider().Now()

	s.mutate(func() {
		s.sources = append(s.sources, model.CostSource{
			ID:          id,
			Name:        input.Name,
			Type:        input.Type,
			Provider:    input.Provider,
			BillingMode: input.BillingMode,
			Cost:        input.Cost,
			Currency:    input.Currency,
			StartDate:   input.StartDate,
			EndDate:     input.EndDate,
			IsEnabled:   input.IsEnabled,
			Description: input.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	return id
}

// UpdateSource merges the given fields into the matching record and refreshes
// UpdatedAt. An unknown id is a no-op that still persists and recomputes.
func (s *CostSourceStore) UpdateSource(id string, update SourceUpdate) {
	s.mutate(func() {
		i := s.indexOfLocked(id)
		if i < 0 {
			return
		}
		src := &s.sources[i]
		if update.Name != nil {
			src.Name = *update.Name
		}
		if update.Type != nil {
			src.Type = *update.Type
		}
		if update.Provider != nil {
			src.Provider = *update.Provider
		}
		if update.BillingMode != nil {
			src.BillingMode = *update.BillingMode
		}
		if update.Cost != nil {
			src.Cost = *update.Cost
		}
		if update.Currency != nil {
			src.Currency = *update.Currency
		}
		if update.StartDate != nil {
			src.StartDate = *update.StartDate
		}
		if update.EndDate != nil {
			src.EndDate = *update.EndDate
		}
		if update.IsEnabled != nil {
			src.IsEnabled = *update.IsEnabled
		}
		if update.Description != nil {
			src.Description = *update.Description
		}
		src.UpdatedAt = util.GetTimeProvider().Now()
	})
}

// DeleteSource removes the record and drops its id from the selection set.
func (s *CostSourceStore) DeleteSource(id string) {
	s.mutate(func() {
		i := s.indexOfLocked(id)
		if i >= 0 {
			s.sources = append(s.sources[:i], s.sources[i+1:]...)
		}
		delete(s.selected, id)
	})
}

// DuplicateSource creates a disabled copy of an existing source with a fresh
// id, fresh timestamps, and the duplicate marker appended to the name.
// Returns the new id, or "" when the id does not exist.
func (s *CostSourceStore) DuplicateSource(id string) string {
	s.mu.Lock()
	i := s.indexOfLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ""
	}
	src := s.sources[i]
	s.mu.Unlock()

	return s.AddSource(SourceInput{
		Name:        src.Name + duplicateNameSuffix,
		Type:        src.Type,
		Provider:    src.Provider,
		BillingMode: src.BillingMode,
		Cost:        src.Cost,
		Currency:    src.Currency,
		StartDate:   src.StartDate,
		EndDate:     src.EndDate,
		IsEnabled:   false,
		Description: src.Description,
	})
}

// ToggleSourceSelection flips one id in the selection set. Selection changes
// never persist or recompute.
func (s *CostSourceStore) ToggleSourceSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
}

// SelectAll puts every current source id into the selection set.
func (s *CostSourceStore) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.sources {
		s.selected[s.sources[i].ID] = true
	}
}

// DeselectAll empties the selection set.
func (s *CostSourceStore) DeselectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]bool)
}

// SetSelectedSources replaces the selection set wholesale.
func (s *CostSourceStore) SetSelectedSources(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[id] = true
	}
}

// SelectedSources returns the selected ids in collection order.
func (s *CostSourceStore) SelectedSources() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.selected))
	for i := range s.sources {
		if s.selected[s.sources[i].ID] {
			ids = append(ids, s.sources[i].ID)
		}
	}
	return ids
}

// BulkUpdateBillingMode applies one billing mode to every matching id in a
// single batch: one persist, one recompute.
func (s *CostSourceStore) BulkUpdateBillingMode(ids []string, mode model.BillingMode) {
	now := util.GetTimeProvider().Now()
	s.mutate(func() {
		for _, id := range ids {
			if i := s.indexOfLocked(id); i >= 0 {
				s.sources[i].BillingMode = mode
				s.sources[i].UpdatedAt = now
			}
		}
	})
}

// BulkDelete removes every matching id in a single batch.
func (s *CostSourceStore) BulkDelete(ids []string) {
	s.mutate(func() {
		drop := make(map[string]bool, len(ids))
		for _, id := range ids {
			drop[id] = true
			delete(s.selected, id)
		}
		kept := s.sources[:0]
		for _, src := range s.sources {
			if !drop[src.ID] {
				kept = append(kept, src)
			}
		}
		s.sources = kept
	})
}

// BulkEnable enables every matching id in a single batch.
func (s *CostSourceStore) BulkEnable(ids []string) {
	s.bulkSetEnabled(ids, true)
}

// BulkDisable disables every matching id in a single batch.
func (s *CostSourceStore) BulkDisable(ids []string) {
	s.bulkSetEnabled(ids, false)
}

func (s *CostSourceStore) bulkSetEnabled(ids []string, enabled bool) {
	now := util.GetTimeProvider().Now()
	s.mutate(func() {
		for _, id := range ids {
			if i := s.indexOfLocked(id); i >= 0 {
				s.sources[i].IsEnabled = enabled
				s.sources[i].UpdatedAt = now
			}
		}
	})
}

// RecalculateSummary recomputes the cached summary on demand, e.g. after an
// external data import or at a day boundary.
func (s *CostSourceStore) RecalculateSummary() {
	s.mu.Lock()
	s.summary = calculator.CalculateSummary(s.sources)
	s.mu.Unlock()
}

// ImportSources appends every incoming record as new: incoming ids and
// timestamps are discarded and fresh ones assigned.
func (s *CostSourceStore) ImportSources(records []model.CostSource) {
	now := util.GetTimeProvider().Now()
	s.mutate(func() {
		for _, r := range records {
			r.ID = uuid.NewString()
			r.CreatedAt = now
			r.UpdatedAt = now
			s.sources = append(s.sources, r)
		}
	})
}

// ExportSources returns a snapshot copy of the collection.
func (s *CostSourceStore) ExportSources() []model.CostSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.CostSource, len(s.sources))
	copy(out, s.sources)
	return out
}

// GetSource returns one record by id.
func (s *CostSourceStore) GetSource(id string) (model.CostSource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfLocked(id); i >= 0 {
		return s.sources[i], true
	}
	return model.CostSource{}, false
}

// Summary returns the cached summary. Treat the maps as read-only.
func (s *CostSourceStore) Summary() model.CostSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// DefaultCurrency returns the user's preferred display currency.
func (s *CostSourceStore) DefaultCurrency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.defaultCurrency
}

// SetDefaultCurrency changes the display currency; like any other mutation it
// persists and recomputes.
func (s *CostSourceStore) SetDefaultCurrency(currency string) {
	s.mutate(func() {
		s.defaultCurrency = currency
	})
}

// SeedDefaultCurrency applies the configured display currency on first run.
// Persisted state always wins: once anything has been stored, the seed is
// ignored.
func (s *CostSourceStore) SeedDefaultCurrency(currency string) {
	if currency == "" {
		return
	}
	s.mu.Lock()
	skip := s.hadPersisted || currency == s.defaultCurrency
	s.mu.Unlock()
	if skip {
		return
	}
	s.SetDefaultCurrency(currency)
}

// Reset clears the collection, selection set, and summary, and persists the
// empty state like any other mutation.
func (s *CostSourceStore) Reset() {
	s.mutate(func() {
		s.sources = nil
		s.selected = make(map[string]bool)
	})
}

// Reload replaces the in-memory collection from persistence, for hosts that
// watch the storage directory for external edits.
func (s *CostSourceStore) Reload() {
	var state persistedState
	found, err := s.storage.Get(storage.KeySources, &state)
	if err != nil {
		util.LogWarnf("Reload failed, keeping current collection: %v", err)
		return
	}

	s.mu.Lock()
	if found {
		s.sources = state.Sources
		if state.DefaultCurrency != "" {
			s.defaultCurrency = state.DefaultCurrency
		}
	} else {
		s.sources = nil
	}
	s.summary = calculator.CalculateSummary(s.sources)

	summary := s.summary
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(summary)
	}
}

// Subscribe registers a listener called with the fresh summary after every
// mutation. The returned function unsubscribes.
func (s *CostSourceStore) Subscribe(listener Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = listener

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}
