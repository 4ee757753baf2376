package storage

import (
	"context"
	"encoding/json"
	"maps"
	"sync"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/platform/logger"
)

const UserPreferencesKey = "genlogs_user_preferences"

// Preferences persists UserPreferences with shallow-merge updates.
type Preferences struct {
	store *Store
	mu    sync.Mutex
}

func NewPreferences(store *Store) *Preferences {
	return &Preferences{store: store}
}

// Get returns the stored preferences; missing fields keep their defaults.
func (p *Preferences) Get(ctx context.Context) domain.UserPreferences {
	record := Get(ctx, p.store, UserPreferencesKey, defaultRecord())
	return p.decode(record)
}

// Update merges the non-nil fields of patch over the stored record. Keys the
// patch does not mention are left as stored, including ones this version does
// not know about.
func (p *Preferences) Update(ctx context.Context, patch domain.PreferencesPatch) domain.UserPreferences {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := Get(ctx, p.store, UserPreferencesKey, defaultRecord())
	if current == nil {
		current = defaultRecord()
	}

	b, err := json.Marshal(patch)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("encode preferences patch")
		return p.decode(current)
	}
	var partial map[string]json.RawMessage
	if err := json.Unmarshal(b, &partial); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("decode preferences patch")
		return p.decode(current)
	}

	updated := make(map[string]json.RawMessage, len(current)+len(partial))
	maps.Copy(updated, current)
	maps.Copy(updated, partial)

	p.store.Set(ctx, UserPreferencesKey, updated)
	return p.decode(updated)
}

func (p *Preferences) decode(record map[string]json.RawMessage) domain.UserPreferences {
	prefs := domain.DefaultPreferences()
	b, err := json.Marshal(record)
	if err != nil {
		return prefs
	}
	if err := json.Unmarshal(b, &prefs); err != nil {
		return domain.DefaultPreferences()
	}
	return prefs
}

func defaultRecord() map[string]json.RawMessage {
	b, _ := json.Marshal(domain.DefaultPreferences())
	var m map[string]json.RawMessage
	_ = json.Unmarshal(b, &m)
	return m
}
