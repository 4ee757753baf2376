package storage

import (
	"context"
	"testing"

	"carrier-search-portal/internal/adapters/kv"
	"carrier-search-portal/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestPreferences_DefaultsWhenAbsent(t *testing.T) {
	p := NewPreferences(NewStore(kv.NewMemoryBackend()))
	assert.Equal(t, domain.DefaultPreferences(), p.Get(context.Background()))
}

func TestPreferences_UpdateMergesShallow(t *testing.T) {
	p := NewPreferences(NewStore(kv.NewMemoryBackend()))
	ctx := context.Background()

	p.Update(ctx, domain.PreferencesPatch{Theme: ptr(domain.ThemeDark)})

	got := p.Get(ctx)
	assert.Equal(t, domain.ThemeDark, got.Theme)
	assert.Equal(t, "roadmap", got.MapType)
	assert.True(t, got.ShowAlternativeRoutes)

	p.Update(ctx, domain.PreferencesPatch{ShowAlternativeRoutes: ptr(false)})
	got = p.Get(ctx)
	assert.Equal(t, domain.ThemeDark, got.Theme)
	assert.False(t, got.ShowAlternativeRoutes)
}

func TestPreferences_UpdateKeepsUnknownKeys(t *testing.T) {
	backend := kv.NewMemoryBackend()
	p := NewPreferences(NewStore(backend))
	ctx := context.Background()

	require.NoError(t, backend.SetItem(ctx, UserPreferencesKey,
		`{"theme":"light","mapType":"terrain","showAlternativeRoutes":true,"units":"imperial"}`))

	updated := p.Update(ctx, domain.PreferencesPatch{MapType: ptr("satellite")})
	assert.Equal(t, "satellite", updated.MapType)

	raw, ok, err := backend.GetItem(ctx, UserPreferencesKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t,
		`{"theme":"light","mapType":"satellite","showAlternativeRoutes":true,"units":"imperial"}`, raw)
}

func TestPreferences_PartialStoredRecordKeepsDefaults(t *testing.T) {
	backend := kv.NewMemoryBackend()
	p := NewPreferences(NewStore(backend))
	ctx := context.Background()

	require.NoError(t, backend.SetItem(ctx, UserPreferencesKey, `{"theme":"dark"}`))

	got := p.Get(ctx)
	assert.Equal(t, domain.ThemeDark, got.Theme)
	assert.Equal(t, "roadmap", got.MapType)
	assert.True(t, got.ShowAlternativeRoutes)
}

func TestPreferences_UnavailableStorage(t *testing.T) {
	p := NewPreferences(NewStore(&brokenBackend{}))
	ctx := context.Background()

	got := p.Update(ctx, domain.PreferencesPatch{Theme: ptr(domain.ThemeDark)})
	assert.Equal(t, domain.ThemeDark, got.Theme)
	assert.Equal(t, domain.DefaultPreferences(), p.Get(ctx))
}
