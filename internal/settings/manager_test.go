package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storedeck/storedeck/internal/store"
)

func setupManager(t *testing.T) (*Manager, context.Context) {
	t.Helper()

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tenant, err := s.CreateTenant(context.Background(), "Acme Goods", "acme")
	require.NoError(t, err)

	return NewManager(s), store.WithTenant(context.Background(), tenant.ID)
}

func TestManager_DefaultsWhenUnset(t *testing.T) {
	m, ctx := setupManager(t)

	ai, err := m.GetAI(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultAI(), ai)

	site, err := m.GetSiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "My Store", site.StoreName)
}

func TestManager_PatchMergesOverCurrent(t *testing.T) {
	m, ctx := setupManager(t)

	site, err := m.PatchSiteConfig(ctx, []byte(`{"storeName":"Acme Goods"}`))
	require.NoError(t, err)
	assert.Equal(t, "Acme Goods", site.StoreName)
	// Untouched fields keep their defaults.
	assert.Equal(t, "#1a1a2e", site.PrimaryColor)

	// A second patch touches a different field; the first edit survives.
	site, err = m.PatchSiteConfig(ctx, []byte(`{"maintenanceMode":true}`))
	require.NoError(t, err)
	assert.Equal(t, "Acme Goods", site.StoreName)
	assert.True(t, site.MaintenanceMode)

	// And the merged document is what a fresh read sees.
	got, err := m.GetSiteConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, site, got)
}

func TestManager_PatchInvalidJSON(t *testing.T) {
	m, ctx := setupManager(t)

	_, err := m.PatchAI(ctx, []byte(`{not json`))
	assert.Error(t, err)

	// The stored document is untouched by a failed patch.
	ai, err := m.GetAI(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultAI(), ai)
}

func TestManager_Reset(t *testing.T) {
	m, ctx := setupManager(t)

	_, err := m.PatchPayout(ctx, []byte(`{"schedule":"weekly","currency":"EUR"}`))
	require.NoError(t, err)

	require.NoError(t, m.Reset(ctx, KindPayout))

	payout, err := m.GetPayout(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultPayout(), payout)
}

func TestManager_ResetUnknownKind(t *testing.T) {
	m, ctx := setupManager(t)
	assert.Error(t, m.Reset(ctx, "bogus"))
}
