package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/storedeck/storedeck/internal/store"
)

// Manager loads, patches, and resets per-tenant settings documents. Each
// kind is one row per tenant, fetched whole; a PATCH carries only changed
// fields and is merged over the stored document. Last write wins.
type Manager struct {
	store *store.SQLiteStore
}

func NewManager(s *store.SQLiteStore) *Manager {
	return &Manager{store: s}
}

// get loads the stored document of the given kind, falling back to
// defaults when the tenant has never saved one.
func get[T any](ctx context.Context, m *Manager, kind string, defaults T) (T, error) {
	doc, err := m.store.GetSettings(ctx, kind)
	if errors.Is(err, store.ErrNotFound) {
		return defaults, nil
	}
	if err != nil {
		return defaults, err
	}

	out := defaults
	if err := json.Unmarshal(doc, &out); err != nil {
		return defaults, fmt.Errorf("failed to decode %s settings: %w", kind, err)
	}
	return out, nil
}

// patch merges the changed fields over the current document and stores
// the result whole. Fields absent from the patch keep their value.
func patch[T any](ctx context.Context, m *Manager, kind string, defaults T, changes []byte) (T, error) {
	current, err := get(ctx, m, kind, defaults)
	if err != nil {
		return defaults, err
	}

	if err := json.Unmarshal(changes, &current); err != nil {
		return defaults, fmt.Errorf("invalid %s settings patch: %w", kind, err)
	}

	doc, err := json.Marshal(current)
	if err != nil {
		return defaults, fmt.Errorf("failed to encode %s settings: %w", kind, err)
	}
	if err := m.store.PutSettings(ctx, kind, doc); err != nil {
		return defaults, err
	}

	return current, nil
}

func (m *Manager) GetAI(ctx context.Context) (AISettings, error) {
	return get(ctx, m, KindAI, DefaultAI())
}

func (m *Manager) PatchAI(ctx context.Context, changes []byte) (AISettings, error) {
	return patch(ctx, m, KindAI, DefaultAI(), changes)
}

func (m *Manager) GetPayout(ctx context.Context) (PayoutSettings, error) {
	return get(ctx, m, KindPayout, DefaultPayout())
}

func (m *Manager) PatchPayout(ctx context.Context, changes []byte) (PayoutSettings, error) {
	return patch(ctx, m, KindPayout, DefaultPayout(), changes)
}

func (m *Manager) GetSiteConfig(ctx context.Context) (SiteConfig, error) {
	return get(ctx, m, KindSiteConfig, DefaultSiteConfig())
}

func (m *Manager) PatchSiteConfig(ctx context.Context, changes []byte) (SiteConfig, error) {
	return patch(ctx, m, KindSiteConfig, DefaultSiteConfig(), changes)
}

func (m *Manager) GetCommunication(ctx context.Context) (CommunicationSettings, error) {
	return get(ctx, m, KindCommunication, DefaultCommunication())
}

func (m *Manager) PatchCommunication(ctx context.Context, changes []byte) (CommunicationSettings, error) {
	return patch(ctx, m, KindCommunication, DefaultCommunication(), changes)
}

// Reset deletes the stored document so the tenant reverts to defaults.
func (m *Manager) Reset(ctx context.Context, kind string) error {
	switch kind {
	case KindAI, KindPayout, KindSiteConfig, KindCommunication:
		return m.store.DeleteSettings(ctx, kind)
	default:
		return fmt.Errorf("unknown settings kind: %s", kind)
	}
}
