package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_CleanOnCreate(t *testing.T) {
	tr := NewTracker(map[string]any{"storeName": "My Store"})
	assert.False(t, tr.IsDirty())
	assert.Empty(t, tr.Changes())
}

func TestTracker_SetThenRevert(t *testing.T) {
	tr := NewTracker(map[string]any{"storeName": "My Store", "maintenanceMode": false})

	tr.Set("storeName", "Acme Goods")
	assert.True(t, tr.IsDirty())
	assert.Equal(t, map[string]any{"storeName": "Acme Goods"}, tr.Changes())

	// Setting the field back to its original value restores a clean state.
	tr.Set("storeName", "My Store")
	assert.False(t, tr.IsDirty())
	assert.Empty(t, tr.Changes())
}

func TestTracker_OnlyChangedFieldsInPayload(t *testing.T) {
	tr := NewTracker(map[string]any{
		"storeName":    "My Store",
		"supportEmail": "help@example.com",
		"primaryColor": "#1a1a2e",
	})

	tr.Set("primaryColor", "#000000")
	tr.Set("supportEmail", "help@example.com") // unchanged value, not an edit

	changes := tr.Changes()
	assert.Len(t, changes, 1)
	assert.Equal(t, "#000000", changes["primaryColor"])
}

func TestTracker_NewFieldIsDirty(t *testing.T) {
	tr := NewTracker(map[string]any{})
	tr.Set("logoUrl", "https://cdn.example.com/logo.png")
	assert.True(t, tr.IsDirty())
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(map[string]any{"storeName": "My Store"})
	tr.Set("storeName", "Acme Goods")

	// After a save, the server response becomes the new baseline.
	tr.Reset(map[string]any{"storeName": "Acme Goods"})
	assert.False(t, tr.IsDirty())

	tr.Set("storeName", "Acme Goods")
	assert.False(t, tr.IsDirty())
	tr.Set("storeName", "My Store")
	assert.True(t, tr.IsDirty())
}

func TestTracker_ChangesIsACopy(t *testing.T) {
	tr := NewTracker(map[string]any{"a": 1})
	tr.Set("a", 2)

	changes := tr.Changes()
	changes["b"] = 3

	assert.Len(t, tr.Changes(), 1)
}
