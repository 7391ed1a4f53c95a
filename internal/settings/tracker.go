package settings

import "reflect"

// Tracker records which fields of an editable settings document differ
// from the original snapshot. It is the client-side companion to the
// settings PATCH endpoint: an admin editor loads a document, builds a
// Tracker from it, and sends Changes as the patch body so only edited
// fields travel. It replaces whole-document serialize-and-compare dirty
// checks: each Set is O(1) against the original field, and setting a
// field back to its original value removes it from the change set, so
// revert restores a clean state.
type Tracker struct {
	original map[string]any
	changed  map[string]any
}

func NewTracker(original map[string]any) *Tracker {
	orig := make(map[string]any, len(original))
	for k, v := range original {
		orig[k] = v
	}
	return &Tracker{
		original: orig,
		changed:  make(map[string]any),
	}
}

// Set records a field edit. A value equal to the original clears the
// field from the change set.
func (t *Tracker) Set(field string, value any) {
	if reflect.DeepEqual(t.original[field], value) {
		delete(t.changed, field)
		return
	}
	t.changed[field] = value
}

// IsDirty reports whether any field currently differs from the original.
func (t *Tracker) IsDirty() bool {
	return len(t.changed) > 0
}

// Changes returns the changed-field set, the payload for a PATCH that
// sends only edited fields.
func (t *Tracker) Changes() map[string]any {
	out := make(map[string]any, len(t.changed))
	for k, v := range t.changed {
		out[k] = v
	}
	return out
}

// Reset replaces the original snapshot (typically with the server's
// response after a save) and clears the change set.
func (t *Tracker) Reset(original map[string]any) {
	orig := make(map[string]any, len(original))
	for k, v := range original {
		orig[k] = v
	}
	t.original = orig
	t.changed = make(map[string]any)
}
