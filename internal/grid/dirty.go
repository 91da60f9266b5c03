package grid

import "sort"

// FieldChange is one entry of a row diff: a pending value that differs from
// canonical at evaluation time.
type FieldChange struct {
	Field Field
	Value string
}

type pendingEntry struct {
	baseline Row // canonical row as known when editing began
	fields   map[Field]string
}

// Tracker records user-entered but unsaved values per row and field. At most
// one entry exists per row; edits to different fields of the same row
// accumulate in that entry. Diffs are always computed against the live
// canonical row, not the captured baseline, so a concurrent refresh or an
// earlier save that already reconciled a field naturally drops it from the
// diff. The baseline is kept anyway; it is what a conflict-detection layer
// would compare against.
type Tracker struct {
	store    *Store
	entries  map[int64]*pendingEntry
	revision uint64
}

func NewTracker(store *Store) *Tracker {
	return &Tracker{store: store, entries: make(map[int64]*pendingEntry)}
}

// RecordEdit upserts field -> value into the row's pending map. The first
// edit of a row snapshots the current canonical row as its baseline.
// Editing remarks and then goods status on the same row keeps both pending.
func (t *Tracker) RecordEdit(id int64, f Field, value string) error {
	switch f {
	case FieldArrivalDate, FieldDispatchDate, FieldGoodsStatus, FieldRemarks:
	default:
		return &UnknownFieldError{Field: f}
	}
	entry, ok := t.entries[id]
	if !ok {
		baseline, err := t.store.GetByID(id)
		if err != nil {
			return err
		}
		entry = &pendingEntry{baseline: baseline, fields: make(map[Field]string)}
		t.entries[id] = entry
	}
	entry.fields[f] = value
	t.revision++
	return nil
}

// Diff returns the pending fields of a row whose normalized value differs
// from the normalized current canonical value, in save order. A pending
// value that matches canonical (for dates: empty vs null vs absent are all
// equal) produces no entry.
func (t *Tracker) Diff(id int64) ([]FieldChange, error) {
	entry, ok := t.entries[id]
	if !ok {
		return nil, nil
	}
	canonical, err := t.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	var out []FieldChange
	for _, f := range SaveOrder {
		pending, has := entry.fields[f]
		if !has {
			continue
		}
		if normalizeField(f, pending) == normalizeField(f, canonical.FieldValue(f)) {
			continue
		}
		out = append(out, FieldChange{Field: f, Value: pending})
	}
	return out, nil
}

// ClearField removes one pending field. Removing the last field removes the
// entry and its baseline.
func (t *Tracker) ClearField(id int64, f Field) {
	entry, ok := t.entries[id]
	if !ok {
		return
	}
	if _, has := entry.fields[f]; !has {
		return
	}
	delete(entry.fields, f)
	if len(entry.fields) == 0 {
		delete(t.entries, id)
	}
	t.revision++
}

// Clear removes a row's entire pending entry.
func (t *Tracker) Clear(id int64) {
	if _, ok := t.entries[id]; !ok {
		return
	}
	delete(t.entries, id)
	t.revision++
}

// IsDirty reports whether the row has any pending field.
func (t *Tracker) IsDirty(id int64) bool {
	_, ok := t.entries[id]
	return ok
}

// DirtyIDs returns a sorted snapshot of the row ids with pending edits.
// SaveAll iterates this snapshot so that clearing entries mid-pass cannot
// disturb the iteration.
func (t *Tracker) DirtyIDs() []int64 {
	out := make([]int64, 0, len(t.entries))
	for id := range t.entries {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PendingValue returns the unsaved value of a row's field, if any.
func (t *Tracker) PendingValue(id int64, f Field) (string, bool) {
	entry, ok := t.entries[id]
	if !ok {
		return "", false
	}
	v, has := entry.fields[f]
	return v, has
}

// Baseline returns the canonical row captured when editing of the row began.
func (t *Tracker) Baseline(id int64) (Row, bool) {
	entry, ok := t.entries[id]
	if !ok {
		return Row{}, false
	}
	return entry.baseline, true
}

// Revision is bumped on every tracker mutation; the renderer uses it the
// same way as Store.Revision.
func (t *Tracker) Revision() uint64 {
	return t.revision
}
