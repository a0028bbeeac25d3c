package workspace

import (
	"fmt"

	"lumina/internal/domain"
	models "lumina/internal/domain/models/collection"
)

// KVRow is one editable row of a header or param table.
type KVRow struct {
	Key   string
	Value string
}

func (r KVRow) empty() bool { return r.Key == "" && r.Value == "" }

// KVTable is an editable key/value table whose only blank row is the last one.
// Rows with an empty key but a value stay visible and are left out of Pairs.
type KVTable struct {
	rows []KVRow
}

// NewKVTable builds a table from stored pairs
func NewKVTable(kv models.KeyValues) *KVTable {
	t := &KVTable{rows: make([]KVRow, 0, len(kv)+1)}
	for _, p := range kv {
		t.rows = append(t.rows, KVRow{Key: p.Key, Value: p.Value})
	}
	t.settle()
	return t
}

// Rows returns a copy of the rows including the trailing empty one
func (t *KVTable) Rows() []KVRow {
	out := make([]KVRow, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *KVTable) Len() int { return len(t.rows) }

// Set edits row i. Filling in the trailing row appends a fresh empty row;
// clearing any other row removes it.
func (t *KVTable) Set(i int, key, value string) error {
	if i < 0 || i >= len(t.rows) {
		return &domain.ValidationError{Message: fmt.Sprintf("row %d out of range", i)}
	}
	t.rows[i] = KVRow{Key: key, Value: value}
	t.settle()
	return nil
}

// Remove deletes row i. The trailing empty row cannot be removed.
func (t *KVTable) Remove(i int) error {
	if i < 0 || i >= len(t.rows)-1 {
		return &domain.ValidationError{Message: fmt.Sprintf("row %d cannot be removed", i)}
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	t.settle()
	return nil
}

// Pairs returns the persisted form: rows with a key, later duplicates winning
func (t *KVTable) Pairs() models.KeyValues {
	kv := make(models.KeyValues, 0, len(t.rows))
	for _, r := range t.rows {
		kv = append(kv, models.KeyValue{Key: r.Key, Value: r.Value})
	}
	return kv.Normalize()
}

// settle drops blank rows and appends the single trailing empty row
func (t *KVTable) settle() {
	kept := t.rows[:0]
	for _, r := range t.rows {
		if !r.empty() {
			kept = append(kept, r)
		}
	}
	t.rows = append(kept, KVRow{})
}
