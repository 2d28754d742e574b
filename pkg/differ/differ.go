package differ

import (
	"slices"
	"sort"

	"github.com/ugoscholars/scholardb/pkg/records"
)

// Differ handles change detection between master tables.
type Differ interface {
	// Tables compares two master tables keyed by id.
	Tables(existing, updated *records.Table) *Changeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{ignoreFields: make(map[string]bool)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Tables compares two master tables. Rows without a valid id cannot be
// matched and are ignored.
func (d *differ) Tables(existing, updated *records.Table) *Changeset {
	changeset := &Changeset{
		Added:   []records.Row{},
		Updated: []StudentUpdate{},
		Removed: []records.Row{},
	}

	existingMap := byID(existing)
	updatedMap := byID(updated)

	for _, id := range sortedIDs(updatedMap) {
		row := updatedMap[id]
		old, ok := existingMap[id]
		if !ok {
			changeset.Added = append(changeset.Added, row)
			continue
		}
		if changes := d.fields(old, row); len(changes) > 0 {
			changeset.Updated = append(changeset.Updated, StudentUpdate{
				ID:       id,
				Name:     row[records.FullName],
				Existing: old,
				New:      row,
				Changes:  changes,
			})
		}
	}

	for _, id := range sortedIDs(existingMap) {
		if _, ok := updatedMap[id]; !ok {
			changeset.Removed = append(changeset.Removed, existingMap[id])
		}
	}

	changeset.Summary = calculateSummary(changeset)
	return changeset
}

// fields compares two rows field by field, canonical fields first.
func (d *differ) fields(old, updated records.Row) []FieldChange {
	var names []string
	for _, c := range records.Canonical {
		_, a := old[c]
		_, b := updated[c]
		if a || b {
			names = append(names, c)
		}
	}
	var extra []string
	for _, row := range []records.Row{old, updated} {
		for k := range row {
			if !records.IsCanonical(k) && !slices.Contains(extra, k) {
				extra = append(extra, k)
			}
		}
	}
	sort.Strings(extra)
	names = append(names, extra...)

	var changes []FieldChange
	for _, name := range names {
		if d.ignoreFields[name] {
			continue
		}
		before, after := old[name], updated[name]
		if before == after {
			continue
		}
		change := FieldChange{Field: name, OldValue: before, NewValue: after, Type: ChangeTypeUpdate}
		switch {
		case records.Blank(before):
			change.Type = ChangeTypeAdd
		case records.Blank(after):
			change.Type = ChangeTypeRemove
		}
		changes = append(changes, change)
	}
	return changes
}

func byID(t *records.Table) map[int]records.Row {
	out := make(map[int]records.Row)
	if t == nil {
		return out
	}
	for _, row := range t.Rows {
		if id, ok := row.ID(); ok {
			out[id] = row
		}
	}
	return out
}

func sortedIDs(m map[int]records.Row) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
