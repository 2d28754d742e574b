// Package differ compares two versions of the master table and reports
// which students were added, updated or removed.
package differ

import (
	"fmt"
	"io"
	"strings"

	"github.com/ugoscholars/scholardb/pkg/records"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates a field gained a value.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates a field value changed.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeRemove indicates a field lost its value.
	ChangeTypeRemove ChangeType = "remove"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Field    string
	OldValue string
	NewValue string
	Type     ChangeType
}

// StudentUpdate represents an update to an existing master row.
type StudentUpdate struct {
	ID       int
	Name     string
	Existing records.Row
	New      records.Row
	Changes  []FieldChange
}

// Changeset represents all changes between two master tables.
type Changeset struct {
	Added   []records.Row
	Updated []StudentUpdate
	Removed []records.Row
	Summary ChangesetSummary
}

// ChangesetSummary provides summary statistics for a changeset.
type ChangesetSummary struct {
	Added        int
	Updated      int
	Removed      int
	TotalChanges int
}

func calculateSummary(c *Changeset) ChangesetSummary {
	return ChangesetSummary{
		Added:        len(c.Added),
		Updated:      len(c.Updated),
		Removed:      len(c.Removed),
		TotalChanges: len(c.Added) + len(c.Updated) + len(c.Removed),
	}
}

// HasChanges returns true if the changeset contains any changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// IsEmpty returns true if the changeset contains no changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() {
		return "No changes detected"
	}

	var parts []string
	if c.Summary.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", c.Summary.Added))
	}
	if c.Summary.Updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", c.Summary.Updated))
	}
	if c.Summary.Removed > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", c.Summary.Removed))
	}
	return fmt.Sprintf("Students: %s (Total: %d changes)", strings.Join(parts, ", "), c.Summary.TotalChanges)
}

// Print writes a detailed, human-readable view of the changeset to w.
func (c *Changeset) Print(w io.Writer) {
	fmt.Fprintln(w, c.String())
	fmt.Fprintln(w, strings.Repeat("─", 80))

	if len(c.Added) > 0 {
		fmt.Fprintf(w, "\n➕ Added Students (%d):\n", len(c.Added))
		for _, row := range c.Added {
			fmt.Fprintf(w, "  • %s %s", row[records.IDField], row[records.FullName])
			if src := row[records.SourceSheet]; src != "" {
				fmt.Fprintf(w, " (%s)", src)
			}
			fmt.Fprintln(w)
		}
	}

	if len(c.Updated) > 0 {
		fmt.Fprintf(w, "\n🔄 Updated Students (%d):\n", len(c.Updated))
		for _, update := range c.Updated {
			fmt.Fprintf(w, "  • %d %s:\n", update.ID, update.Name)
			for _, change := range update.Changes {
				fmt.Fprintf(w, "    - %s: %q → %q\n", change.Field, change.OldValue, change.NewValue)
			}
		}
	}

	if len(c.Removed) > 0 {
		fmt.Fprintf(w, "\n⚠️  Removed Students (%d):\n", len(c.Removed))
		for _, row := range c.Removed {
			fmt.Fprintf(w, "  • %s %s\n", row[records.IDField], row[records.FullName])
		}
	}
}
