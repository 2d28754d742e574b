package schema

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/ugoscholars/scholardb/pkg/records"
)

// CanonicalizeMaster cleans the master header in place and renames columns
// that match a canonical field, ignoring case and treating spaces as
// underscores. A column keeps its name when the canonical one is already in
// the header. It returns the renamed columns, old name to new.
func CanonicalizeMaster(t *records.Table) map[string]string {
	fold := cases.Fold()
	key := func(c string) string {
		return fold.String(strings.ReplaceAll(CleanColumn(c), " ", "_"))
	}

	canonical := make(map[string]string, len(records.Canonical))
	for _, c := range records.Canonical {
		canonical[key(c)] = c
	}
	present := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		present[c] = true
	}

	var renamed map[string]string
	for i, col := range t.Columns {
		if records.IsCanonical(col) {
			continue
		}
		target, ok := canonical[key(col)]
		if !ok || present[target] {
			continue
		}
		if renamed == nil {
			renamed = make(map[string]string)
		}
		renamed[col] = target
		present[target] = true
		t.Columns[i] = target
	}

	for _, row := range t.Rows {
		for from, to := range renamed {
			if v, ok := row[from]; ok {
				row[to] = v
				delete(row, from)
			}
		}
	}
	return renamed
}
