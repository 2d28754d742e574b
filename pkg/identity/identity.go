// Package identity decides whether an incoming source record refers to a
// student already present in the master table.
//
// The default strategy is exact matching on the trimmed, lower-cased full
// name. Strategies are pluggable so a stricter key (for example name plus
// district) can be introduced without touching the orchestrator.
package identity

import (
	"strings"

	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
)

// ErrEmptyKey is returned when a record has no usable identity.
var ErrEmptyKey = errors.New("empty identity key")

// Key is a normalized identity. The zero value means "no identity".
type Key string

// Empty reports whether the key is unusable for matching.
func (k Key) Empty() bool { return k == "" }

// Strategy derives an identity key from a canonical record.
type Strategy interface {
	Key(row records.Row) Key
}

// KeyFunc adapts a function to the Strategy interface.
type KeyFunc func(row records.Row) Key

// Key implements Strategy.
func (f KeyFunc) Key(row records.Row) Key { return f(row) }

// ExactName matches on lower(trim(Full_Name)).
var ExactName Strategy = KeyFunc(func(row records.Row) Key {
	return Normalize(row[records.FullName])
})

// Normalize turns a full name into its identity key.
func Normalize(fullName string) Key {
	return Key(strings.ToLower(strings.TrimSpace(fullName)))
}

// Index maps identity keys to master row positions.
type Index struct {
	strategy Strategy
	rows     map[Key]int
}

// NewIndex builds an index over the master rows. When two rows share a key
// the later one wins. Rows with an empty key are not indexed.
func NewIndex(strategy Strategy, rows []records.Row) *Index {
	if strategy == nil {
		strategy = ExactName
	}
	idx := &Index{strategy: strategy, rows: make(map[Key]int, len(rows))}
	for i, r := range rows {
		if k := strategy.Key(r); !k.Empty() {
			idx.rows[k] = i
		}
	}
	return idx
}

// Resolve returns the master row position for record.
func (idx *Index) Resolve(record records.Row) (int, bool, error) {
	k := idx.strategy.Key(record)
	if k.Empty() {
		return 0, false, ErrEmptyKey
	}
	pos, ok := idx.rows[k]
	return pos, ok, nil
}

// Add records that record now lives at master row position pos.
func (idx *Index) Add(record records.Row, pos int) error {
	k := idx.strategy.Key(record)
	if k.Empty() {
		return ErrEmptyKey
	}
	idx.rows[k] = pos
	return nil
}

// Len returns the number of indexed identities.
func (idx *Index) Len() int {
	return len(idx.rows)
}

// Resolve looks up fullName in a plain key index using exact-name matching.
func Resolve(fullName string, index map[Key]int) (int, bool) {
	k := Normalize(fullName)
	if k.Empty() {
		return 0, false
	}
	pos, ok := index[k]
	return pos, ok
}
