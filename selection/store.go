// Package selection implements the pure task-modal core: the per-modal
// selection store, the field validator, the unsaved-change detector and
// the submission payload builder. Nothing in this package performs I/O;
// the clock, the catalog and the form are always explicit inputs.
package selection

import (
	"strings"

	"alignzo-api/domain"
)

// Store holds the chosen option per category for one open modal. Entries
// keep the order in which their categories were first touched, which is
// also the order the payload builder emits them in. A Store belongs to
// exactly one modal session and is discarded on close.
type Store struct {
	order   []string
	entries map[string]string // categoryID -> optionID, "" meaning cleared
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]string)}
}

// SetOption upserts the choice for a category. A blank optionID clears the
// choice but keeps the entry, so completeness sees the category as
// touched-but-unset rather than untouched.
func (s *Store) SetOption(categoryID, optionID string) {
	if categoryID == "" {
		return
	}
	if _, ok := s.entries[categoryID]; !ok {
		s.order = append(s.order, categoryID)
	}
	s.entries[categoryID] = strings.TrimSpace(optionID)
}

// Hydrate seeds the store from a task's existing category links, keeping
// their order. The edit flow uses it after loading the task.
func (s *Store) Hydrate(entries []domain.SelectionEntry) {
	s.Reset()
	for _, e := range entries {
		s.SetOption(e.CategoryID, e.OptionID)
	}
}

// Reset empties the store.
func (s *Store) Reset() {
	s.order = s.order[:0]
	for k := range s.entries {
		delete(s.entries, k)
	}
}

// Rebuild drops entries whose category no longer exists in the catalog.
// It must run after every catalog reload, otherwise a stale entry can
// skew completeness in either direction.
func (s *Store) Rebuild(catalog []domain.Category) {
	known := make(map[string]struct{}, len(catalog))
	for _, c := range catalog {
		known[c.ID] = struct{}{}
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := known[id]; ok {
			kept = append(kept, id)
		} else {
			delete(s.entries, id)
		}
	}
	s.order = kept
}

// IsComplete reports whether every category in the catalog has a non-blank
// choice. Entries for categories outside the catalog never affect the
// result.
func (s *Store) IsComplete(catalog []domain.Category) bool {
	for _, c := range catalog {
		if s.entries[c.ID] == "" {
			return false
		}
	}
	return true
}

// HasAnyChoice reports whether at least one entry carries a non-blank
// option. This is the completeness bar of the older modal revision.
func (s *Store) HasAnyChoice() bool {
	for _, id := range s.order {
		if s.entries[id] != "" {
			return true
		}
	}
	return false
}

// Selections returns the entries in insertion order, each stamped with its
// positional sort order for payload purposes.
func (s *Store) Selections() []domain.SelectionEntry {
	out := make([]domain.SelectionEntry, 0, len(s.order))
	for i, id := range s.order {
		out = append(out, domain.SelectionEntry{CategoryID: id, OptionID: s.entries[id], SortOrder: i})
	}
	return out
}

// PrimaryChoice returns the first entry (insertion order) with a non-blank
// option. It feeds the legacy singular category fields of the task
// payload.
func (s *Store) PrimaryChoice() (categoryID, optionID string, ok bool) {
	for _, id := range s.order {
		if s.entries[id] != "" {
			return id, s.entries[id], true
		}
	}
	return "", "", false
}

// Len reports how many categories have been touched.
func (s *Store) Len() int { return len(s.order) }
