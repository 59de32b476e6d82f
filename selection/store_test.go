package selection

import (
	"testing"

	"alignzo-api/domain"
)

func catalogOf(ids ...string) []domain.Category {
	catalog := make([]domain.Category, 0, len(ids))
	for i, id := range ids {
		catalog = append(catalog, domain.Category{ID: id, Name: id, SortOrder: i})
	}
	return catalog
}

func TestStoreEmptyIsIncomplete(t *testing.T) {
	s := NewStore()
	if s.IsComplete(catalogOf("c1")) {
		t.Fatal("empty store must not be complete against a non-empty catalog")
	}
	if !s.IsComplete(nil) {
		t.Fatal("any store is complete against an empty catalog")
	}
}

func TestStoreSetOptionCompletes(t *testing.T) {
	s := NewStore()
	s.SetOption("c1", "o1")
	if !s.IsComplete(catalogOf("c1")) {
		t.Fatal("expected complete after choosing the only category's option")
	}
	if s.IsComplete(catalogOf("c1", "c2")) {
		t.Fatal("expected incomplete while c2 has no choice")
	}
}

func TestStoreBlankOptionClearsButKeepsEntry(t *testing.T) {
	s := NewStore()
	s.SetOption("c1", "o1")
	s.SetOption("c1", "  ")
	if s.IsComplete(catalogOf("c1")) {
		t.Fatal("cleared choice must not count as complete")
	}
	if s.Len() != 1 {
		t.Fatalf("expected the touched entry to survive clearing, len=%d", s.Len())
	}
	sel := s.Selections()
	if len(sel) != 1 || sel[0].CategoryID != "c1" || sel[0].OptionID != "" {
		t.Fatalf("unexpected selections: %#v", sel)
	}
}

func TestStoreForeignEntryDoesNotAffectCompleteness(t *testing.T) {
	s := NewStore()
	s.SetOption("c1", "o1")
	s.SetOption("ghost", "oX")
	if !s.IsComplete(catalogOf("c1")) {
		t.Fatal("entry for a category outside the catalog must not break completeness")
	}
	s2 := NewStore()
	s2.SetOption("ghost", "oX")
	if s2.IsComplete(catalogOf("c1")) {
		t.Fatal("a foreign entry must not satisfy completeness either")
	}
}

func TestStoreSelectionsKeepInsertionOrder(t *testing.T) {
	s := NewStore()
	s.SetOption("c2", "o2")
	s.SetOption("c1", "o1")
	s.SetOption("c2", "o9") // update must not reorder

	sel := s.Selections()
	if len(sel) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(sel))
	}
	if sel[0].CategoryID != "c2" || sel[0].OptionID != "o9" || sel[0].SortOrder != 0 {
		t.Fatalf("unexpected first entry: %#v", sel[0])
	}
	if sel[1].CategoryID != "c1" || sel[1].OptionID != "o1" || sel[1].SortOrder != 1 {
		t.Fatalf("unexpected second entry: %#v", sel[1])
	}
}

func TestStorePrimaryChoiceSkipsClearedEntries(t *testing.T) {
	s := NewStore()
	if _, _, ok := s.PrimaryChoice(); ok {
		t.Fatal("empty store has no primary choice")
	}
	s.SetOption("c1", "")
	s.SetOption("c2", "o2")
	cat, opt, ok := s.PrimaryChoice()
	if !ok || cat != "c2" || opt != "o2" {
		t.Fatalf("expected (c2,o2), got (%s,%s,%v)", cat, opt, ok)
	}
}

func TestStoreRebuildDropsStaleEntries(t *testing.T) {
	s := NewStore()
	s.SetOption("c1", "o1")
	s.SetOption("c2", "o2")

	// c2 disappears on catalog reload; its entry must be dropped before the
	// next completeness check.
	s.Rebuild(catalogOf("c1"))
	if s.Len() != 1 {
		t.Fatalf("expected stale entry to be dropped, len=%d", s.Len())
	}
	if !s.IsComplete(catalogOf("c1")) {
		t.Fatal("surviving entry should keep the store complete")
	}
	if s.IsComplete(catalogOf("c1", "c2")) {
		t.Fatal("re-added category must require a fresh choice")
	}
}

func TestStoreHydrateReplacesState(t *testing.T) {
	s := NewStore()
	s.SetOption("old", "o")
	s.Hydrate([]domain.SelectionEntry{
		{CategoryID: "c1", OptionID: "o1"},
		{CategoryID: "c2"},
	})
	sel := s.Selections()
	if len(sel) != 2 || sel[0].CategoryID != "c1" || sel[1].CategoryID != "c2" {
		t.Fatalf("unexpected selections after hydrate: %#v", sel)
	}
	if sel[1].OptionID != "" {
		t.Fatalf("expected unset option to hydrate as blank, got %q", sel[1].OptionID)
	}
}

func TestStoreResetEmpties(t *testing.T) {
	s := NewStore()
	s.SetOption("c1", "o1")
	s.Reset()
	if s.Len() != 0 || s.HasAnyChoice() {
		t.Fatalf("expected empty store after reset, len=%d", s.Len())
	}
}
