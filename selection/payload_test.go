package selection

import (
	"encoding/json"
	"strings"
	"testing"

	"alignzo-api/domain"
)

func TestBuildPayloadCategoriesInsertionOrder(t *testing.T) {
	s := NewStore()
	s.SetOption("catA", "optA")
	s.SetOption("catB", "optB")

	p := BuildPayload(domain.TaskForm{Title: "t", ColumnID: "col"}, s)

	if len(p.Categories) != 2 {
		t.Fatalf("expected 2 category links, got %d", len(p.Categories))
	}
	if p.Categories[0].CategoryID != "catA" || p.Categories[0].SortOrder != 0 {
		t.Fatalf("unexpected first link: %#v", p.Categories[0])
	}
	if p.Categories[1].CategoryID != "catB" || p.Categories[1].SortOrder != 1 {
		t.Fatalf("unexpected second link: %#v", p.Categories[1])
	}
	if p.CategoryID != "catA" || p.CategoryOptionID != "optA" {
		t.Fatalf("legacy fields must mirror the first choice, got (%s,%s)", p.CategoryID, p.CategoryOptionID)
	}
	for _, link := range p.Categories {
		if link.IsPrimary {
			t.Fatal("no link may be primary")
		}
	}
}

func TestBuildPayloadClearedOptionIsNull(t *testing.T) {
	s := NewStore()
	s.SetOption("catA", "")
	s.SetOption("catB", "optB")

	p := BuildPayload(domain.TaskForm{Title: "t"}, s)
	if p.Categories[0].CategoryOptionID != nil {
		t.Fatalf("cleared option must serialize as null, got %v", *p.Categories[0].CategoryOptionID)
	}
	if p.CategoryID != "catB" {
		t.Fatalf("legacy category must skip cleared entries, got %q", p.CategoryID)
	}
}

func TestBuildPayloadDueDateSentinel(t *testing.T) {
	p := BuildPayload(domain.TaskForm{Title: "t", DueDate: "  "}, NewStore())
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"due_date":null`) {
		t.Fatalf("blank due date must marshal as explicit null: %s", data)
	}

	p = BuildPayload(domain.TaskForm{Title: "t", DueDate: "2030-04-01"}, NewStore())
	if p.DueDate == nil || *p.DueDate != "2030-04-01" {
		t.Fatalf("unexpected due date: %v", p.DueDate)
	}
}

func TestBuildPayloadScalars(t *testing.T) {
	form := domain.TaskForm{
		Title:          "  Ship it  ",
		Description:    "desc",
		ColumnID:       "col-1",
		Priority:       "high",
		Status:         "in_progress",
		EstimatedHours: "2.5",
		ActualHours:    "junk",
		AssignedTo:     "dev@example.com",
		JiraTicketKey:  "OPS-42",
		Scope:          "project",
	}
	p := BuildPayload(form, nil)

	if p.Title != "Ship it" {
		t.Fatalf("title must be trimmed, got %q", p.Title)
	}
	if p.EstimatedHours == nil || *p.EstimatedHours != 2.5 {
		t.Fatalf("unexpected estimated hours: %v", p.EstimatedHours)
	}
	if p.ActualHours != nil {
		t.Fatalf("unparseable hours must stay unset, got %v", *p.ActualHours)
	}
	if p.Categories == nil || len(p.Categories) != 0 {
		t.Fatalf("nil store must yield an empty categories array, got %#v", p.Categories)
	}
	if p.ColumnID != "col-1" || p.AssignedTo != "dev@example.com" || p.JiraTicketKey != "OPS-42" || p.Scope != "project" {
		t.Fatalf("scalar fields not copied: %#v", p)
	}
}
