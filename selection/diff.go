package selection

import (
	"strconv"
	"strings"

	"alignzo-api/domain"
)

// HasChanges reports whether the current form or selections differ from
// the snapshot taken when the modal opened. It exists only to skip no-op
// writes, so every comparison fails open: when a value cannot be
// interpreted, it reads as a change rather than silently blocking a
// legitimate submit.
func HasChanges(original, current domain.TaskForm, originalSel, currentSel []domain.SelectionEntry) bool {
	if formChanged(original, current) {
		return true
	}
	return selectionsChanged(originalSel, currentSel)
}

func formChanged(a, b domain.TaskForm) bool {
	if normalizeEmpty(a.Title) != normalizeEmpty(b.Title) ||
		normalizeEmpty(a.Description) != normalizeEmpty(b.Description) ||
		normalizeEmpty(a.ColumnID) != normalizeEmpty(b.ColumnID) ||
		normalizeEmpty(a.Priority) != normalizeEmpty(b.Priority) ||
		normalizeEmpty(a.Status) != normalizeEmpty(b.Status) ||
		normalizeEmpty(a.DueDate) != normalizeEmpty(b.DueDate) ||
		normalizeEmpty(a.AssignedTo) != normalizeEmpty(b.AssignedTo) ||
		normalizeEmpty(a.JiraTicketID) != normalizeEmpty(b.JiraTicketID) ||
		normalizeEmpty(a.JiraTicketKey) != normalizeEmpty(b.JiraTicketKey) ||
		normalizeEmpty(a.Scope) != normalizeEmpty(b.Scope) {
		return true
	}
	return numberChanged(a.EstimatedHours, b.EstimatedHours) ||
		numberChanged(a.ActualHours, b.ActualHours)
}

// normalizeEmpty folds the web form's shades of empty into one canonical
// value. Snapshots arrive from a JS client, so the literals "null" and
// "undefined" are coercion noise, not values.
func normalizeEmpty(v string) string {
	v = strings.TrimSpace(v)
	if v == "null" || v == "undefined" {
		return ""
	}
	return v
}

// numberChanged compares numeric form fields by value when both sides
// parse, so "2" against "2.0" is not an edit. If either side fails to
// parse, the raw strings are compared instead.
func numberChanged(a, b string) bool {
	na, nb := normalizeEmpty(a), normalizeEmpty(b)
	if na == "" && nb == "" {
		return false
	}
	fa, errA := strconv.ParseFloat(na, 64)
	fb, errB := strconv.ParseFloat(nb, 64)
	if errA == nil && errB == nil {
		return fa != fb
	}
	return na != nb
}

func selectionsChanged(a, b []domain.SelectionEntry) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i].CategoryID != b[i].CategoryID ||
			normalizeEmpty(a[i].OptionID) != normalizeEmpty(b[i].OptionID) {
			return true
		}
	}
	return false
}
