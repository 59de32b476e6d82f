package selection

import (
	"strconv"
	"strings"
	"time"

	"alignzo-api/domain"
)

// Field names a validatable modal field. The set is closed so callers can
// switch over it exhaustively instead of probing an open string map.
type Field string

const (
	FieldTitle          Field = "title"
	FieldColumn         Field = "column_id"
	FieldCategory       Field = "category_id"
	FieldEstimatedHours Field = "estimated_hours"
	FieldActualHours    Field = "actual_hours"
	FieldDueDate        Field = "due_date"
)

const (
	msgTitleRequired     = "Title is required"
	msgColumnRequired    = "Column is required"
	msgCategoryAny       = "At least one category option is required"
	msgCategoryAll       = "All categories are mandatory and must be selected"
	msgEstimatedPositive = "Estimated hours must be greater than 0"
	msgActualPositive    = "Actual hours must be greater than 0"
	msgDueDatePast       = "Due date cannot be in the past"
)

// FieldError ties one message to one field.
type FieldError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of one validation pass. It is recomputed
// from scratch on every call and never stored.
type ValidationResult struct {
	Errors []FieldError `json:"errors"`
}

// Valid reports whether the pass produced no field errors.
func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

// ByField returns the message recorded for a field, or "" when it passed.
func (r ValidationResult) ByField(f Field) string {
	for _, e := range r.Errors {
		if e.Field == f {
			return e.Message
		}
	}
	return ""
}

// Policy selects between the validation behaviors the two modal revisions
// disagree on.
type Policy struct {
	// RequireAll demands a choice for every catalog category. When false, a
	// single chosen option satisfies the category rule.
	RequireAll bool
	// AllowPastDue suppresses the past-due-date rule so edit flows can
	// preserve due dates that were already in the past.
	AllowPastDue bool
}

// Validate checks the form against the catalog and the selection store.
// Every rule runs on every call, with no early exit; now is an explicit
// argument so callers own the clock. A nil store behaves like an empty
// one.
func Validate(form domain.TaskForm, store *Store, catalog []domain.Category, now time.Time, policy Policy) ValidationResult {
	var res ValidationResult

	if strings.TrimSpace(form.Title) == "" {
		res.Errors = append(res.Errors, FieldError{FieldTitle, msgTitleRequired})
	}
	if strings.TrimSpace(form.ColumnID) == "" {
		res.Errors = append(res.Errors, FieldError{FieldColumn, msgColumnRequired})
	}

	if policy.RequireAll {
		complete := len(catalog) == 0
		if store != nil {
			complete = store.IsComplete(catalog)
		}
		if !complete {
			res.Errors = append(res.Errors, FieldError{FieldCategory, msgCategoryAll})
		}
	} else if len(catalog) > 0 && (store == nil || !store.HasAnyChoice()) {
		res.Errors = append(res.Errors, FieldError{FieldCategory, msgCategoryAny})
	}

	if msg := checkHours(form.EstimatedHours, msgEstimatedPositive); msg != "" {
		res.Errors = append(res.Errors, FieldError{FieldEstimatedHours, msg})
	}
	if msg := checkHours(form.ActualHours, msgActualPositive); msg != "" {
		res.Errors = append(res.Errors, FieldError{FieldActualHours, msg})
	}

	if !policy.AllowPastDue {
		// Unparseable dates are skipped, matching the UI, which only ever
		// compares valid dates.
		if due, ok := parseDueDate(form.DueDate); ok && due.Before(now.Truncate(24*time.Hour)) {
			res.Errors = append(res.Errors, FieldError{FieldDueDate, msgDueDatePast})
		}
	}
	return res
}

func checkHours(raw, msg string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return msg
	}
	return ""
}

var dueDateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDueDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
