package selection

import (
	"strconv"
	"strings"

	"alignzo-api/domain"
)

// BuildPayload shapes the validated form and selection store into the
// upstream task contract. The legacy singular category fields ride
// alongside the categories array until the last consumer of them is gone.
func BuildPayload(form domain.TaskForm, store *Store) domain.TaskPayload {
	p := domain.TaskPayload{
		Title:         strings.TrimSpace(form.Title),
		Description:   form.Description,
		ColumnID:      form.ColumnID,
		Priority:      form.Priority,
		Status:        form.Status,
		JiraTicketID:  form.JiraTicketID,
		JiraTicketKey: form.JiraTicketKey,
		AssignedTo:    form.AssignedTo,
		Scope:         form.Scope,
	}
	p.EstimatedHours = parseHours(form.EstimatedHours)
	p.ActualHours = parseHours(form.ActualHours)

	// A blank date stays nil and marshals as explicit null, the "no date"
	// sentinel the upstream store expects instead of "".
	if due := strings.TrimSpace(form.DueDate); due != "" {
		p.DueDate = &due
	}

	if store != nil {
		if catID, optID, ok := store.PrimaryChoice(); ok {
			p.CategoryID = catID
			p.CategoryOptionID = optID
		}
		p.Categories = Links(store.Selections())
	}
	if p.Categories == nil {
		p.Categories = []domain.CategoryLink{}
	}
	return p
}

// Links converts selection entries to their wire form. There is no
// primary-category concept anymore, so IsPrimary is always false.
func Links(entries []domain.SelectionEntry) []domain.CategoryLink {
	links := make([]domain.CategoryLink, 0, len(entries))
	for _, e := range entries {
		link := domain.CategoryLink{CategoryID: e.CategoryID, SortOrder: e.SortOrder}
		if e.OptionID != "" {
			opt := e.OptionID
			link.CategoryOptionID = &opt
		}
		links = append(links, link)
	}
	return links
}

func parseHours(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
