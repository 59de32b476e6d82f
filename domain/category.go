package domain

// Category groups the selectable options a project exposes in the task
// modals. Categories are read-only here; they are managed through the
// upstream category endpoints.
type Category struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	SortOrder   int      `json:"sortOrder"`
	Options     []Option `json:"options"`
}

// Option is a single selectable value belonging to exactly one category.
type Option struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Value      string `json:"value"`
	SortOrder  int    `json:"sortOrder"`
}
