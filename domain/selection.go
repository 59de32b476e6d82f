package domain

// SelectionEntry records the chosen option for one category. An empty
// OptionID means the category was touched but currently has no choice.
type SelectionEntry struct {
	CategoryID string `json:"categoryId"`
	OptionID   string `json:"optionId,omitempty"`
	SortOrder  int    `json:"sortOrder"`
}

// CategoryLink is the wire form of a selection entry, used both inside
// task payloads and in the task-categories persistence call.
type CategoryLink struct {
	CategoryID       string  `json:"category_id"`
	CategoryOptionID *string `json:"category_option_id"`
	IsPrimary        bool    `json:"is_primary"`
	SortOrder        int     `json:"sort_order"`
}
