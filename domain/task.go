package domain

// TaskForm carries the editable modal fields exactly as the web form holds
// them: everything is a string, blank meaning unset. Numeric and date
// fields are parsed only at validation and payload-building time.
type TaskForm struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	ColumnID       string `json:"columnId"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
	EstimatedHours string `json:"estimatedHours"`
	ActualHours    string `json:"actualHours"`
	DueDate        string `json:"dueDate"`
	AssignedTo     string `json:"assignedTo"`
	JiraTicketID   string `json:"jiraTicketId"`
	JiraTicketKey  string `json:"jiraTicketKey"`
	Scope          string `json:"scope"`
}

// TaskPayload is the create/update contract of the upstream task endpoint.
// DueDate is a pointer without omitempty: a blank form date must reach the
// upstream as an explicit null, never as "" (timestamp columns reject
// empty strings) and never by omission.
type TaskPayload struct {
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	CategoryID       string         `json:"category_id,omitempty"`
	CategoryOptionID string         `json:"category_option_id,omitempty"`
	Categories       []CategoryLink `json:"categories"`
	ColumnID         string         `json:"column_id"`
	Priority         string         `json:"priority,omitempty"`
	Status           string         `json:"status,omitempty"`
	EstimatedHours   *float64       `json:"estimated_hours,omitempty"`
	ActualHours      *float64       `json:"actual_hours,omitempty"`
	DueDate          *string        `json:"due_date"`
	JiraTicketID     string         `json:"jira_ticket_id,omitempty"`
	JiraTicketKey    string         `json:"jira_ticket_key,omitempty"`
	AssignedTo       string         `json:"assigned_to,omitempty"`
	Scope            string         `json:"scope,omitempty"`
}
