package api

import "alignzo-api/domain"

const submitMaxSize = 64 * 1024 // 64 KiB

// GET /api/categories/project-options response body. Error is set when the
// upstream read failed and Categories is then empty, so clients always get
// a usable (if degraded) shape.
type catalogResponse struct {
	Categories []domain.Category `json:"categories"`
	Error      string            `json:"error,omitempty"`
}

// taskEnvelope is one snapshot of the modal: the form plus the ordered
// selections.
type taskEnvelope struct {
	Form       domain.TaskForm         `json:"form"`
	Selections []domain.SelectionEntry `json:"selections"`
}

// POST /api/tasks/validate request body.
type validateRequest struct {
	ProjectID  string                  `json:"projectId"`
	Mode       string                  `json:"mode"`
	Form       domain.TaskForm         `json:"form"`
	Selections []domain.SelectionEntry `json:"selections"`
}

type validateResponse struct {
	Valid       bool              `json:"valid"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

// POST /api/tasks request body.
type createTaskRequest struct {
	ProjectID  string                  `json:"projectId"`
	Form       domain.TaskForm         `json:"form"`
	Selections []domain.SelectionEntry `json:"selections"`
}

type createTaskResponse struct {
	TaskID         string `json:"taskId,omitempty"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
	Duplicate      bool   `json:"duplicate,omitempty"`
	Error          string `json:"error,omitempty"`
}

// PUT /api/tasks/:id request body. Original is the snapshot taken when the
// modal opened; Current is what the user submits.
type updateTaskRequest struct {
	ProjectID string       `json:"projectId"`
	Original  taskEnvelope `json:"original"`
	Current   taskEnvelope `json:"current"`
}

type updateTaskResponse struct {
	Updated        bool   `json:"updated"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
	Duplicate      bool   `json:"duplicate,omitempty"`
	Error          string `json:"error,omitempty"`
}
