package api

import (
	"context"

	"alignzo-api/domain"
)

// Upstream abstracts the backend API for handlers.
type Upstream interface {
	FetchCatalog(ctx context.Context, projectID string) ([]domain.Category, error)
	CreateTask(ctx context.Context, payload domain.TaskPayload) (string, error)
	UpdateTask(ctx context.Context, taskID string, payload domain.TaskPayload) error
	SaveTaskCategories(ctx context.Context, taskID string, links []domain.CategoryLink, userEmail string) error
}

// Authenticator is implemented by types able to identify callers from
// headers.
type Authenticator interface {
	UserFromAuthHeader(string) (domain.User, error)
}

// Deduper prevents reprocessing of duplicate task submissions.
type Deduper interface {
	// Add records the idempotency key and returns true if it was newly added.
	Add(ctx context.Context, userID, key string) (bool, error)
	// Remove deletes a previously added key, used when downstream processing fails.
	Remove(ctx context.Context, userID, key string) error
}
