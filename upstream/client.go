// Package upstream talks to the backend-as-a-service HTTP API that owns
// all persistence for the kanban app. This service only reads the
// category catalog and forwards validated task writes; nothing is stored
// locally.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"alignzo-api/domain"
)

// ErrEmptyProjectID is returned when a catalog is requested without a
// project.
var ErrEmptyProjectID = errors.New("project id is required")

// CatalogError wraps a failed catalog read so callers can surface a
// user-visible message and carry on with an empty catalog.
type CatalogError struct {
	ProjectID string
	Err       error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("load catalog for project %s: %v", e.ProjectID, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// Client is an HTTP client for the upstream API.
type Client struct {
	baseURL      string
	serviceToken string
	http         *http.Client
}

// New creates a Client for the given base URL. The service token, when
// set, is attached as a bearer credential to every request.
func New(baseURL, serviceToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		serviceToken: serviceToken,
		http:         &http.Client{Timeout: timeout},
	}
}

type catalogEnvelope struct {
	Categories []categoryEntity `json:"categories"`
}

// categoryEntity tolerates both response shapes the backend has shipped:
// options under "options" or "category_options", names under
// "name"/"option_name".
type categoryEntity struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	SortOrder       int            `json:"sort_order"`
	IsActive        *bool          `json:"is_active"`
	Options         []optionEntity `json:"options"`
	CategoryOptions []optionEntity `json:"category_options"`
}

type optionEntity struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	OptionName  string `json:"option_name"`
	Name        string `json:"name"`
	OptionValue string `json:"option_value"`
	Value       string `json:"value"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// FetchCatalog loads a project's category catalog and normalizes it at
// this boundary: soft-deleted entries are filtered as a fallback, both
// wire variants collapse into the one Category/Option shape, and
// categories and options come back sorted by sort order. Downstream code
// never branches on wire shape.
func (c *Client) FetchCatalog(ctx context.Context, projectID string) ([]domain.Category, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrEmptyProjectID
	}
	u := c.baseURL + "/api/categories/project-options?projectId=" + url.QueryEscape(projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &CatalogError{ProjectID: projectID, Err: err}
	}
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &CatalogError{ProjectID: projectID, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &CatalogError{ProjectID: projectID, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	var payload catalogEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &CatalogError{ProjectID: projectID, Err: err}
	}
	return normalizeCatalog(payload.Categories), nil
}

func normalizeCatalog(entities []categoryEntity) []domain.Category {
	catalog := make([]domain.Category, 0, len(entities))
	for _, ent := range entities {
		if ent.IsActive != nil && !*ent.IsActive {
			continue
		}
		raw := ent.Options
		if len(raw) == 0 {
			raw = ent.CategoryOptions
		}
		opts := make([]domain.Option, 0, len(raw))
		for _, o := range raw {
			if o.IsActive != nil && !*o.IsActive {
				continue
			}
			name := o.OptionName
			if name == "" {
				name = o.Name
			}
			value := o.OptionValue
			if value == "" {
				value = o.Value
			}
			catID := o.CategoryID
			if catID == "" {
				catID = ent.ID
			}
			opts = append(opts, domain.Option{ID: o.ID, CategoryID: catID, Name: name, Value: value, SortOrder: o.SortOrder})
		}
		sort.SliceStable(opts, func(i, j int) bool { return opts[i].SortOrder < opts[j].SortOrder })
		catalog = append(catalog, domain.Category{
			ID:          ent.ID,
			Name:        ent.Name,
			Description: ent.Description,
			SortOrder:   ent.SortOrder,
			Options:     opts,
		})
	}
	sort.SliceStable(catalog, func(i, j int) bool { return catalog[i].SortOrder < catalog[j].SortOrder })
	return catalog
}

type taskResponse struct {
	ID string `json:"id"`
}

// CreateTask forwards a task payload and returns the new task's id.
func (c *Client) CreateTask(ctx context.Context, payload domain.TaskPayload) (string, error) {
	var out taskResponse
	if err := c.send(ctx, http.MethodPost, "/api/kanban/tasks", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// UpdateTask forwards an update for an existing task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, payload domain.TaskPayload) error {
	return c.send(ctx, http.MethodPut, "/api/kanban/tasks/"+url.PathEscape(taskID), payload, nil)
}

type linkRequest struct {
	TaskID     string                `json:"taskId"`
	Categories []domain.CategoryLink `json:"categories"`
	UserEmail  string                `json:"userEmail"`
}

// SaveTaskCategories persists a task's category selection array.
func (c *Client) SaveTaskCategories(ctx context.Context, taskID string, links []domain.CategoryLink, userEmail string) error {
	if links == nil {
		links = []domain.CategoryLink{}
	}
	body := linkRequest{TaskID: taskID, Categories: links, UserEmail: userEmail}
	return c.send(ctx, http.MethodPost, "/api/kanban/task-categories", body, nil)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(snippet))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.serviceToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceToken)
	}
}
