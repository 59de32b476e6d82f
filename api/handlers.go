package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"alignzo-api/domain"
	"alignzo-api/selection"
	"alignzo-api/upstream"
)

const msgCatalogUnavailable = "failed to load categories; please retry"

// Policies fixes the validation behavior for each modal flow.
type Policies struct {
	Create selection.Policy
	Edit   selection.Policy
}

// DefaultPolicies matches the current modals: every category is mandatory,
// and past due dates are preserved on edit.
func DefaultPolicies() Policies {
	return Policies{
		Create: selection.Policy{RequireAll: true, AllowPastDue: false},
		Edit:   selection.Policy{RequireAll: true, AllowPastDue: true},
	}
}

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, up Upstream, auth Authenticator, deduper Deduper, policies Policies, logger *log.Logger) {
	e.GET("/api/categories/project-options", getCatalog(up, auth, logger))
	e.POST("/api/tasks/validate", postValidate(up, auth, policies))
	e.POST("/api/tasks", postTask(up, auth, deduper, policies))
	e.PUT("/api/tasks/:id", putTask(up, auth, deduper, policies))
	e.GET("/healthz", healthz())

	initLinkSender(up, deduper, logger)
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}
}

func getCatalog(up Upstream, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newCatalogRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		_, authErr := auth.UserFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		projectID := strings.TrimSpace(c.QueryParam("projectId"))
		if projectID == "" {
			metrics.SetErrorStage("missing_project_id")
			err = c.String(http.StatusBadRequest, "projectId is required")
			return err
		}

		fetchStart := time.Now()
		catalog, fetchErr := up.FetchCatalog(ctx, projectID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			if errors.Is(fetchErr, upstream.ErrEmptyProjectID) {
				metrics.SetErrorStage("missing_project_id")
				err = c.String(http.StatusBadRequest, "projectId is required")
				return err
			}
			metrics.SetErrorStage("upstream")
			c.Logger().Error(fetchErr)
			err = c.JSON(http.StatusBadGateway, catalogResponse{Categories: []domain.Category{}, Error: msgCatalogUnavailable})
			return err
		}

		metrics.SetCategoriesReturned(len(catalog))
		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, catalogResponse{Categories: catalog})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func postValidate(up Upstream, auth Authenticator, policies Policies) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if _, err := auth.UserFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var req validateRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		catalog, err := up.FetchCatalog(ctx, req.ProjectID)
		if err != nil {
			if errors.Is(err, upstream.ErrEmptyProjectID) {
				return c.String(http.StatusBadRequest, "projectId is required")
			}
			c.Logger().Error(err)
			return c.String(http.StatusBadGateway, msgCatalogUnavailable)
		}

		policy := policies.Create
		if strings.EqualFold(req.Mode, "edit") {
			policy = policies.Edit
		}
		store := buildStore(req.Selections, catalog)
		res := selection.Validate(req.Form, store, catalog, time.Now(), policy)
		return c.JSON(http.StatusOK, validateResponse{Valid: res.Valid(), FieldErrors: fieldErrorMap(res)})
	}
}

func postTask(up Upstream, auth Authenticator, deduper Deduper, policies Policies) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := auth.UserFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		catalog, err := up.FetchCatalog(ctx, req.ProjectID)
		if err != nil {
			if errors.Is(err, upstream.ErrEmptyProjectID) {
				return c.String(http.StatusBadRequest, "projectId is required")
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusBadGateway, createTaskResponse{Error: msgCatalogUnavailable})
		}

		store := buildStore(req.Selections, catalog)
		res := selection.Validate(req.Form, store, catalog, time.Now(), policies.Create)
		if !res.Valid() {
			return c.JSON(http.StatusUnprocessableEntity, validateResponse{FieldErrors: fieldErrorMap(res)})
		}

		key, added, duplicate := registerKey(c, deduper, user.ID)
		if duplicate {
			return c.JSON(http.StatusAccepted, createTaskResponse{IdempotencyKey: key, Duplicate: true})
		}

		payload := selection.BuildPayload(req.Form, store)
		taskID, createErr := up.CreateTask(ctx, payload)
		if createErr != nil {
			rollbackKeys(deduper, user.ID, added, c.Logger())
			c.Logger().Error(createErr)
			return c.JSON(http.StatusBadGateway, createTaskResponse{Error: "failed to create task"})
		}

		dispatchLinks(c, up, linkJob{taskID: taskID, userID: user.ID, userEmail: user.Email, links: payload.Categories, added: added})
		return c.JSON(http.StatusCreated, createTaskResponse{TaskID: taskID, IdempotencyKey: key})
	}
}

func putTask(up Upstream, auth Authenticator, deduper Deduper, policies Policies) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		user, err := auth.UserFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		taskID := strings.TrimSpace(c.Param("id"))
		if taskID == "" {
			return c.String(http.StatusBadRequest, "task id is required")
		}

		var req updateTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}

		if !selection.HasChanges(req.Original.Form, req.Current.Form, req.Original.Selections, req.Current.Selections) {
			return c.JSON(http.StatusOK, updateTaskResponse{Updated: false})
		}

		catalog, err := up.FetchCatalog(ctx, req.ProjectID)
		if err != nil {
			if errors.Is(err, upstream.ErrEmptyProjectID) {
				return c.String(http.StatusBadRequest, "projectId is required")
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusBadGateway, updateTaskResponse{Error: msgCatalogUnavailable})
		}

		store := buildStore(req.Current.Selections, catalog)
		res := selection.Validate(req.Current.Form, store, catalog, time.Now(), policies.Edit)
		if !res.Valid() {
			return c.JSON(http.StatusUnprocessableEntity, validateResponse{FieldErrors: fieldErrorMap(res)})
		}

		key, added, duplicate := registerKey(c, deduper, user.ID)
		if duplicate {
			return c.JSON(http.StatusAccepted, updateTaskResponse{IdempotencyKey: key, Duplicate: true})
		}

		payload := selection.BuildPayload(req.Current.Form, store)
		if updateErr := up.UpdateTask(ctx, taskID, payload); updateErr != nil {
			rollbackKeys(deduper, user.ID, added, c.Logger())
			c.Logger().Error(updateErr)
			return c.JSON(http.StatusBadGateway, updateTaskResponse{Error: "failed to update task"})
		}

		dispatchLinks(c, up, linkJob{taskID: taskID, userID: user.ID, userEmail: user.Email, links: payload.Categories, added: added})
		return c.JSON(http.StatusOK, updateTaskResponse{Updated: true, IdempotencyKey: key})
	}
}

func decodeBody(c echo.Context, out any) error {
	lr := io.LimitReader(c.Request().Body, submitMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

// buildStore hydrates a selection store from the submitted entries and
// prunes anything the current catalog no longer knows about.
func buildStore(entries []domain.SelectionEntry, catalog []domain.Category) *selection.Store {
	store := selection.NewStore()
	store.Hydrate(entries)
	store.Rebuild(catalog)
	return store
}

func fieldErrorMap(res selection.ValidationResult) map[string]string {
	m := make(map[string]string, len(res.Errors))
	for _, fe := range res.Errors {
		m[string(fe.Field)] = fe.Message
	}
	return m
}

// registerKey claims the request's idempotency key (header or generated).
// Dedupe is advisory: deduper errors fail open so a redis outage never
// blocks submissions.
func registerKey(c echo.Context, deduper Deduper, userID string) (key string, added []string, duplicate bool) {
	key = strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))
	if key == "" {
		key = uuid.NewString()
	}
	if deduper == nil {
		return key, nil, false
	}
	fresh, err := deduper.Add(c.Request().Context(), userID, key)
	if err != nil {
		c.Logger().Errorf("dedupe add failed: %v", err)
		return key, nil, false
	}
	if !fresh {
		return key, nil, true
	}
	return key, []string{key}, false
}

func rollbackKeys(deduper Deduper, userID string, keys []string, logger echo.Logger) {
	if deduper == nil {
		return
	}
	for _, k := range keys {
		if err := deduper.Remove(bg, userID, k); err != nil && logger != nil {
			logger.Errorf("dedupe rollback failed, err: %v, key: %s, user: %s", err, k, userID)
		}
	}
}

// dispatchLinks hands the category links to the async sender; when the
// buffer is saturated it falls back to an inline synchronous save so the
// write is never dropped silently.
func dispatchLinks(c echo.Context, up Upstream, job linkJob) {
	if len(job.links) == 0 {
		return
	}
	if tryEnqueueJob(job) {
		return
	}

	if globalLog != nil {
		globalLog.Warn("link sender buffer saturated; saving inline")
	}

	timeout := sendTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(bg, timeout)
	defer cancel()
	if err := up.SaveTaskCategories(sendCtx, job.taskID, job.links, job.userEmail); err != nil {
		rollbackKeys(globalDeduper, job.userID, job.added, c.Logger())
		c.Logger().Errorf("task-categories inline save failed: %v", err)
	}
}
