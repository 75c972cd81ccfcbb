package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowdash/internal/models"
	"flowdash/internal/storage/sqlite"
)

type payload map[string]any

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "flowdash.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return New(store, nil, "")
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) models.Task {
	t.Helper()

	var task models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func decodeTasks(t *testing.T, rec *httptest.ResponseRecorder) []models.Task {
	t.Helper()

	var tasks []models.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	return tasks
}

func TestHealthz(t *testing.T) {
	srv := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateTaskDefaults(t *testing.T) {
	srv := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", payload{"title": "A", "content": "B"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	task := decodeTask(t, rec)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.False(t, task.CreatedAt.IsZero())
	assert.True(t, task.UpdatedAt.Equal(task.CreatedAt))
}

func TestCreateTaskValidation(t *testing.T) {
	srv := setupTestServer(t)

	cases := []struct {
		name string
		body payload
	}{
		{"missing title", payload{"content": "B"}},
		{"empty title", payload{"title": "   ", "content": "B"}},
		{"missing content", payload{"title": "A"}},
		{"empty content", payload{"title": "A", "content": ""}},
		{"unknown priority", payload{"title": "A", "content": "B", "priority": "urgent"}},
		{"unknown status", payload{"title": "A", "content": "B", "status": "blocked"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/tasks", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	// none of the rejected requests may leave a row behind
	rec := doJSON(t, srv, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeTasks(t, rec))
}

func TestListTasksNewestFirst(t *testing.T) {
	srv := setupTestServer(t)

	ids := make([]string, 0, 3)
	for _, title := range []string{"one", "two", "three"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/tasks", payload{"title": title, "content": "body"})
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decodeTask(t, rec).ID)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	tasks := decodeTasks(t, rec)
	require.Len(t, tasks, 3)
	assert.Equal(t, ids[2], tasks[0].ID)
	assert.Equal(t, ids[1], tasks[1].ID)
	assert.Equal(t, ids[0], tasks[2].ID)
}

func TestListTasksEmptyArray(t *testing.T) {
	srv := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestPartialUpdateKeepsOtherFields(t *testing.T) {
	srv := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", payload{
		"title": "refactor", "content": "split the handler", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeTask(t, rec)

	rec = doJSON(t, srv, http.MethodPatch, "/api/tasks/"+created.ID, payload{"status": "done"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decodeTask(t, rec)
	assert.Equal(t, models.StatusDone, updated.Status)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Content, updated.Content)
	assert.Equal(t, created.Priority, updated.Priority)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateValidation(t *testing.T) {
	srv := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", payload{"title": "A", "content": "B"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeTask(t, rec).ID

	rec = doJSON(t, srv, http.MethodPut, "/api/tasks/"+id, payload{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPut, "/api/tasks/"+id, payload{"priority": "asap"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPut, "/api/tasks/"+id, payload{"status": "in_progress"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateNotFound(t *testing.T) {
	srv := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", payload{"title": "A", "content": "B"})
	require.Equal(t, http.StatusCreated, rec.Code)
	before := decodeTask(t, rec)

	rec = doJSON(t, srv, http.MethodPatch, "/api/tasks/does-not-exist", payload{"status": "done"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decodeTasks(t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, before.ID, tasks[0].ID)
	assert.Equal(t, models.StatusTodo, tasks[0].Status)
}

func TestDeleteIdempotent(t *testing.T) {
	srv := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", payload{"title": "A", "content": "B"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeTask(t, rec).ID

	rec = doJSON(t, srv, http.MethodDelete, "/api/tasks/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "task deleted")

	rec = doJSON(t, srv, http.MethodDelete, "/api/tasks/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeTasks(t, rec))
}

func TestTaskLifecycle(t *testing.T) {
	srv := setupTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", payload{"title": "A", "content": "B"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeTask(t, rec)
	assert.Equal(t, models.PriorityMedium, created.Priority)
	assert.Equal(t, models.StatusTodo, created.Status)
	assert.NotEmpty(t, created.ID)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decodeTasks(t, rec)
	require.NotEmpty(t, tasks)
	assert.Equal(t, created.ID, tasks[0].ID, "newest element first")

	rec = doJSON(t, srv, http.MethodPatch, "/api/tasks/"+created.ID, payload{"status": "done"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tasks = decodeTasks(t, rec)
	require.Len(t, tasks, 1)
	assert.Equal(t, models.StatusDone, tasks[0].Status)
	assert.False(t, tasks[0].UpdatedAt.Before(created.UpdatedAt))

	rec = doJSON(t, srv, http.MethodDelete, "/api/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeTasks(t, rec))
}
