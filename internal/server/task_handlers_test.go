package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTask(t *testing.T, app *fiber.App, token, description string) map[string]any {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/tasks", token, map[string]any{
		"description": description,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody(t, resp)
}

func TestCreateTask(t *testing.T) {
	_, app := newTestServer(t)
	token, userID := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	task := createTask(t, app, token, "Buy groceries")
	assert.Equal(t, "Buy groceries", task["description"])
	assert.Equal(t, false, task["completed"])
	assert.Equal(t, float64(userID), task["user_id"])
}

func TestCreateTaskRejectsBlankDescription(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	resp := doJSON(t, app, http.MethodPost, "/tasks", token, map[string]any{
		"description": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestGetTasksFilterSortAndPage(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	first := createTask(t, app, token, "First")
	second := createTask(t, app, token, "Second")
	third := createTask(t, app, token, "Third")

	// Mark the second task completed
	resp := doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/tasks/%v", second["id"]), token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	listTasks := func(query string) []map[string]any {
		resp := doJSON(t, app, http.MethodGet, "/tasks"+query, token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		defer func() { _ = resp.Body.Close() }()

		var out []map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	all := listTasks("")
	assert.Len(t, all, 3)

	completed := listTasks("?completed=true")
	require.Len(t, completed, 1)
	assert.Equal(t, second["id"], completed[0]["id"])

	pending := listTasks("?completed=false")
	assert.Len(t, pending, 2)

	desc := listTasks("?sortBy=createdAt:desc")
	require.Len(t, desc, 3)
	assert.Equal(t, third["id"], desc[0]["id"])
	assert.Equal(t, first["id"], desc[2]["id"])

	paged := listTasks("?limit=1&skip=1")
	require.Len(t, paged, 1)
	assert.Equal(t, second["id"], paged[0]["id"])
}

func TestGetTasksEmptyListIsNotNull(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	resp := doJSON(t, app, http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer func() { _ = resp.Body.Close() }()

	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestTasksAreScopedToOwner(t *testing.T) {
	_, app := newTestServer(t)
	mikeToken, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")
	annaToken, _ := signupUser(t, app, "Anna", "anna@example.com", "blue456$!")

	task := createTask(t, app, mikeToken, "Mike's secret task")
	taskPath := fmt.Sprintf("/tasks/%v", task["id"])

	// Another user's task reads as missing, never as forbidden
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp := doJSON(t, app, method, taskPath, annaToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		_ = resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodPatch, taskPath, annaToken, map[string]any{"completed": true})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	// The owner still sees it untouched
	resp = doJSON(t, app, http.MethodGet, taskPath, mikeToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["completed"])
}

func TestUpdateTaskRejectsUnknownFields(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")
	task := createTask(t, app, token, "Water plants")

	resp := doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/tasks/%v", task["id"]), token, map[string]any{
			"completed": true,
			"priority":  "high",
		})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Invalid Updates", body["error"])
}

func TestDeleteTaskReturnsDeletedRecord(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")
	task := createTask(t, app, token, "Take out trash")
	taskPath := fmt.Sprintf("/tasks/%v", task["id"])

	resp := doJSON(t, app, http.MethodDelete, taskPath, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Take out trash", decodeBody(t, resp)["description"])

	resp = doJSON(t, app, http.MethodGet, taskPath, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestTaskInvalidIDParam(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	resp := doJSON(t, app, http.MethodGet, "/tasks/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}
