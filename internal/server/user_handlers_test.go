package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMyProfile(t *testing.T) {
	_, app := newTestServer(t)
	token, userID := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	resp := doJSON(t, app, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, float64(userID), body["id"])
	assert.Equal(t, "Mike", body["name"])
	assert.Equal(t, "mike@example.com", body["email"])
	assert.NotContains(t, body, "password")
}

func TestUpdateMyProfile(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	resp := doJSON(t, app, http.MethodPatch, "/users/me", token, map[string]any{
		"name": "Michael",
		"age":  28,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "Michael", body["name"])
	assert.Equal(t, float64(28), body["age"])
	// Untouched fields survive a partial update
	assert.Equal(t, "mike@example.com", body["email"])
}

func TestUpdateMyProfileRejectsUnknownFields(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"Unknown field", map[string]any{"height": 180}},
		{"Mixed with valid field", map[string]any{"name": "Michael", "_id": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPatch, "/users/me", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, "Invalid Updates", body["error"])
		})
	}

	// The rejected mixed update must not have been applied
	resp := doJSON(t, app, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mike", decodeBody(t, resp)["name"])
}

func TestUpdateMyProfileRejectsNullValues(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	for _, field := range []string{"name", "email", "password", "age"} {
		t.Run(field, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPatch, "/users/me", token, map[string]any{
				field: nil,
			})
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			body := decodeBody(t, resp)
			assert.Equal(t, field+" cannot be null", body["error"])
		})
	}

	// Nothing was cleared or changed
	resp := doJSON(t, app, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Mike", body["name"])
	assert.Equal(t, "mike@example.com", body["email"])
}

func TestUpdateMyProfilePasswordChange(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	resp := doJSON(t, app, http.MethodPatch, "/users/me", token, map[string]any{
		"password": "blue456$!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	// Old password no longer works
	resp = doJSON(t, app, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "mike@example.com",
		"password": "red123$!",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/users/login", "", map[string]any{
		"email":    "mike@example.com",
		"password": "blue456$!",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestDeleteMyAccount(t *testing.T) {
	s, app := newTestServer(t)
	token, userID := signupUser(t, app, "Mike", "mike@example.com", "red123$!")

	// Seed a task so the cascade has something to remove
	resp := doJSON(t, app, http.MethodPost, "/tasks", token, map[string]any{
		"description": "Pack boxes",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "mike@example.com", body["email"])

	// The deleted user's token no longer authenticates
	resp = doJSON(t, app, http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()

	// Tasks went with the account
	var count int64
	require.NoError(t, s.db.Table("tasks").Where("user_id = ?", userID).Count(&count).Error)
	assert.Zero(t, count)
}
