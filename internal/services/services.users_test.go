// FilePath: internal/services/services.users_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digicatapult/wasp-api/internal/models"
)

func TestGetCurrentUserSendsUserIDHeader(t *testing.T) {
	var header string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("user-id")
		assert.Equal(t, "/user/current", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"id":        "u1",
			"name":      "alice",
			"role":      "admin",
			"createdAt": "2020-01-01T00:00:00Z",
			"createdBy": "u1",
		})
	}))
	defer server.Close()

	client := NewUsersClient(server.URL)
	user, err := client.GetCurrentUser(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", header)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), user.CreatedAt.UTC())
}

func TestGetCurrentUserUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewUsersClient(server.URL)
	_, err := client.GetCurrentUser(context.Background(), "ghost")
	require.Error(t, err)

	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, svcErr.Code)
}

func TestCreateUserConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := NewUsersClient(server.URL)
	_, err := client.CreateUser(context.Background(), "admin-id", "bob", models.RoleUser)
	require.Error(t, err)

	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, svcErr.Code)
}

func TestCreateUserReturnsRecordWithPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id":        "u2",
			"name":      "bob",
			"role":      "user",
			"createdAt": "2022-05-01T12:00:00Z",
			"createdBy": "admin-id",
			"password":  "generated",
		})
	}))
	defer server.Close()

	client := NewUsersClient(server.URL)
	user, err := client.CreateUser(context.Background(), "admin-id", "bob", models.RoleUser)
	require.NoError(t, err)

	assert.Equal(t, "bob", user.Name)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "generated", user.Password)
	assert.Equal(t, "admin-id", user.CreatedBy)
}

func TestUpdateUserPasswordPropagatesValidationMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Password must be at least 8 characters",
		})
	}))
	defer server.Close()

	client := NewUsersClient(server.URL)
	err := client.UpdateUserPassword(context.Background(), "u1", "short")
	require.Error(t, err)

	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, svcErr.Code)
	assert.Equal(t, "Password must be at least 8 characters", svcErr.Message)
}

func TestUpdateUserPasswordBadRequestWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewUsersClient(server.URL)
	err := client.UpdateUserPassword(context.Background(), "u1", "short")
	require.Error(t, err)

	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "Bad Request", svcErr.Message)
}

func TestResetUserPasswordReturnsGeneratedPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/user/u2/password", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"password": "fresh"})
	}))
	defer server.Close()

	client := NewUsersClient(server.URL)
	password, err := client.ResetUserPassword(context.Background(), "admin-id", "u2")
	require.NoError(t, err)
	assert.Equal(t, "fresh", password)
}

func TestUpdateUserPatchesRole(t *testing.T) {
	recorder := &upstreamRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder.record(r)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewUsersClient(server.URL)
	err := client.UpdateUser(context.Background(), "admin-id", "u2", models.RoleRemoved)
	require.NoError(t, err)

	requests := recorder.all()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPatch, requests[0].Method)
	assert.Equal(t, "/user/u2", requests[0].Path)
	assert.Equal(t, "removed", requests[0].Body["role"])
}
