// FilePath: internal/services/services.users.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	nuts "github.com/vaudience/go-nuts"

	"github.com/digicatapult/wasp-api/internal/models"
)

const usersServiceName = "users"

// userIDHeader identifies the acting user on every users-service call
const userIDHeader = "user-id"

// UsersClient talks to the wasp user service
type UsersClient struct {
	client *resty.Client
}

// NewUsersClient creates a users client rooted at the service's versioned
// API prefix
func NewUsersClient(baseURL string) *UsersClient {
	return &UsersClient{
		client: resty.New().SetBaseURL(baseURL),
	}
}

// GetCurrentUser resolves the user record behind an asserted user id
func (u *UsersClient) GetCurrentUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader(userIDHeader, userID).
		SetResult(&user).
		Get("/user/current")
	if err != nil {
		return nil, fmt.Errorf("error fetching current user from users service: %w", err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[UsersClient] Error fetching current user. Error was (%d) %s", resp.StatusCode(), resp.Status())
		return nil, newServiceError(usersServiceName, resp.StatusCode(), "")
	}
	return &user, nil
}

// GetUser fetches a user record by id on behalf of the acting user
func (u *UsersClient) GetUser(ctx context.Context, asUserID, targetID string) (*models.User, error) {
	var user models.User
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader(userIDHeader, asUserID).
		SetResult(&user).
		Get("/user/" + targetID)
	if err != nil {
		return nil, fmt.Errorf("error fetching user %s from users service: %w", targetID, err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[UsersClient] Error fetching user %s. Error was (%d) %s", targetID, resp.StatusCode(), resp.Status())
		return nil, newServiceError(usersServiceName, resp.StatusCode(), "")
	}
	return &user, nil
}

// GetUsers lists all users on behalf of the acting user
func (u *UsersClient) GetUsers(ctx context.Context, asUserID string) ([]models.User, error) {
	var users []models.User
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader(userIDHeader, asUserID).
		SetResult(&users).
		Get("/user")
	if err != nil {
		return nil, fmt.Errorf("error fetching users from users service: %w", err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[UsersClient] Error fetching users. Error was (%d) %s", resp.StatusCode(), resp.Status())
		return nil, newServiceError(usersServiceName, resp.StatusCode(), "")
	}
	return users, nil
}

// CreateUser registers a new user. Duplicate usernames come back as a 409
// ServiceError for the resolver to translate.
func (u *UsersClient) CreateUser(ctx context.Context, asUserID, name string, role models.Role) (*models.NewUser, error) {
	var user models.NewUser
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader(userIDHeader, asUserID).
		SetBody(map[string]any{"name": name, "role": role}).
		SetResult(&user).
		Post("/user")
	if err != nil {
		return nil, fmt.Errorf("error creating user with users service: %w", err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[UsersClient] Error creating user (%s, %s). Error was (%d) %s", name, role, resp.StatusCode(), resp.Status())
		return nil, newServiceError(usersServiceName, resp.StatusCode(), "")
	}
	return &user, nil
}

// UpdateUserPassword sets a new password for the acting user. A 400 carries
// the upstream validation message through verbatim.
func (u *UsersClient) UpdateUserPassword(ctx context.Context, asUserID, password string) error {
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader(userIDHeader, asUserID).
		SetBody(map[string]any{"password": password}).
		Put("/user/current/password")
	if err != nil {
		return fmt.Errorf("error updating password with users service: %w", err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[UsersClient] Error updating password for current user. Error was (%d) %s", resp.StatusCode(), resp.Status())
		if resp.StatusCode() == http.StatusBadRequest {
			var body struct {
				Message string `json:"message"`
			}
			if jsonErr := json.Unmarshal(resp.Body(), &body); jsonErr == nil && body.Message != "" {
				return newServiceError(usersServiceName, resp.StatusCode(), body.Message)
			}
		}
		return newServiceError(usersServiceName, resp.StatusCode(), "")
	}
	return nil
}

// ResetUserPassword resets the target user's password and returns the
// generated replacement
func (u *UsersClient) ResetUserPassword(ctx context.Context, asUserID, targetID string) (string, error) {
	var result struct {
		Password string `json:"password"`
	}
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader(userIDHeader, asUserID).
		SetBody(map[string]any{}).
		SetResult(&result).
		Put("/user/" + targetID + "/password")
	if err != nil {
		return "", fmt.Errorf("error resetting password with users service: %w", err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[UsersClient] Error resetting password for user %s. Error was (%d) %s", targetID, resp.StatusCode(), resp.Status())
		return "", newServiceError(usersServiceName, resp.StatusCode(), "")
	}
	return result.Password, nil
}

// UpdateUser changes the role of the target user
func (u *UsersClient) UpdateUser(ctx context.Context, asUserID, targetID string, role models.Role) error {
	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader(userIDHeader, asUserID).
		SetBody(map[string]any{"role": role}).
		Patch("/user/" + targetID)
	if err != nil {
		return fmt.Errorf("error updating user %s with users service: %w", targetID, err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[UsersClient] Error updating role for user %s. Error was (%d) %s", targetID, resp.StatusCode(), resp.Status())
		return newServiceError(usersServiceName, resp.StatusCode(), "")
	}
	return nil
}
