// FilePath: internal/services/services.go
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/digicatapult/wasp-api/internal/models"
)

// ServiceError is a non-success response from an upstream collaborator. It
// carries the upstream status code so resolvers can translate specific
// failures (404, 409, 400) into user-facing error kinds.
type ServiceError struct {
	Service string
	Code    int
	Message string
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service error (%d): %s", e.Service, e.Code, e.Message)
}

// AsServiceError extracts a ServiceError from an error chain
func AsServiceError(err error) (*ServiceError, bool) {
	svcErr, ok := err.(*ServiceError)
	return svcErr, ok
}

func newServiceError(service string, code int, message string) *ServiceError {
	if message == "" {
		message = http.StatusText(code)
	}
	return &ServiceError{Service: service, Code: code, Message: message}
}

// Things is the upstream thing-registry collaborator
type Things interface {
	GetThings(ctx context.Context) ([]models.ThingSummary, error)
	GetThing(ctx context.Context, id string) (*models.Thing, error)
	CreateThing(ctx context.Context, input models.ThingInput) (*models.Thing, error)
	UpdateThing(ctx context.Context, thing *models.Thing) error
	DeleteThing(ctx context.Context, id string) error
}

// ReadingsQuery narrows a readings fetch. Start is exclusive, End inclusive.
type ReadingsQuery struct {
	Limit           int
	StartTimestamp  *int64
	EndTimestamp    *int64
	SortByTimestamp string
}

// Readings is the upstream time-series collaborator
type Readings interface {
	GetThingDatasets(ctx context.Context, thingID string, filter *models.DatasetsFilter) ([]models.Dataset, error)
	GetDatasetReadings(ctx context.Context, thingID, datasetID string, query ReadingsQuery) ([]models.Reading, error)
	GetDatasetReadingsCount(ctx context.Context, thingID, datasetID string, query ReadingsQuery) (int, error)
}

// Users is the upstream user-registry collaborator. Every call is made on
// behalf of a caller identified by its user id.
type Users interface {
	GetCurrentUser(ctx context.Context, userID string) (*models.User, error)
	GetUser(ctx context.Context, asUserID, targetID string) (*models.User, error)
	GetUsers(ctx context.Context, asUserID string) ([]models.User, error)
	CreateUser(ctx context.Context, asUserID, name string, role models.Role) (*models.NewUser, error)
	UpdateUserPassword(ctx context.Context, asUserID, password string) error
	ResetUserPassword(ctx context.Context, asUserID, targetID string) (string, error)
	UpdateUser(ctx context.Context, asUserID, targetID string, role models.Role) error
}
