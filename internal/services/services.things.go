// FilePath: internal/services/services.things.go
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	nuts "github.com/vaudience/go-nuts"

	"github.com/digicatapult/wasp-api/internal/models"
)

const thingsServiceName = "things"

// ThingsClient talks to the wasp thing service
type ThingsClient struct {
	client *resty.Client
}

// NewThingsClient creates a things client rooted at the service's versioned
// API prefix, e.g. http://wasp-thing-service:80/v1
func NewThingsClient(baseURL string) *ThingsClient {
	return &ThingsClient{
		client: resty.New().SetBaseURL(baseURL),
	}
}

// GetThings lists all thing summaries
func (t *ThingsClient) GetThings(ctx context.Context) ([]models.ThingSummary, error) {
	var things []models.ThingSummary
	resp, err := t.client.R().SetContext(ctx).SetResult(&things).Get("/thing")
	if err != nil {
		return nil, fmt.Errorf("error fetching things from things service: %w", err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[ThingsClient] Error fetching things. Error was (%d) %s", resp.StatusCode(), resp.Status())
		return nil, newServiceError(thingsServiceName, resp.StatusCode(), "")
	}
	return things, nil
}

// GetThing fetches a single thing and merges in its ingest configurations
func (t *ThingsClient) GetThing(ctx context.Context, id string) (*models.Thing, error) {
	nuts.L.Debugf("[ThingsClient] Getting thing %s from thing service", id)

	var thing models.Thing
	resp, err := t.client.R().SetContext(ctx).SetResult(&thing).Get("/thing/" + id)
	if err != nil {
		return nil, fmt.Errorf("error fetching thing %s from things service: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, newServiceError(thingsServiceName, http.StatusNotFound, fmt.Sprintf("Invalid thing %s", id))
	}
	if resp.IsError() {
		nuts.L.Warnf("[ThingsClient] Error fetching thing %s. Error was (%d) %s", id, resp.StatusCode(), resp.Status())
		return nil, newServiceError(thingsServiceName, resp.StatusCode(), "")
	}

	var ingests []models.IngestConfiguration
	resp, err = t.client.R().SetContext(ctx).SetResult(&ingests).Get("/thing/" + thing.ID + "/ingest")
	if err != nil {
		return nil, fmt.Errorf("error fetching ingests for thing %s: %w", id, err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[ThingsClient] Error fetching ingests for thing %s. Error was (%d) %s", id, resp.StatusCode(), resp.Status())
		return nil, newServiceError(thingsServiceName, resp.StatusCode(), "")
	}

	thing.Ingests = ingests
	return &thing, nil
}

// CreateThing registers a new thing then creates each ingest configuration
// sequentially. Ingest creation failure compensates by deleting the
// just-created thing; the deletion is best-effort and the original error is
// the one surfaced.
func (t *ThingsClient) CreateThing(ctx context.Context, input models.ThingInput) (*models.Thing, error) {
	metadata := input.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	var thing models.Thing
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"type": input.Type, "metadata": metadata}).
		SetResult(&thing).
		Post("/thing")
	if err != nil {
		return nil, fmt.Errorf("error creating thing with things service: %w", err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[ThingsClient] Error creating thing of type %s. Error was (%d) %s", input.Type, resp.StatusCode(), resp.Status())
		return nil, newServiceError(thingsServiceName, resp.StatusCode(), "")
	}

	for _, ingest := range input.Ingests {
		ingestID := ingest.IngestID
		if ingestID == "" {
			ingestID = thing.ID
		}
		resp, err := t.client.R().
			SetContext(ctx).
			SetBody(map[string]any{
				"ingest":        ingest.Ingest,
				"ingestId":      ingestID,
				"configuration": ingest.Configuration,
			}).
			Post("/thing/" + thing.ID + "/ingest")

		var ingestErr error
		switch {
		case err != nil:
			ingestErr = fmt.Errorf("error creating ingest for thing %s: %w", thing.ID, err)
		case resp.IsError():
			nuts.L.Warnf("[ThingsClient] Error creating ingest %s for thing %s. Error was (%d) %s", ingest.Ingest, thing.ID, resp.StatusCode(), resp.Status())
			ingestErr = newServiceError(thingsServiceName, resp.StatusCode(), "")
		}

		if ingestErr != nil {
			nuts.L.Warnf("[ThingsClient] Attempting to delete thing %s", thing.ID)
			if delErr := t.DeleteThing(ctx, thing.ID); delErr != nil {
				nuts.L.Warnf("[ThingsClient] Compensating delete of thing %s failed: %v", thing.ID, delErr)
			}
			return nil, ingestErr
		}
	}

	return &thing, nil
}

// UpdateThing replaces the mutable description of a thing
func (t *ThingsClient) UpdateThing(ctx context.Context, thing *models.Thing) error {
	resp, err := t.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"type": thing.Type, "metadata": thing.Metadata}).
		Put("/thing/" + thing.ID)
	if err != nil {
		return fmt.Errorf("error updating thing %s with things service: %w", thing.ID, err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[ThingsClient] Error updating thing %s. Error was (%d) %s", thing.ID, resp.StatusCode(), resp.Status())
		return newServiceError(thingsServiceName, resp.StatusCode(), "")
	}
	return nil
}

// DeleteThing removes a thing. Only used as the compensating action of
// CreateThing; this gateway never deletes things on behalf of callers.
func (t *ThingsClient) DeleteThing(ctx context.Context, id string) error {
	resp, err := t.client.R().SetContext(ctx).Delete("/thing/" + id)
	if err != nil {
		return fmt.Errorf("error deleting thing %s with things service: %w", id, err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[ThingsClient] Error deleting thing %s. Error was (%d) %s", id, resp.StatusCode(), resp.Status())
		return newServiceError(thingsServiceName, resp.StatusCode(), "")
	}
	return nil
}
