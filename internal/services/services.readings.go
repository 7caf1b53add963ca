// FilePath: internal/services/services.readings.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	nuts "github.com/vaudience/go-nuts"

	"github.com/digicatapult/wasp-api/internal/models"
)

const readingsServiceName = "readings"

// maxReadingPages bounds the pagination loop in GetDatasetReadings in case
// the upstream keeps returning rows past the requested window
const maxReadingPages = 100

// ReadingsClient talks to the wasp reading service
type ReadingsClient struct {
	client *resty.Client
}

// NewReadingsClient creates a readings client rooted at the service's
// versioned API prefix
func NewReadingsClient(baseURL string) *ReadingsClient {
	return &ReadingsClient{
		client: resty.New().SetBaseURL(baseURL),
	}
}

// GetThingDatasets lists the datasets of a thing. Type and label predicates
// are applied client-side as the upstream does not support them; both must
// match and matching is case-sensitive exact.
func (r *ReadingsClient) GetThingDatasets(ctx context.Context, thingID string, filter *models.DatasetsFilter) ([]models.Dataset, error) {
	nuts.L.Debugf("[ReadingsClient] Fetching datasets for %s", thingID)

	var datasets []models.Dataset
	resp, err := r.client.R().SetContext(ctx).SetResult(&datasets).Get("/thing/" + thingID + "/dataset")
	if err != nil {
		return nil, fmt.Errorf("error fetching datasets from readings service: %w", err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[ReadingsClient] Error fetching datasets for %s. Error was (%d) %s", thingID, resp.StatusCode(), resp.Status())
		return nil, newServiceError(readingsServiceName, resp.StatusCode(), "")
	}

	if filter == nil {
		return datasets, nil
	}

	if filter.Types != nil {
		typeSet := make(map[string]struct{}, len(filter.Types))
		for _, t := range filter.Types {
			typeSet[t] = struct{}{}
		}
		filtered := datasets[:0]
		for _, ds := range datasets {
			if _, ok := typeSet[ds.Type]; ok {
				filtered = append(filtered, ds)
			}
		}
		datasets = filtered
	}

	if filter.Labels != nil {
		labelSet := make(map[string]struct{}, len(filter.Labels))
		for _, l := range filter.Labels {
			labelSet[l] = struct{}{}
		}
		filtered := datasets[:0]
		for _, ds := range datasets {
			if _, ok := labelSet[ds.Label]; ok {
				filtered = append(filtered, ds)
			}
		}
		datasets = filtered
	}

	return datasets, nil
}

// GetDatasetReadings fetches up to query.Limit readings, assembling the
// result over repeated paginated fetches. The upstream caps its page size
// so the loop advances offset by the accumulated row count until the limit
// is reached, a page comes back empty, or the safety cap trips.
func (r *ReadingsClient) GetDatasetReadings(ctx context.Context, thingID, datasetID string, query ReadingsQuery) ([]models.Reading, error) {
	path := "/thing/" + thingID + "/dataset/" + datasetID + "/reading"
	readings := []models.Reading{}

	hasMore := true
	for offset, safety := 0, 0; hasMore && len(readings) < query.Limit && safety < maxReadingPages; safety++ {
		params := readingsSearchParams(query)
		params["limit"] = strconv.Itoa(query.Limit - len(readings))
		params["offset"] = strconv.Itoa(offset)

		nuts.L.Debugf("[ReadingsClient] Fetching readings using GET %s offset=%d", path, offset)

		var page []models.Reading
		resp, err := r.client.R().SetContext(ctx).SetQueryParams(params).SetResult(&page).Get(path)
		if err != nil {
			return nil, fmt.Errorf("error fetching readings from readings service: %w", err)
		}
		if resp.IsError() {
			nuts.L.Warnf("[ReadingsClient] Error fetching readings for %s/%s. Error was (%d) %s", thingID, datasetID, resp.StatusCode(), resp.Status())
			return nil, newServiceError(readingsServiceName, resp.StatusCode(), "")
		}

		readings = append(readings, page...)
		hasMore = len(page) != 0
		offset = len(readings)
	}

	return readings, nil
}

// GetDatasetReadingsCount fetches the number of readings matching the query
func (r *ReadingsClient) GetDatasetReadingsCount(ctx context.Context, thingID, datasetID string, query ReadingsQuery) (int, error) {
	path := "/thing/" + thingID + "/dataset/" + datasetID + "/reading_count"

	var result struct {
		Count int `json:"count"`
	}
	resp, err := r.client.R().SetContext(ctx).SetQueryParams(readingsSearchParams(query)).SetResult(&result).Get(path)
	if err != nil {
		return 0, fmt.Errorf("error fetching reading count from readings service: %w", err)
	}
	if resp.IsError() {
		nuts.L.Warnf("[ReadingsClient] Error fetching reading count for %s/%s. Error was (%d) %s", thingID, datasetID, resp.StatusCode(), resp.Status())
		return 0, newServiceError(readingsServiceName, resp.StatusCode(), "")
	}

	return result.Count, nil
}

func readingsSearchParams(query ReadingsQuery) map[string]string {
	params := map[string]string{}
	if query.StartTimestamp != nil {
		params["startDate"] = time.UnixMilli(*query.StartTimestamp).UTC().Format(time.RFC3339Nano)
	}
	if query.EndTimestamp != nil {
		params["endDate"] = time.UnixMilli(*query.EndTimestamp).UTC().Format(time.RFC3339Nano)
	}
	if query.SortByTimestamp != "" {
		params["sortByTimestamp"] = query.SortByTimestamp
	}
	return params
}
