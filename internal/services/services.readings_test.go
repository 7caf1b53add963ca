// FilePath: internal/services/services.readings_test.go
package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digicatapult/wasp-api/internal/models"
)

func TestGetThingDatasetsAppliesFilterAsLogicalAnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": "d1", "type": "temperature", "label": "air_temperature"},
			{"id": "d2", "type": "temperature", "label": "soil_temperature"},
			{"id": "d3", "type": "humidity", "label": "air_temperature"},
		})
	}))
	defer server.Close()

	client := NewReadingsClient(server.URL)
	datasets, err := client.GetThingDatasets(context.Background(), "t1", &models.DatasetsFilter{
		Types:  []string{"temperature"},
		Labels: []string{"air_temperature"},
	})
	require.NoError(t, err)

	require.Len(t, datasets, 1)
	assert.Equal(t, "d1", datasets[0].ID)
}

func TestGetThingDatasetsMatchingIsCaseSensitive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": "d1", "type": "Temperature", "label": "x"},
		})
	}))
	defer server.Close()

	client := NewReadingsClient(server.URL)
	datasets, err := client.GetThingDatasets(context.Background(), "t1", &models.DatasetsFilter{
		Types: []string{"temperature"},
	})
	require.NoError(t, err)
	assert.Empty(t, datasets)
}

func TestGetThingDatasetsNilFilterReturnsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]interface{}{
			{"id": "d1", "type": "temperature", "label": "a"},
			{"id": "d2", "type": "humidity", "label": "b"},
		})
	}))
	defer server.Close()

	client := NewReadingsClient(server.URL)
	datasets, err := client.GetThingDatasets(context.Background(), "t1", nil)
	require.NoError(t, err)
	assert.Len(t, datasets, 2)
}

func TestGetDatasetReadingsPaginatesPastUpstreamPageCap(t *testing.T) {
	const upstreamPageCap = 100

	var mu sync.Mutex
	var queries []url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query())
		mu.Unlock()

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		if limit > upstreamPageCap {
			limit = upstreamPageCap
		}

		page := make([]map[string]interface{}, 0, limit)
		for i := 0; i < limit; i++ {
			page = append(page, map[string]interface{}{
				"timestamp": 1600000000000 + int64(offset+i),
				"value":     float64(offset + i),
			})
		}
		writeJSON(w, http.StatusOK, page)
	}))
	defer server.Close()

	client := NewReadingsClient(server.URL)
	readings, err := client.GetDatasetReadings(context.Background(), "t1", "d1", ReadingsQuery{
		Limit:           150,
		SortByTimestamp: "DESC",
	})
	require.NoError(t, err)

	// 150 rows assembled from a 100-capped upstream takes two fetches with
	// the offset advancing by the accumulated count
	require.Len(t, readings, 150)
	require.Len(t, queries, 2)
	assert.Equal(t, "150", queries[0].Get("limit"))
	assert.Equal(t, "0", queries[0].Get("offset"))
	assert.Equal(t, "50", queries[1].Get("limit"))
	assert.Equal(t, "100", queries[1].Get("offset"))
	assert.Equal(t, "DESC", queries[0].Get("sortByTimestamp"))
	assert.Equal(t, int64(1600000000000), readings[0].Timestamp)
	assert.Equal(t, int64(1600000000149), readings[149].Timestamp)
}

func TestGetDatasetReadingsStopsOnEmptyPage(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()

		if first {
			writeJSON(w, http.StatusOK, []map[string]interface{}{
				{"timestamp": 1600000000000, "value": 1.0},
			})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]interface{}{})
	}))
	defer server.Close()

	client := NewReadingsClient(server.URL)
	readings, err := client.GetDatasetReadings(context.Background(), "t1", "d1", ReadingsQuery{Limit: 100})
	require.NoError(t, err)

	assert.Len(t, readings, 1)
	assert.Equal(t, 2, calls)
}

func TestGetDatasetReadingsSendsTimeWindowAsRFC3339(t *testing.T) {
	var mu sync.Mutex
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		query = r.URL.Query()
		mu.Unlock()
		writeJSON(w, http.StatusOK, []map[string]interface{}{})
	}))
	defer server.Close()

	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	end := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()

	client := NewReadingsClient(server.URL)
	_, err := client.GetDatasetReadings(context.Background(), "t1", "d1", ReadingsQuery{
		Limit:          10,
		StartTimestamp: &start,
		EndTimestamp:   &end,
	})
	require.NoError(t, err)

	assert.Equal(t, "2021-01-01T00:00:00Z", query.Get("startDate"))
	assert.Equal(t, "2021-01-02T00:00:00Z", query.Get("endDate"))
}

func TestGetDatasetReadingsCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/thing/t1/dataset/d1/reading_count", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]int{"count": 42})
	}))
	defer server.Close()

	client := NewReadingsClient(server.URL)
	count, err := client.GetDatasetReadingsCount(context.Background(), "t1", "d1", ReadingsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestGetDatasetReadingsCountUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewReadingsClient(server.URL)
	_, err := client.GetDatasetReadingsCount(context.Background(), "t1", "d1", ReadingsQuery{})
	require.Error(t, err)

	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, svcErr.Code)
	assert.Equal(t, "Service Unavailable", svcErr.Message)
}
