// FilePath: internal/models/models.dataset.go
package models

// Dataset is a time series classification as returned by the readings service
type Dataset struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// ThingDataset is a dataset joined with its parent thing and total reading
// count. TotalReadingsCount acts as a change fingerprint for cached nested
// fields: when readings arrive upstream the count moves and stale cache
// entries stop being addressed.
type ThingDataset struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Label              string `json:"label"`
	ThingID            string `json:"thingId"`
	TotalReadingsCount int    `json:"totalReadingsCount"`
}

// Reading is a single (timestamp, value) measurement within a dataset.
// Timestamps travel as epoch milliseconds on the upstream wire.
type Reading struct {
	Timestamp int64    `json:"timestamp"`
	Value     *float64 `json:"value"`
	ThingID   string   `json:"thingId,omitempty"`
}
