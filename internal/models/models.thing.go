// FilePath: internal/models/models.thing.go
package models

// ThingSummary is the listing projection returned by the things service
type ThingSummary struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Metadata map[string]any `json:"metadata"`
}

// Thing is the full thing record including its ingest configurations
type Thing struct {
	ID       string                `json:"id"`
	Type     string                `json:"type"`
	Metadata map[string]any        `json:"metadata"`
	Ingests  []IngestConfiguration `json:"ingests"`
}

// IngestConfiguration describes how a thing sends data via an ingest channel
type IngestConfiguration struct {
	Ingest        string `json:"ingest"`
	IngestID      string `json:"ingestId"`
	Configuration any    `json:"configuration"`
}

// ThingInput describes a thing to be created
type ThingInput struct {
	Type     string         `mapstructure:"type"`
	Metadata map[string]any `mapstructure:"metadata"`
	Ingests  []IngestConfigurationInput `mapstructure:"ingests"`
}

// IngestConfigurationInput describes an ingest configuration to be created.
// IngestID defaults to the thing id when empty.
type IngestConfigurationInput struct {
	Ingest        string `mapstructure:"ingest"`
	IngestID      string `mapstructure:"ingestId"`
	Configuration any    `mapstructure:"configuration"`
}
