// FilePath: internal/models/api.models.filters.go
package models

import "time"

// DatasetsFilter restricts the datasets returned for a thing. Both
// predicates must match (logical AND); matching is case-sensitive exact.
type DatasetsFilter struct {
	Types  []string `mapstructure:"types"`
	Labels []string `mapstructure:"labels"`
}

// ReadingsFilter restricts the readings (or reading count) returned for a
// dataset. Start is exclusive, End inclusive, matching the readings service.
type ReadingsFilter struct {
	Limit          int        `mapstructure:"limit"`
	StartTimestamp *time.Time `mapstructure:"startTimestamp"`
	EndTimestamp   *time.Time `mapstructure:"endTimestamp"`
}
