// FilePath: api/resources/resources.go
package resources

import (
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/digicatapult/wasp-api/internal/graph"
)

// Resources holds all HTTP resource handlers
type Resources struct {
	GraphQL *GraphQLHandlers
}

// NewResources creates a new Resources instance
func NewResources(g *graph.Graph, schema graphql.Schema, maxQuerySize int64) *Resources {
	return &Resources{
		GraphQL: &GraphQLHandlers{
			graph:        g,
			schema:       schema,
			maxQuerySize: maxQuerySize,
		},
	}
}

// HealthCheck reports liveness; it sits outside identity resolution and
// request logging
func (r *Resources) HealthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
