// FilePath: api/api.router.go
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/graphql-go/graphql"

	"github.com/digicatapult/wasp-api/api/middleware"
	"github.com/digicatapult/wasp-api/api/resources"
	"github.com/digicatapult/wasp-api/internal/graph"
	"github.com/digicatapult/wasp-api/internal/services"
)

type Router struct {
	router    *mux.Router
	identity  *middleware.IdentityMiddleware
	resources *resources.Resources
}

func NewRouter(g *graph.Graph, schema graphql.Schema, users services.Users, maxQuerySize int64) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		identity:  middleware.NewIdentityMiddleware(users),
		resources: resources.NewResources(g, schema, maxQuerySize),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	// Health stays outside identity resolution
	r.router.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)

	gql := r.router.PathPrefix("/graphql").Subrouter()
	gql.Use(r.identity.Resolve)
	gql.HandleFunc("", r.resources.GraphQL.Post).Methods(http.MethodPost)
	gql.HandleFunc("", r.resources.GraphQL.Get).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
