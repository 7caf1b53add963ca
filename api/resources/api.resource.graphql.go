// FilePath: api/resources/api.resource.graphql.go
package resources

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/graphql-go/graphql"
	nuts "github.com/vaudience/go-nuts"

	"github.com/digicatapult/wasp-api/api/middleware"
	"github.com/digicatapult/wasp-api/internal/graph"
)

// GraphQLHandlers executes GraphQL operations over POST bodies and GET
// query parameters
type GraphQLHandlers struct {
	graph        *graph.Graph
	schema       graphql.Schema
	maxQuerySize int64
}

// graphQLRequest is the POST body shape
type graphQLRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// graphQLGetRequest is the GET query-parameter shape; variables arrive as a
// JSON document in a single parameter
type graphQLGetRequest struct {
	Query         string `schema:"query"`
	OperationName string `schema:"operationName"`
	Variables     string `schema:"variables"`
}

var getDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// Post handles POST /graphql. The body is capped before decoding; an
// oversized body yields 413 rather than a GraphQL error.
func (h *GraphQLHandlers) Post(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxQuerySize)

	var request graphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request entity too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.execute(w, r, request)
}

// Get handles GET /graphql, the URL-parameter form of the same operation
func (h *GraphQLHandlers) Get(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	var params graphQLGetRequest
	if err := getDecoder.Decode(&params, r.Form); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	request := graphQLRequest{
		Query:         params.Query,
		OperationName: params.OperationName,
	}
	if params.Variables != "" {
		if err := json.Unmarshal([]byte(params.Variables), &request.Variables); err != nil {
			writeJSONError(w, http.StatusBadRequest, "variables must be a JSON document")
			return
		}
	}

	h.execute(w, r, request)
}

func (h *GraphQLHandlers) execute(w http.ResponseWriter, r *http.Request, request graphQLRequest) {
	identity := middleware.IdentityFrom(r.Context())
	requestContext := h.graph.NewRequestContext(identity.User)
	ctx := graph.WithRequestContext(r.Context(), requestContext)

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  request.Query,
		OperationName:  request.OperationName,
		VariableValues: request.Variables,
		Context:        ctx,
	})

	if len(result.Errors) > 0 {
		nuts.L.Debugf("[GraphQL] Operation %q finished with %d error(s)", request.OperationName, len(result.Errors))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		nuts.L.Errorf("[GraphQL] Error writing response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": message},
	})
}
