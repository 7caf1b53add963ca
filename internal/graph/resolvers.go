// FilePath: internal/graph/resolvers.go
package graph

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/mitchellh/mapstructure"

	"github.com/digicatapult/wasp-api/internal/cache"
	"github.com/digicatapult/wasp-api/internal/errors"
	"github.com/digicatapult/wasp-api/internal/models"
	"github.com/digicatapult/wasp-api/internal/services"
)

const (
	// statusCacheTTL bounds how long a computed thing status is served from
	// cache
	statusCacheTTL = 30 * time.Second

	// defaultReadingsLimit applies when a readings filter omits limit
	defaultReadingsLimit = 100000

	// maxFilterArrayLength caps the types/labels predicates of a datasets
	// filter
	maxFilterArrayLength = 10
)

// Graph stitches the upstream collaborators, the per-request thing loader
// and the shared field cache into the resolver map the schema executes
type Graph struct {
	things     services.Things
	readings   services.Readings
	users      services.Users
	store      cache.Store
	defaultTTL time.Duration
}

// New creates a Graph over the given collaborators
func New(things services.Things, readings services.Readings, users services.Users, store cache.Store, defaultTTL time.Duration) *Graph {
	return &Graph{
		things:     things,
		readings:   readings,
		users:      users,
		store:      store,
		defaultTTL: defaultTTL,
	}
}

// resolvers builds the untransformed resolver map. Schema construction
// applies the map-wide default policy before wiring fields.
func (g *Graph) resolvers() ResolverMap {
	return ResolverMap{
		"Query": {
			"things": Plain(g.queryThings),
			"thing":  Plain(g.queryThing),
			"user":   Plain(g.queryUser),
			"users":  AsAdmin(g.queryUsers),
		},
		"Thing": {
			"uuid":    Plain(thingUUID),
			"ingests": Plain(thingIngests),
			"datasets": Plain(WithValidation(g.thingDatasets,
				MaxArrayLength("filter.types", maxFilterArrayLength),
				MaxArrayLength("filter.labels", maxFilterArrayLength),
			)),
			"status": Plain(g.thingStatus()),
		},
		"Reading": {
			"thing": Plain(g.parentThing),
		},
		"ThingDataset": {
			"thing": Plain(g.parentThing),
			"readings": Plain(WithValidation(g.datasetReadings(),
				BoundedInteger("filter.limit", 1, defaultReadingsLimit),
			)),
			"count": Plain(WithValidation(g.datasetCount(),
				BoundedInteger("filter.limit", 1, defaultReadingsLimit),
			)),
		},
		"User":    g.userResolvers(),
		"NewUser": g.userResolvers(),
		"Mutation": {
			"createThing":        Plain(g.createThing),
			"updateThing":        Plain(g.updateThing),
			"createUser":         AsAdmin(g.createUser),
			"updateUserPassword": Plain(g.updateUserPassword),
			"resetUserPassword":  AsAdmin(g.resetUserPassword),
			"updateUserType":     AsAdmin(g.updateUserType),
		},
	}
}

// Query

func (g *Graph) queryThings(p graphql.ResolveParams) (interface{}, error) {
	rc := RequestContextFrom(p.Context)
	summaries, err := g.things.GetThings(p.Context)
	if err != nil {
		return nil, translateUpstreamError(err)
	}

	// re-resolve each id through the loader so this query shares the same
	// dedup path as Query.thing and nested Thing fields
	ids := make([]string, len(summaries))
	for i, summary := range summaries {
		ids[i] = summary.ID
	}
	things, err := rc.Things.LoadAll(p.Context, ids)
	if err != nil {
		return nil, translateUpstreamError(err)
	}
	return things, nil
}

func (g *Graph) queryThing(p graphql.ResolveParams) (interface{}, error) {
	rc := RequestContextFrom(p.Context)
	uuid, _ := p.Args["uuid"].(string)
	thing, err := rc.Things.Load(p.Context, uuid)
	if err != nil {
		return nil, translateUpstreamError(err)
	}
	return thing, nil
}

func (g *Graph) queryUser(p graphql.ResolveParams) (interface{}, error) {
	return currentUser(p.Context), nil
}

func (g *Graph) queryUsers(p graphql.ResolveParams) (interface{}, error) {
	user := currentUser(p.Context)
	users, err := g.users.GetUsers(p.Context, user.ID)
	if err != nil {
		return nil, translateUpstreamError(err)
	}
	return users, nil
}

// Thing

func thingUUID(p graphql.ResolveParams) (interface{}, error) {
	thing, ok := p.Source.(*models.Thing)
	if !ok {
		return nil, nil
	}
	return thing.ID, nil
}

func thingIngests(p graphql.ResolveParams) (interface{}, error) {
	thing, ok := p.Source.(*models.Thing)
	if !ok {
		return nil, nil
	}
	if thing.Ingests == nil {
		return []models.IngestConfiguration{}, nil
	}
	return thing.Ingests, nil
}

func (g *Graph) thingDatasets(p graphql.ResolveParams) (interface{}, error) {
	thing, ok := p.Source.(*models.Thing)
	if !ok {
		return nil, nil
	}

	filter, err := decodeDatasetsFilter(p.Args)
	if err != nil {
		return nil, err
	}

	datasets, err := g.readings.GetThingDatasets(p.Context, thing.ID, filter)
	if err != nil {
		return nil, translateUpstreamError(err)
	}

	result := make([]models.ThingDataset, len(datasets))
	for i, dataset := range datasets {
		count, err := g.readings.GetDatasetReadingsCount(p.Context, thing.ID, dataset.ID, services.ReadingsQuery{})
		if err != nil {
			return nil, translateUpstreamError(err)
		}
		result[i] = models.ThingDataset{
			ID:                 dataset.ID,
			Type:               dataset.Type,
			Label:              dataset.Label,
			ThingID:            thing.ID,
			TotalReadingsCount: count,
		}
	}
	return result, nil
}

// thingStatus resolves the connectivity status of a thing through the field
// cache. The key items are empty, so within the ttl window all things share
// a single cached status entry; the resolve closure still reads the real
// parent, so only cache hits cross things.
func (g *Graph) thingStatus() graphql.FieldResolveFn {
	return cache.WithCaching(g.store, g.defaultTTL, cache.CachedResolverConfig[string]{
		Namespace:     "THING_STATUS",
		TTL:           statusCacheTTL,
		CacheKeyItems: func(graphql.ResolveParams) []string { return nil },
		Resolve: func(p graphql.ResolveParams) (string, error) {
			thing, ok := p.Source.(*models.Thing)
			if !ok {
				return "", errors.NewInternalError("status resolved without a thing parent", nil)
			}

			datasets, err := g.readings.GetThingDatasets(p.Context, thing.ID, nil)
			if err != nil {
				return "", translateUpstreamError(err)
			}

			for _, dataset := range datasets {
				count, err := g.readings.GetDatasetReadingsCount(p.Context, thing.ID, dataset.ID, services.ReadingsQuery{})
				if err != nil {
					return "", translateUpstreamError(err)
				}
				if count > 0 {
					return "online", nil
				}
			}
			return "neverConnected", nil
		},
	})
}

// parentThing resolves the Thing owning a dataset or reading via the
// request's loader
func (g *Graph) parentThing(p graphql.ResolveParams) (interface{}, error) {
	rc := RequestContextFrom(p.Context)

	var thingID string
	switch parent := p.Source.(type) {
	case models.ThingDataset:
		thingID = parent.ThingID
	case models.Reading:
		thingID = parent.ThingID
	default:
		return nil, nil
	}

	thing, err := rc.Things.Load(p.Context, thingID)
	if err != nil {
		return nil, translateUpstreamError(err)
	}
	return thing, nil
}

// ThingDataset

func (g *Graph) datasetReadings() graphql.FieldResolveFn {
	return cache.WithCaching(g.store, g.defaultTTL, cache.CachedResolverConfig[[]models.Reading]{
		Namespace: "DATASET_READINGS",
		CacheKeyItems: func(p graphql.ResolveParams) []string {
			dataset, _ := p.Source.(models.ThingDataset)
			filter, _ := decodeReadingsFilter(p.Args)
			return []string{
				dataset.ID,
				strconv.Itoa(filter.Limit),
				millisItem(filter.StartTimestamp),
				millisItem(filter.EndTimestamp),
				strconv.Itoa(dataset.TotalReadingsCount),
			}
		},
		Resolve: func(p graphql.ResolveParams) ([]models.Reading, error) {
			dataset, ok := p.Source.(models.ThingDataset)
			if !ok {
				return nil, errors.NewInternalError("readings resolved without a dataset parent", nil)
			}

			filter, err := decodeReadingsFilter(p.Args)
			if err != nil {
				return nil, err
			}

			readings, err := g.readings.GetDatasetReadings(p.Context, dataset.ThingID, dataset.ID, services.ReadingsQuery{
				Limit:           filter.Limit,
				StartTimestamp:  millisArg(filter.StartTimestamp),
				EndTimestamp:    millisArg(filter.EndTimestamp),
				SortByTimestamp: "DESC",
			})
			if err != nil {
				return nil, translateUpstreamError(err)
			}

			for i := range readings {
				readings[i].ThingID = dataset.ThingID
			}
			return readings, nil
		},
	})
}

func (g *Graph) datasetCount() graphql.FieldResolveFn {
	return cache.WithCaching(g.store, g.defaultTTL, cache.CachedResolverConfig[int]{
		Namespace: "DATASET_READINGS_COUNT",
		CacheKeyItems: func(p graphql.ResolveParams) []string {
			dataset, _ := p.Source.(models.ThingDataset)
			filter, _ := decodeReadingsFilter(p.Args)

			fingerprint := ""
			if dataset.TotalReadingsCount != 0 {
				fingerprint = strconv.Itoa(dataset.TotalReadingsCount)
			}
			return []string{
				dataset.ID,
				millisItem(filter.StartTimestamp),
				millisItem(filter.EndTimestamp),
				fingerprint,
			}
		},
		Resolve: func(p graphql.ResolveParams) (int, error) {
			dataset, ok := p.Source.(models.ThingDataset)
			if !ok {
				return 0, errors.NewInternalError("count resolved without a dataset parent", nil)
			}

			filter, err := decodeReadingsFilter(p.Args)
			if err != nil {
				return 0, err
			}

			count, err := g.readings.GetDatasetReadingsCount(p.Context, dataset.ThingID, dataset.ID, services.ReadingsQuery{
				StartTimestamp:  millisArg(filter.StartTimestamp),
				EndTimestamp:    millisArg(filter.EndTimestamp),
				SortByTimestamp: "DESC",
			})
			if err != nil {
				return 0, translateUpstreamError(err)
			}
			if count < 0 {
				count = 0
			}
			return count, nil
		},
	})
}

// User / NewUser

func (g *Graph) userResolvers() map[string]Resolver {
	return map[string]Resolver{
		"username": Plain(func(p graphql.ResolveParams) (interface{}, error) {
			user, ok := userRecord(p.Source)
			if !ok {
				return nil, nil
			}
			return user.Name, nil
		}),
		"type": Plain(func(p graphql.ResolveParams) (interface{}, error) {
			user, ok := userRecord(p.Source)
			if !ok {
				return nil, nil
			}
			return string(user.Role), nil
		}),
		"createdAt": Plain(func(p graphql.ResolveParams) (interface{}, error) {
			user, ok := userRecord(p.Source)
			if !ok {
				return nil, nil
			}
			return user.CreatedAt, nil
		}),
		"createdBy": AsAdmin(func(p graphql.ResolveParams) (interface{}, error) {
			user, ok := userRecord(p.Source)
			if !ok {
				return nil, nil
			}
			caller := currentUser(p.Context)
			createdBy, err := g.users.GetUser(p.Context, caller.ID, user.CreatedBy)
			if err != nil {
				return nil, translateUpstreamError(err)
			}
			return createdBy, nil
		}),
	}
}

// Mutation

func (g *Graph) createThing(p graphql.ResolveParams) (interface{}, error) {
	rc := RequestContextFrom(p.Context)

	var input models.ThingInput
	if err := decodeArg(p.Args["thing"], &input); err != nil {
		return nil, err
	}

	thing, err := g.things.CreateThing(p.Context, input)
	if err != nil {
		return nil, translateUpstreamError(err)
	}

	created, err := rc.Things.Load(p.Context, thing.ID)
	if err != nil {
		return nil, translateUpstreamError(err)
	}
	return created, nil
}

func (g *Graph) updateThing(p graphql.ResolveParams) (interface{}, error) {
	rc := RequestContextFrom(p.Context)
	uuid, _ := p.Args["uuid"].(string)

	current, err := rc.Things.Load(p.Context, uuid)
	if err != nil {
		return nil, translateUpstreamError(err)
	}

	updated := *current
	if thingArg, ok := p.Args["thing"].(map[string]interface{}); ok {
		metadata, _ := thingArg["metadata"].(map[string]interface{})
		updated.Metadata = metadata
	}

	if err := g.things.UpdateThing(p.Context, &updated); err != nil {
		return nil, translateUpstreamError(err)
	}
	return true, nil
}

func (g *Graph) createUser(p graphql.ResolveParams) (interface{}, error) {
	name, _ := p.Args["username"].(string)
	isAdmin, _ := p.Args["isAdmin"].(bool)

	role := models.RoleUser
	if isAdmin {
		role = models.RoleAdmin
	}

	caller := currentUser(p.Context)
	user, err := g.users.CreateUser(p.Context, caller.ID, name, role)
	if err != nil {
		if svcErr, ok := services.AsServiceError(err); ok && svcErr.Code == http.StatusConflict {
			return nil, errors.NewUserInputError("Username exists")
		}
		return nil, translateUpstreamError(err)
	}
	return user, nil
}

func (g *Graph) updateUserPassword(p graphql.ResolveParams) (interface{}, error) {
	password, _ := p.Args["password"].(string)

	caller := currentUser(p.Context)
	if err := g.users.UpdateUserPassword(p.Context, caller.ID, password); err != nil {
		if svcErr, ok := services.AsServiceError(err); ok && svcErr.Code == http.StatusBadRequest {
			return nil, errors.NewUserInputError(svcErr.Message)
		}
		return nil, translateUpstreamError(err)
	}
	return true, nil
}

func (g *Graph) resetUserPassword(p graphql.ResolveParams) (interface{}, error) {
	username, _ := p.Args["username"].(string)

	caller := currentUser(p.Context)
	target, err := g.findUserByName(p, caller.ID, username)
	if err != nil {
		return nil, err
	}

	password, err := g.users.ResetUserPassword(p.Context, caller.ID, target.ID)
	if err != nil {
		return nil, translateUpstreamError(err)
	}
	return password, nil
}

func (g *Graph) updateUserType(p graphql.ResolveParams) (interface{}, error) {
	username, _ := p.Args["username"].(string)
	userType, _ := p.Args["type"].(string)

	caller := currentUser(p.Context)
	target, err := g.findUserByName(p, caller.ID, username)
	if err != nil {
		return nil, err
	}

	if err := g.users.UpdateUser(p.Context, caller.ID, target.ID, models.Role(userType)); err != nil {
		return nil, translateUpstreamError(err)
	}
	return true, nil
}

// findUserByName resolves a username to its user record by scanning the full
// user list; the users service has no lookup-by-name endpoint
func (g *Graph) findUserByName(p graphql.ResolveParams, asUserID, username string) (*models.User, error) {
	users, err := g.users.GetUsers(p.Context, asUserID)
	if err != nil {
		return nil, translateUpstreamError(err)
	}
	for i := range users {
		if users[i].Name == username {
			return &users[i], nil
		}
	}
	return nil, errors.NewUserInputError(fmt.Sprintf("User %s does not exist", username))
}

// helpers

func userRecord(source interface{}) (models.User, bool) {
	switch u := source.(type) {
	case models.User:
		return u, true
	case *models.User:
		if u != nil {
			return *u, true
		}
	case models.NewUser:
		return u.User, true
	case *models.NewUser:
		if u != nil {
			return u.User, true
		}
	}
	return models.User{}, false
}

// translateUpstreamError maps collaborator failures onto the GraphQL error
// taxonomy: 404s become field-level not-found errors carrying the upstream
// message, anything else an opaque upstream error.
func translateUpstreamError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*errors.GraphQLError); ok {
		return err
	}
	if svcErr, ok := services.AsServiceError(err); ok {
		if svcErr.Code == http.StatusNotFound {
			return errors.NewNotFoundError(svcErr.Message, err)
		}
		return errors.NewUpstreamError(svcErr.Message, err)
	}
	return err
}

func decodeDatasetsFilter(args map[string]interface{}) (*models.DatasetsFilter, error) {
	raw, ok := args["filter"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	var filter models.DatasetsFilter
	if err := decodeArg(raw, &filter); err != nil {
		return nil, err
	}
	return &filter, nil
}

func decodeReadingsFilter(args map[string]interface{}) (models.ReadingsFilter, error) {
	filter := models.ReadingsFilter{Limit: defaultReadingsLimit}
	raw, ok := args["filter"].(map[string]interface{})
	if !ok {
		return filter, nil
	}
	if err := decodeArg(raw, &filter); err != nil {
		return filter, err
	}
	if filter.Limit == 0 {
		filter.Limit = defaultReadingsLimit
	}
	return filter, nil
}

func decodeArg(raw interface{}, target interface{}) error {
	if raw == nil {
		return nil
	}
	if err := mapstructure.Decode(raw, target); err != nil {
		return errors.NewInternalError("error decoding arguments", err)
	}
	return nil
}

func millisArg(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	millis := t.UnixMilli()
	return &millis
}

func millisItem(t *time.Time) string {
	if t == nil {
		return ""
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}
