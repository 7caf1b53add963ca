// FilePath: internal/loader/things.go
package loader

import (
	"context"
	"sync"

	nuts "github.com/vaudience/go-nuts"

	"github.com/digicatapult/wasp-api/internal/models"
	"github.com/digicatapult/wasp-api/internal/services"
)

// ThingLoader batches per-id thing lookups within one request
type ThingLoader = Loader[string, *models.Thing]

// NewThingLoader builds a request-scoped loader over the things service. The
// upstream exposes no bulk endpoint, so the batch fans out one fetch per id
// and catches per-id failures into their slots so sibling lookups survive.
func NewThingLoader(things services.Things, opts ...Option) *ThingLoader {
	return New(func(ctx context.Context, ids []string) []Result[*models.Thing] {
		results := make([]Result[*models.Thing], len(ids))
		var wg sync.WaitGroup
		for i, id := range ids {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				nuts.L.Debugf("[ThingLoader] Loading thing %s", id)
				thing, err := things.GetThing(ctx, id)
				results[i] = Result[*models.Thing]{Value: thing, Err: err}
			}(i, id)
		}
		wg.Wait()
		return results
	}, opts...)
}
