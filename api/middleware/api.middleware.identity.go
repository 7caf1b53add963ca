// FilePath: api/middleware/api.middleware.identity.go
package middleware

import (
	"context"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/digicatapult/wasp-api/internal/models"
	"github.com/digicatapult/wasp-api/internal/services"
)

const userIDHeader = "user-id"

// IdentityOutcome classifies how a caller identity lookup concluded
type IdentityOutcome string

const (
	// IdentityResolved means the header named a user the users service knows
	IdentityResolved IdentityOutcome = "resolved"
	// IdentityMissingHeader means no user-id header was supplied
	IdentityMissingHeader IdentityOutcome = "missing-header"
	// IdentityRejected means the users service answered but refused the id
	IdentityRejected IdentityOutcome = "rejected"
	// IdentityUnreachable means the users service could not be reached
	IdentityUnreachable IdentityOutcome = "unreachable"
)

// Identity is the result of a lookup. User is nil for every outcome except
// IdentityResolved; requests always proceed, anonymously when unresolved.
type Identity struct {
	User    *models.User
	Outcome IdentityOutcome
}

type identityContextKey struct{}

// IdentityMiddleware resolves the user-id header against the users service
type IdentityMiddleware struct {
	users services.Users
}

func NewIdentityMiddleware(users services.Users) *IdentityMiddleware {
	return &IdentityMiddleware{users: users}
}

// Resolve attaches the caller identity to the request context. Lookup
// failures never reject the request; the caller simply stays anonymous and
// authorization happens per-field during execution.
func (m *IdentityMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := m.lookup(r)
		switch identity.Outcome {
		case IdentityRejected:
			nuts.L.Debugf("[Identity] users service rejected user-id %q, continuing anonymously", r.Header.Get(userIDHeader))
		case IdentityUnreachable:
			nuts.L.Warnf("[Identity] users service unreachable, continuing anonymously")
		}

		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *IdentityMiddleware) lookup(r *http.Request) Identity {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		return Identity{Outcome: IdentityMissingHeader}
	}

	user, err := m.users.GetCurrentUser(r.Context(), userID)
	if err != nil {
		if _, ok := services.AsServiceError(err); ok {
			return Identity{Outcome: IdentityRejected}
		}
		return Identity{Outcome: IdentityUnreachable}
	}
	return Identity{User: user, Outcome: IdentityResolved}
}

// IdentityFrom extracts the caller identity from ctx; a zero Identity (nil
// user) when the middleware did not run
func IdentityFrom(ctx context.Context) Identity {
	identity, _ := ctx.Value(identityContextKey{}).(Identity)
	return identity
}
