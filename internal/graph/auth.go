// FilePath: internal/graph/auth.go
package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/digicatapult/wasp-api/internal/errors"
	"github.com/digicatapult/wasp-api/internal/models"
)

// typeResolverName is the reserved type-resolution resolver that must never
// receive an authorization wrapper
const typeResolverName = "__resolveType"

// Resolver is a resolver-map entry. The override flag marks resolvers that
// declare their own authorization policy so the map-wide default leaves them
// untouched.
type Resolver struct {
	fn       graphql.FieldResolveFn
	override bool
}

// Plain wraps a resolver function with no declared policy; a map-wide
// default will apply to it
func Plain(fn graphql.FieldResolveFn) Resolver {
	return Resolver{fn: fn}
}

// ResolverMap maps GraphQL type name to field name to resolver
type ResolverMap map[string]map[string]Resolver

// Policy decorates a resolver function with an authorization check
type Policy func(fn graphql.FieldResolveFn) Resolver

// AsRole builds a policy requiring the caller's role to be one of validRoles.
// The sentinel RoleUnauthenticated disables the check entirely. Decorated
// resolvers are override-tagged so a map-wide default will not re-wrap them.
func AsRole(validRoles ...models.Role) Policy {
	roleNames := make([]string, len(validRoles))
	for i, role := range validRoles {
		roleNames[i] = string(role)
	}

	return func(fn graphql.FieldResolveFn) Resolver {
		return Resolver{
			override: true,
			fn: func(p graphql.ResolveParams) (interface{}, error) {
				if !containsRole(validRoles, models.RoleUnauthenticated) {
					user := currentUser(p.Context)
					if user == nil {
						return nil, errors.NewAuthInvalidError()
					}
					if !containsRole(validRoles, user.Role) {
						return nil, errors.NewInsufficientPrivilegesError(roleNames, string(user.Role))
					}
				}
				return fn(p)
			},
		}
	}
}

// AsUnauthenticated allows any caller, authenticated or not
var AsUnauthenticated = AsRole(models.RoleUnauthenticated)

// AsUserOrAdmin allows any active user
var AsUserOrAdmin = AsRole(models.RoleAdmin, models.RoleUser)

// AsAdmin allows administrators only
var AsAdmin = AsRole(models.RoleAdmin)

// SetResolverDefault applies a default policy to every resolver of every
// type in the map, skipping override-tagged resolvers and the reserved
// type-resolution name. The output resolvers are override-tagged, so
// applying a default twice wraps each resolver at most once.
func SetResolverDefault(resolvers ResolverMap) func(Policy) ResolverMap {
	return func(defaultPolicy Policy) ResolverMap {
		transformed := make(ResolverMap, len(resolvers))
		for typeName, fields := range resolvers {
			transformedFields := make(map[string]Resolver, len(fields))
			for fieldName, resolver := range fields {
				if !resolver.override && fieldName != typeResolverName {
					transformedFields[fieldName] = defaultPolicy(resolver.fn)
				} else {
					transformedFields[fieldName] = resolver
				}
			}
			transformed[typeName] = transformedFields
		}
		return transformed
	}
}

func containsRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
