// FilePath: internal/graph/validate_test.go
package graph

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digicatapult/wasp-api/internal/errors"
)

func validatedResolver(constraints ...Constraint) graphql.FieldResolveFn {
	return WithValidation(func(graphql.ResolveParams) (interface{}, error) {
		return "resolved", nil
	}, constraints...)
}

func TestMaxArrayLengthAcceptsWithinLimit(t *testing.T) {
	resolver := validatedResolver(MaxArrayLength("filter.types", 2))

	value, err := resolver(graphql.ResolveParams{Args: map[string]interface{}{
		"filter": map[string]interface{}{
			"types": []interface{}{"a", "b"},
		},
	}})
	require.NoError(t, err)
	assert.Equal(t, "resolved", value)
}

func TestMaxArrayLengthRejectsOversizedList(t *testing.T) {
	resolver := validatedResolver(MaxArrayLength("filter.types", 2))

	_, err := resolver(graphql.ResolveParams{Args: map[string]interface{}{
		"filter": map[string]interface{}{
			"types": []interface{}{"a", "b", "c"},
		},
	}})
	require.Error(t, err)
	assert.Equal(t, "Invalid array length for argument types. Supplied 3 items, maximum allowed is 2", err.Error())
	assert.True(t, errors.IsUserInput(err))
}

func TestMaxArrayLengthIgnoresAbsentArgument(t *testing.T) {
	resolver := validatedResolver(MaxArrayLength("filter.types", 2))

	_, err := resolver(graphql.ResolveParams{Args: map[string]interface{}{}})
	assert.NoError(t, err)

	_, err = resolver(graphql.ResolveParams{Args: map[string]interface{}{
		"filter": map[string]interface{}{"types": nil},
	}})
	assert.NoError(t, err)
}

func TestBoundedIntegerRejectsBelowMinimum(t *testing.T) {
	resolver := validatedResolver(BoundedInteger("filter.limit", 1, 100000))

	_, err := resolver(graphql.ResolveParams{Args: map[string]interface{}{
		"filter": map[string]interface{}{"limit": 0},
	}})
	require.Error(t, err)
	assert.Equal(t, "Invalid value for argument limit. 0 is less than 1", err.Error())
}

func TestBoundedIntegerRejectsAboveMaximum(t *testing.T) {
	resolver := validatedResolver(BoundedInteger("filter.limit", 1, 100000))

	_, err := resolver(graphql.ResolveParams{Args: map[string]interface{}{
		"filter": map[string]interface{}{"limit": 100001},
	}})
	require.Error(t, err)
	assert.Equal(t, "Invalid value for argument limit. 100001 is greater than 100000", err.Error())
}

func TestBoundedIntegerAcceptsBounds(t *testing.T) {
	resolver := validatedResolver(BoundedInteger("filter.limit", 1, 100000))

	for _, limit := range []int{1, 50, 100000} {
		_, err := resolver(graphql.ResolveParams{Args: map[string]interface{}{
			"filter": map[string]interface{}{"limit": limit},
		}})
		assert.NoError(t, err)
	}
}

func TestWithValidationChecksConstraintsInOrder(t *testing.T) {
	resolver := validatedResolver(
		MaxArrayLength("filter.types", 1),
		BoundedInteger("filter.limit", 1, 10),
	)

	_, err := resolver(graphql.ResolveParams{Args: map[string]interface{}{
		"filter": map[string]interface{}{
			"types": []interface{}{"a", "b"},
			"limit": 0,
		},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid array length")
}
