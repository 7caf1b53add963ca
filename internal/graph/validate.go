// FilePath: internal/graph/validate.go
package graph

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/digicatapult/wasp-api/internal/errors"
)

// Constraint validates one argument of a field before its resolver runs
type Constraint interface {
	Validate(args map[string]interface{}) error
}

// WithValidation wraps a resolver so that every constraint is checked
// against the coerced arguments first. Validation failures surface as
// BAD_USER_INPUT field errors.
func WithValidation(fn graphql.FieldResolveFn, constraints ...Constraint) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		for _, constraint := range constraints {
			if err := constraint.Validate(p.Args); err != nil {
				return nil, err
			}
		}
		return fn(p)
	}
}

// MaxArrayLength constrains a list argument to at most max elements. Path
// addresses the argument through nested input objects, e.g. "filter.types";
// the error names the final segment.
func MaxArrayLength(path string, max int) Constraint {
	segments := strings.Split(path, ".")
	return &maxArrayLength{
		path: segments,
		name: segments[len(segments)-1],
		max:  max,
	}
}

type maxArrayLength struct {
	path []string
	name string
	max  int
}

func (c *maxArrayLength) Validate(args map[string]interface{}) error {
	value, ok := lookupArg(args, c.path)
	if !ok {
		return nil
	}
	list, ok := value.([]interface{})
	if !ok {
		return nil
	}
	if len(list) > c.max {
		return errors.NewUserInputError(fmt.Sprintf(
			"Invalid array length for argument %s. Supplied %d items, maximum allowed is %d",
			c.name, len(list), c.max,
		))
	}
	return nil
}

// BoundedInteger constrains an integer argument to the inclusive range
// [min, max]
func BoundedInteger(path string, min, max int) Constraint {
	segments := strings.Split(path, ".")
	return &boundedInteger{
		path: segments,
		name: segments[len(segments)-1],
		min:  min,
		max:  max,
	}
}

type boundedInteger struct {
	path []string
	name string
	min  int
	max  int
}

func (c *boundedInteger) Validate(args map[string]interface{}) error {
	value, ok := lookupArg(args, c.path)
	if !ok {
		return nil
	}
	n, ok := asInt(value)
	if !ok {
		return nil
	}
	if n < c.min {
		return errors.NewUserInputError(fmt.Sprintf(
			"Invalid value for argument %s. %d is less than %d", c.name, n, c.min,
		))
	}
	if n > c.max {
		return errors.NewUserInputError(fmt.Sprintf(
			"Invalid value for argument %s. %d is greater than %d", c.name, n, c.max,
		))
	}
	return nil
}

func lookupArg(args map[string]interface{}, path []string) (interface{}, bool) {
	var value interface{} = args
	for _, segment := range path {
		object, ok := value.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, ok = object[segment]
		if !ok || value == nil {
			return nil, false
		}
	}
	return value, true
}

func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
