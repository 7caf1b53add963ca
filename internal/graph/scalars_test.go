// FilePath: internal/graph/scalars_test.go
package graph

import (
	"strconv"
	"testing"
	"time"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateSerializesToEpochMillis(t *testing.T) {
	instant := time.Date(2021, 3, 4, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, instant.UnixMilli(), DateScalar.Serialize(instant))
}

func TestDateSerializesPointerAndCacheShapes(t *testing.T) {
	instant := time.Date(2021, 3, 4, 12, 30, 0, 0, time.UTC)
	millis := instant.UnixMilli()

	assert.Equal(t, millis, DateScalar.Serialize(&instant))
	// values revived from the field cache arrive as JSON numbers or strings
	assert.Equal(t, millis, DateScalar.Serialize(float64(millis)))
	assert.Equal(t, millis, DateScalar.Serialize(instant.Format(time.RFC3339Nano)))
	assert.Nil(t, DateScalar.Serialize(struct{}{}))
}

func TestDateParsesIntegerValue(t *testing.T) {
	instant := time.Date(2021, 3, 4, 12, 30, 0, 0, time.UTC)

	parsed := DateScalar.ParseValue(float64(instant.UnixMilli()))
	require.IsType(t, time.Time{}, parsed)
	assert.True(t, instant.Equal(parsed.(time.Time)))
}

func TestDateRoundTripsThroughLiteral(t *testing.T) {
	instant := time.Date(2021, 3, 4, 12, 30, 0, 123000000, time.UTC)
	serialized := DateScalar.Serialize(instant)
	require.IsType(t, int64(0), serialized)

	literal := strconv.FormatInt(serialized.(int64), 10)
	parsed := DateScalar.ParseLiteral(&ast.IntValue{Value: literal})
	require.IsType(t, time.Time{}, parsed)
	assert.True(t, instant.Equal(parsed.(time.Time)))
}

func TestDateRejectsNonIntegerLiteral(t *testing.T) {
	assert.Nil(t, DateScalar.ParseLiteral(&ast.StringValue{Value: "2021-03-04"}))
	assert.Nil(t, DateScalar.ParseLiteral(&ast.BooleanValue{Value: true}))
}

func TestJSONPassesValuesThrough(t *testing.T) {
	document := map[string]interface{}{"a": []interface{}{1.0, "b"}}
	assert.Equal(t, document, JSONScalar.Serialize(document))
	assert.Equal(t, document, JSONScalar.ParseValue(document))
}

func TestJSONParsesNestedLiteral(t *testing.T) {
	literal := &ast.ObjectValue{
		Fields: []*ast.ObjectField{
			{
				Name:  &ast.Name{Value: "enabled"},
				Value: &ast.BooleanValue{Value: true},
			},
			{
				Name: &ast.Name{Value: "tags"},
				Value: &ast.ListValue{
					Values: []ast.Value{
						&ast.StringValue{Value: "a"},
						&ast.IntValue{Value: "7"},
					},
				},
			},
		},
	}

	parsed := JSONScalar.ParseLiteral(literal)
	assert.Equal(t, map[string]interface{}{
		"enabled": true,
		"tags":    []interface{}{"a", int64(7)},
	}, parsed)
}
