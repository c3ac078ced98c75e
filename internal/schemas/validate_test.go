package schemas

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"cgpa": {"type": "number", "minimum": 0, "maximum": 10}
	}
}`

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(fstest.MapFS{
		"person.schema.json": {Data: []byte(personSchema)},
		"README.md":          {Data: []byte("not a schema")},
	})
	require.NoError(t, err)
	return r
}

func TestRegistry_Names(t *testing.T) {
	r := testRegistry(t)
	assert.Equal(t, []string{"person"}, r.Names())
}

func TestRegistry_Validate(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "valid", body: `{"name": "Asha", "cgpa": 8.2}`},
		{name: "missing required", body: `{"cgpa": 8.2}`, wantField: "(root)"},
		{name: "out of range", body: `{"name": "Asha", "cgpa": 11}`, wantField: "cgpa"},
		{name: "wrong type", body: `{"name": 42}`, wantField: "name"},
		{name: "not json", body: `{ invalid json }`, wantField: "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Validate("person", []byte(tt.body))
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			require.NotEmpty(t, validationErr.Errors)
			assert.Equal(t, tt.wantField, validationErr.Errors[0].Field)
		})
	}
}

func TestRegistry_UnknownSchema(t *testing.T) {
	r := testRegistry(t)
	err := r.Validate("missing", []byte(`{}`))

	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "unknown schema")
}

func TestNewRegistry_BrokenSchema(t *testing.T) {
	_, err := NewRegistry(fstest.MapFS{
		"broken.schema.json": {Data: []byte(`{"type": 12}`)},
	})
	var loadErr *SchemaLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "broken.schema.json", loadErr.Path)
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(personSchema, `{"name": "test"}`))

	err := ValidateJSONString(personSchema, `{"age": 30}`)
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Messages(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "cgpa", Message: "must be a number"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed")
	assert.Contains(t, msg, "1. name: is required")
	assert.Contains(t, msg, "2. cgpa: must be a number")
	assert.Equal(t, "name: is required", err.First())
	assert.Equal(t, "validation failed", (&ValidationError{}).First())
}
