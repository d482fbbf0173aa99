package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["webhook_url"],
	"properties": {
		"webhook_url": {"type": "string", "minLength": 1},
		"max_images": {"type": "integer", "minimum": 1, "maximum": 3}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"webhook_url": "https://example.com/hook", "max_images": 2}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_MissingField(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"max_images": 2}`)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Len(t, ve.Errors, 1)
	assert.Equal(t, "(root)", ve.Errors[0].Field)
	assert.Contains(t, ve.Errors[0].Message, "webhook_url")
}

func TestValidateJSONString_OutOfRange(t *testing.T) {
	err := ValidateJSONString(testSchema, `{"webhook_url": "x", "max_images": 5}`)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "max_images", ve.Errors[0].Field)
}

func TestValidateJSONString_MalformedDocument(t *testing.T) {
	err := ValidateJSONString(testSchema, `{ not json`)
	require.Error(t, err)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
}

func TestValidateJSONString_MalformedSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": 12}`, `{}`)
	require.Error(t, err)

	var le *SchemaLoadError
	assert.ErrorAs(t, err, &le)
	assert.Contains(t, err.Error(), "(string schema)")
}

func TestValidateValue(t *testing.T) {
	assert.NoError(t, ValidateValue(testSchema, map[string]any{"webhook_url": "https://example.com"}))

	err := ValidateValue(testSchema, map[string]any{"webhook_url": ""})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "webhook_url", ve.Errors[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "port", Message: "Invalid type"},
			{Field: "(root)", Message: "Additional property x is not allowed"},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "validation failed:")
	assert.Contains(t, msg, "1. port: Invalid type")
	assert.Contains(t, msg, "2. (root): Additional property x is not allowed")
}
