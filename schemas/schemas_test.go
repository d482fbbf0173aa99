package schemas

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/skincare-intake/internal/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

var configSchemaPath = filepath.Join("..", "internal", "config", "config.schema.json")

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "should be able to read %s", path)
	return string(data)
}

func TestConfigSchema_ValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, configSchemaPath)), &v))

	_, hasSchema := v["$schema"]
	_, hasProps := v["properties"]
	assert.True(t, hasSchema, "schema should declare $schema")
	assert.True(t, hasProps, "schema should declare properties")
}

func TestConfigSchema_Compiles(t *testing.T) {
	_, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(readFile(t, configSchemaPath)))
	assert.NoError(t, err)
}

func TestExampleConfig_MatchesSchema(t *testing.T) {
	example := readFile(t, filepath.Join("..", "config.example.json"))
	err := schemas.ValidateJSONString(readFile(t, configSchemaPath), example)
	assert.NoError(t, err, "config.example.json should validate against the config schema")
}

func TestConfigSchema_CoversConfigFields(t *testing.T) {
	var schema struct {
		Properties map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(readFile(t, configSchemaPath)), &schema))

	var example map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, filepath.Join("..", "config.example.json"))), &example))

	for key := range example {
		assert.Contains(t, schema.Properties, key)
	}
	assert.Contains(t, schema.Properties, "log_file")
}
