package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type record struct {
	IDs       []string `json:"ids"`
	Knowledge []string `json:"knowledge"`
}

func TestDecodeStructured(t *testing.T) {
	t.Run("Plain JSON is decoded", func(t *testing.T) {
		var out record
		err := DecodeStructured(`{"ids": ["L1"], "knowledge": ["cut bread"]}`, &out)
		require.NoError(t, err)
		assert.Equal(t, []string{"L1"}, out.IDs)
		assert.Equal(t, []string{"cut bread"}, out.Knowledge)
	})

	t.Run("Code fences are removed", func(t *testing.T) {
		var out record
		err := DecodeStructured("```json\n{\"ids\": [\"L1\", \"L2\"], \"knowledge\": [\"a\", \"b\"]}\n```", &out)
		require.NoError(t, err)
		assert.Equal(t, []string{"L1", "L2"}, out.IDs)
	})

	t.Run("Invalid JSON is a schema violation", func(t *testing.T) {
		var out record
		err := DecodeStructured("Sure! Here are the actions: L1, L2", &out)
		assert.ErrorIs(t, err, ErrSchemaViolation)
	})

	t.Run("Wrong field type is a schema violation", func(t *testing.T) {
		var out record
		err := DecodeStructured(`{"ids": "L1"}`, &out)
		assert.ErrorIs(t, err, ErrSchemaViolation)
	})

	t.Run("Empty response is a schema violation", func(t *testing.T) {
		var out record
		err := DecodeStructured("```\n```", &out)
		assert.ErrorIs(t, err, ErrSchemaViolation)
	})
}

func TestGenaiSchema(t *testing.T) {
	t.Run("Object schema is converted", func(t *testing.T) {
		schema := Schema{
			"type":        "object",
			"description": "extraction",
			"properties": map[string]interface{}{
				"ids":       StringArray("identifiers"),
				"knowledge": StringArray("knowledge per identifier"),
			},
			"required": []string{"ids", "knowledge"},
		}

		converted, err := genaiSchema(schema)
		require.NoError(t, err)
		require.NotNil(t, converted)

		assert.Equal(t, genai.TypeObject, converted.Type)
		assert.Equal(t, "extraction", converted.Description)
		assert.Equal(t, []string{"ids", "knowledge"}, converted.Required)
		require.Contains(t, converted.Properties, "ids")
		assert.Equal(t, genai.TypeArray, converted.Properties["ids"].Type)
		require.NotNil(t, converted.Properties["ids"].Items)
		assert.Equal(t, genai.TypeString, converted.Properties["ids"].Items.Type)
	})

	t.Run("Required from decoded JSON is converted", func(t *testing.T) {
		converted, err := genaiSchema(map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"a", 1, "b"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, converted.Required)
	})

	t.Run("Empty schema gives nil", func(t *testing.T) {
		converted, err := genaiSchema(nil)
		assert.NoError(t, err)
		assert.Nil(t, converted)
	})

	t.Run("Unknown type fails", func(t *testing.T) {
		_, err := genaiSchema(Schema{"type": "tuple"})
		assert.Error(t, err)
	})

	t.Run("Invalid property fails", func(t *testing.T) {
		_, err := genaiSchema(Schema{
			"type":       "object",
			"properties": map[string]interface{}{"ids": "array"},
		})
		assert.Error(t, err)
	})
}
