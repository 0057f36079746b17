package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataMarshal(t *testing.T) {
	t.Run("Marshal empty metadata", func(t *testing.T) {
		bytes, err := Metadata{}.Marshal()
		require.NoError(t, err)
		assert.Equal(t, []byte("{}"), bytes)
	})

	t.Run("Marshal nil metadata", func(t *testing.T) {
		var m Metadata
		bytes, err := m.Marshal()
		require.NoError(t, err)
		assert.Equal(t, []byte("null"), bytes)
	})

	t.Run("Marshal chunk metadata", func(t *testing.T) {
		m := Metadata{"row_index": 4, "sheet": "Actions", "header": []string{"ID", "Action"}}

		bytes, err := m.Marshal()
		require.NoError(t, err)

		var result map[string]interface{}
		require.NoError(t, json.Unmarshal(bytes, &result))
		assert.Equal(t, float64(4), result["row_index"], "JSON numbers become float64")
		assert.Equal(t, "Actions", result["sheet"])
	})
}

func TestMetadataScan(t *testing.T) {
	t.Run("Scan from JSON bytes", func(t *testing.T) {
		var m Metadata
		err := m.Scan([]byte(`{"page_count":12,"loader":"pdf"}`))
		require.NoError(t, err)
		assert.Equal(t, float64(12), m["page_count"])
		assert.Equal(t, "pdf", m["loader"])
	})

	t.Run("Scan from nil gives empty metadata", func(t *testing.T) {
		var m Metadata
		require.NoError(t, m.Scan(nil))
		assert.NotNil(t, m)
		assert.Empty(t, m)
	})

	t.Run("Scan from metadata value", func(t *testing.T) {
		var m Metadata
		require.NoError(t, m.Scan(Metadata{"a": "b"}))
		assert.Equal(t, "b", m["a"])
	})

	t.Run("Scan from unsupported type", func(t *testing.T) {
		var m Metadata
		err := m.Scan(42)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "type assertion to []byte failed")
	})

	t.Run("Value and Scan round trip", func(t *testing.T) {
		original := Metadata{"source": "manual.pdf", "page": 3}

		value, err := original.Value()
		require.NoError(t, err)

		var scanned Metadata
		require.NoError(t, scanned.Scan(value))
		assert.Equal(t, "manual.pdf", scanned["source"])

		page, ok := scanned.Int("page")
		assert.True(t, ok)
		assert.Equal(t, 3, page)
	})
}

func TestMetadataAccessors(t *testing.T) {
	m := Metadata{
		"int":      7,
		"int64":    int64(8),
		"float":    float64(9),
		"fraction": 1.5,
		"string":   "text",
	}

	t.Run("Int accepts integer kinds", func(t *testing.T) {
		for key, expected := range map[string]int{"int": 7, "int64": 8, "float": 9} {
			v, ok := m.Int(key)
			assert.True(t, ok, key)
			assert.Equal(t, expected, v, key)
		}
	})

	t.Run("Int rejects fractions, strings and missing keys", func(t *testing.T) {
		for _, key := range []string{"fraction", "string", "missing"} {
			_, ok := m.Int(key)
			assert.False(t, ok, key)
		}
	})

	t.Run("String", func(t *testing.T) {
		v, ok := m.String("string")
		assert.True(t, ok)
		assert.Equal(t, "text", v)

		_, ok = m.String("int")
		assert.False(t, ok)
	})

	t.Run("Nil metadata", func(t *testing.T) {
		var empty Metadata
		_, ok := empty.Int("page")
		assert.False(t, ok)
	})
}
