package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// Schema is a JSON schema in map form, e.g.
//
//	Schema{"type": "object", "properties": map[string]interface{}{...}, "required": []string{...}}
type Schema map[string]interface{}

// StringArray returns the schema of an array of strings
func StringArray(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       map[string]interface{}{"type": "string"},
	}
}

var fencePattern = regexp.MustCompile("(?s)^\\s*```(?:json|JSON)?\\s*\\n?(.*?)\\n?\\s*```\\s*$")

// DecodeStructured unmarshals a JSON response into out.
// Markdown code fences around the JSON are removed first.
func DecodeStructured(response string, out interface{}) error {
	text := strings.TrimSpace(response)
	if matches := fencePattern.FindStringSubmatch(text); len(matches) == 2 {
		text = strings.TrimSpace(matches[1])
	}
	if text == "" {
		return fmt.Errorf("%w: empty response", ErrSchemaViolation)
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

// JSON renders the schema as indented JSON for prompt instructions
func (s Schema) JSON() (string, error) {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// genaiSchema converts the map representation to a genai.Schema
func genaiSchema(schemaMap map[string]interface{}) (*genai.Schema, error) {
	if len(schemaMap) == 0 {
		return nil, nil
	}

	schema := &genai.Schema{}

	if typeStr, ok := schemaMap["type"].(string); ok {
		switch strings.ToLower(typeStr) {
		case "object":
			schema.Type = genai.TypeObject
		case "array":
			schema.Type = genai.TypeArray
		case "string":
			schema.Type = genai.TypeString
		case "number":
			schema.Type = genai.TypeNumber
		case "integer":
			schema.Type = genai.TypeInteger
		case "boolean":
			schema.Type = genai.TypeBoolean
		default:
			return nil, fmt.Errorf("unsupported schema type %q", typeStr)
		}
	}

	if desc, ok := schemaMap["description"].(string); ok {
		schema.Description = desc
	}

	switch required := schemaMap["required"].(type) {
	case []string:
		schema.Required = required
	case []interface{}:
		for _, v := range required {
			if s, ok := v.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	if itemsMap, ok := schemaMap["items"].(map[string]interface{}); ok {
		items, err := genaiSchema(itemsMap)
		if err != nil {
			return nil, fmt.Errorf("failed to convert items schema: %w", err)
		}
		schema.Items = items
	}

	if propsMap, ok := schemaMap["properties"].(map[string]interface{}); ok {
		schema.Properties = make(map[string]*genai.Schema, len(propsMap))
		for name, value := range propsMap {
			propMap, ok := value.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("property %q is not a schema", name)
			}
			prop, err := genaiSchema(propMap)
			if err != nil {
				return nil, fmt.Errorf("failed to convert property %q: %w", name, err)
			}
			schema.Properties[name] = prop
		}
	}

	return schema, nil
}
