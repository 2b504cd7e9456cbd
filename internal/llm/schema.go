package llm

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// jsonSchemaNode is the subset of JSON Schema that maps onto the Gemini response schema.
type jsonSchemaNode struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description"`
	Properties  map[string]*jsonSchemaNode `json:"properties"`
	Required    []string                   `json:"required"`
	Items       *jsonSchemaNode            `json:"items"`
	Enum        []string                   `json:"enum"`
}

// SchemaFromJSON converts a JSON Schema document into a genai.Schema for ResponseSchema.
func SchemaFromJSON(doc []byte) (*genai.Schema, error) {
	var root jsonSchemaNode
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return convertSchema(&root, "(root)")
}

func convertSchema(n *jsonSchemaNode, path string) (*genai.Schema, error) {
	s := &genai.Schema{
		Description: n.Description,
		Enum:        n.Enum,
	}

	switch n.Type {
	case "object":
		s.Type = genai.TypeObject
		s.Required = n.Required
		if len(n.Properties) > 0 {
			s.Properties = make(map[string]*genai.Schema, len(n.Properties))
			for name, child := range n.Properties {
				cs, err := convertSchema(child, path+"."+name)
				if err != nil {
					return nil, err
				}
				s.Properties[name] = cs
			}
		}
	case "array":
		s.Type = genai.TypeArray
		if n.Items == nil {
			return nil, fmt.Errorf("array at %s has no items schema", path)
		}
		items, err := convertSchema(n.Items, path+"[]")
		if err != nil {
			return nil, err
		}
		s.Items = items
	case "string":
		s.Type = genai.TypeString
	case "number":
		s.Type = genai.TypeNumber
	case "integer":
		s.Type = genai.TypeInteger
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type %q at %s", n.Type, path)
	}
	return s, nil
}
