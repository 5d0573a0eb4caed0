package middleware

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Request body schemas, keyed by name. Kept next to the middleware so a new
// endpoint cannot silently ship without one.
var requestSchemas = map[string]string{
	"signup": `{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string", "format": "email", "maxLength": 255},
			"password": {"type": "string", "minLength": 8, "maxLength": 128},
			"knowledgeLevel": {"type": "string", "enum": ["beginner", "intermediate", "advanced"]},
			"preferredLanguage": {"type": "string", "enum": ["en", "my"]}
		},
		"additionalProperties": false
	}`,

	"login": `{
		"type": "object",
		"required": ["email", "password"],
		"properties": {
			"email": {"type": "string", "maxLength": 255},
			"password": {"type": "string", "maxLength": 128}
		},
		"additionalProperties": false
	}`,

	"update_profile": `{
		"type": "object",
		"properties": {
			"knowledgeLevel": {"type": "string", "enum": ["beginner", "intermediate", "advanced"]},
			"preferredLanguage": {"type": "string", "enum": ["en", "my"]}
		},
		"additionalProperties": false
	}`,

	"create_conversation": `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "maxLength": 255},
			"mode": {"type": "string", "enum": ["normal", "learning", "analysis", "quiz"]}
		},
		"additionalProperties": false
	}`,

	"update_conversation": `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 255}
		},
		"additionalProperties": false
	}`,

	"chat": `{
		"type": "object",
		"required": ["conversationId"],
		"properties": {
			"conversationId": {"type": "string", "minLength": 1},
			"message": {"type": "string", "maxLength": 20000},
			"attachments": {
				"type": "array",
				"maxItems": 8,
				"items": {
					"type": "object",
					"required": ["mimeType", "payload"],
					"properties": {
						"mimeType": {"type": "string", "minLength": 1},
						"payload": {"type": "string", "minLength": 1},
						"displayName": {"type": "string", "maxLength": 255},
						"kind": {"type": "string", "enum": ["image", "file"]}
					},
					"additionalProperties": false
				}
			}
		},
		"additionalProperties": false
	}`,
}

var compiledSchemas = map[string]*gojsonschema.Schema{}

func init() {
	for name, raw := range requestSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			panic(fmt.Sprintf("invalid request schema %q: %v", name, err))
		}
		compiledSchemas[name] = schema
	}
}

func mustSchema(name string) *gojsonschema.Schema {
	schema, ok := compiledSchemas[name]
	if !ok {
		panic(fmt.Sprintf("unknown request schema %q", name))
	}
	return schema
}
