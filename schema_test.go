package toolbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weatherDoc = `{
	"openapi": "3.1.0",
	"info": {
		"title": "Weather",
		"description": "Current conditions by city",
		"server": "https://api.example.com"
	},
	"paths": {
		"/weather/{city}": {
			"get": {
				"operationId": "getWeather",
				"description": "Get the current weather for a city",
				"parameters": [
					{
						"name": "city",
						"in": "path",
						"required": true,
						"description": "City name",
						"schema": {"type": "string"}
					},
					{
						"name": "units",
						"in": "query",
						"schema": {"type": "string"}
					}
				]
			}
		}
	}
}`

const orderDoc = `{
	"openapi": "3.1.0",
	"info": {"title": "Orders", "server": "https://orders.example.com"},
	"paths": {
		"/orders": {
			"post": {
				"operationId": "createOrder",
				"summary": "Create an order",
				"requestBody": {
					"content": {
						"application/json": {
							"schema": {
								"properties": {
									"sku": {"type": "string"},
									"quantity": {"type": "integer"}
								},
								"required": ["sku"]
							}
						}
					}
				}
			}
		}
	}
}`

func TestCompileSchema_QueryStyle(t *testing.T) {
	cs, err := CompileSchema([]byte(weatherDoc))
	require.NoError(t, err)

	assert.Equal(t, "Weather", cs.Title)
	assert.Equal(t, "Current conditions by city", cs.Description)
	assert.Equal(t, "https://api.example.com", cs.ServerURL)

	require.Len(t, cs.Functions, 1)
	fn := cs.Functions[0]
	assert.Equal(t, "getWeather", fn.Name)
	assert.Equal(t, "Get the current weather for a city", fn.Description)
	assert.Equal(t, "object", fn.Parameters["type"])

	props, ok := fn.Parameters["properties"].(map[string]any)
	require.True(t, ok)
	paramSchema, ok := props["parameters"].(map[string]any)
	require.True(t, ok)
	paramProps, ok := paramSchema["properties"].(map[string]any)
	require.True(t, ok)
	city, ok := paramProps["city"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", city["type"])
	assert.Equal(t, "City name", city["description"])
	assert.Equal(t, []any{"city"}, paramSchema["required"])

	require.Len(t, cs.Routes, 1)
	assert.Equal(t, Route{
		Path:        "/weather/:city",
		Method:      "GET",
		OperationID: "getWeather",
	}, cs.Routes[0])
}

func TestCompileSchema_BodyStyle(t *testing.T) {
	cs, err := CompileSchema([]byte(orderDoc))
	require.NoError(t, err)

	require.Len(t, cs.Functions, 1)
	fn := cs.Functions[0]
	assert.Equal(t, "createOrder", fn.Name)
	assert.Equal(t, "Create an order", fn.Description)

	props, ok := fn.Parameters["properties"].(map[string]any)
	require.True(t, ok)
	body, ok := props["requestBody"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "object", body["type"], "type: object is injected when the document omits it")
	assert.Equal(t, []any{"requestBody"}, fn.Parameters["required"])

	require.Len(t, cs.Routes, 1)
	assert.True(t, cs.Routes[0].RequestInBody)
	assert.Equal(t, "POST", cs.Routes[0].Method)
	assert.Equal(t, "/orders", cs.Routes[0].Path)
}

func TestCompileSchema_Idempotent(t *testing.T) {
	first, err := CompileSchema([]byte(weatherDoc))
	require.NoError(t, err)
	second, err := CompileSchema([]byte(weatherDoc))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompileSchema_ServerFallback(t *testing.T) {
	doc := `{
		"servers": [{"url": "https://fallback.example.com"}],
		"paths": {"/ping": {"get": {"operationId": "ping"}}}
	}`
	cs, err := CompileSchema([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "https://fallback.example.com", cs.ServerURL)
}

func TestCompileSchema_Malformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":         `{`,
		"root not object":      `[1, 2]`,
		"no paths":             `{"info": {"title": "x"}}`,
		"paths not object":     `{"paths": 7}`,
		"path entry not object": `{"paths": {"/x": 3}}`,
		"missing operation id":  `{"paths": {"/x": {"get": {}}}}`,
		"no operations":         `{"paths": {}}`,
		"parameters not array":  `{"paths": {"/x": {"get": {"operationId": "x", "parameters": {}}}}}`,
		"nameless parameter":    `{"paths": {"/x": {"get": {"operationId": "x", "parameters": [{"in": "query"}]}}}}`,
		"body without schema":   `{"paths": {"/x": {"post": {"operationId": "x", "requestBody": {"content": {}}}}}}`,
		"duplicate operation id": `{"paths": {
			"/a": {"get": {"operationId": "dup"}},
			"/b": {"get": {"operationId": "dup"}}
		}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := CompileSchema([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestConvertPathTemplate(t *testing.T) {
	assert.Equal(t, "/users/:id/posts/:postId", convertPathTemplate("/users/{id}/posts/{postId}"))
	assert.Equal(t, "/plain/path", convertPathTemplate("/plain/path"))
}
