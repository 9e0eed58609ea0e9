package toolbridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCatalogue_SkipsMalformedTool(t *testing.T) {
	tools := []ToolDescriptor{
		{Name: "weather", Schema: json.RawMessage(weatherDoc)},
		{Name: "broken", Schema: json.RawMessage(`{`)},
		{Name: "orders", Schema: json.RawMessage(orderDoc)},
	}

	cat := BuildCatalogue(tools, nil)

	require.Len(t, cat.Details, 2, "one malformed tool must not take down the others")
	require.Len(t, cat.Functions, 2)
	assert.Equal(t, "getWeather", cat.Functions[0].Name)
	assert.Equal(t, "createOrder", cat.Functions[1].Name)
	assert.Equal(t, "getWeather", cat.RouteIndex["/weather/:city"])
	assert.Equal(t, "createOrder", cat.RouteIndex["/orders"])
}

func TestBuildCatalogue_DeterministicOrder(t *testing.T) {
	tools := []ToolDescriptor{
		{Name: "orders", Schema: json.RawMessage(orderDoc)},
		{Name: "weather", Schema: json.RawMessage(weatherDoc)},
	}

	first := BuildCatalogue(tools, nil)
	second := BuildCatalogue(tools, nil)

	require.Equal(t, first.Functions, second.Functions)
	assert.Equal(t, "createOrder", first.Functions[0].Name, "tool order then document order")
	assert.Equal(t, "getWeather", first.Functions[1].Name)
}

func TestBuildCatalogue_ServerURLFallback(t *testing.T) {
	doc := `{"paths": {"/ping": {"get": {"operationId": "ping"}}}}`
	cat := BuildCatalogue([]ToolDescriptor{
		{Name: "ping", BaseURL: "https://base.example.com", Schema: json.RawMessage(doc)},
	}, nil)

	require.Len(t, cat.Details, 1)
	assert.Equal(t, "https://base.example.com", cat.Details[0].ServerURL)
}

func TestBuildCatalogue_RequestInBodyFromFirstRoute(t *testing.T) {
	// A document mixing body and query operations takes its mode from the
	// first route.
	doc := `{"paths": {
		"/orders": {"post": {"operationId": "createOrder", "requestBody": {"content": {"application/json": {"schema": {"type": "object"}}}}}},
		"/orders/{id}": {"get": {"operationId": "getOrder"}}
	}}`
	cat := BuildCatalogue([]ToolDescriptor{{Name: "orders", Schema: json.RawMessage(doc)}}, nil)

	require.Len(t, cat.Details, 1)
	assert.True(t, cat.Details[0].RequestInBody)
	assert.Len(t, cat.Details[0].RouteMap, 2)
}

func TestParseCustomHeaders(t *testing.T) {
	assert.Nil(t, parseCustomHeaders(""))
	assert.Nil(t, parseCustomHeaders("not json at all"))
	assert.Nil(t, parseCustomHeaders(`["a", "b"]`))
	assert.Nil(t, parseCustomHeaders(`{}`))
	assert.Equal(t,
		map[string]string{"X-Api-Key": "secret", "X-Retries": "3"},
		parseCustomHeaders(`{"X-Api-Key": "secret", "X-Retries": 3}`))
}

func TestBuildCatalogue_TolerantHeaders(t *testing.T) {
	cat := BuildCatalogue([]ToolDescriptor{
		{Name: "weather", Schema: json.RawMessage(weatherDoc), CustomHeaders: "%%%garbage%%%"},
	}, nil)

	require.Len(t, cat.Details, 1)
	assert.Nil(t, cat.Details[0].Headers, "malformed custom headers are tolerated, not fatal")
}
