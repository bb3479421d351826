package docs

import (
	"testing"

	"github.com/lac-hong-legacy/portfolio_api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocumentRegistered(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed struct {
		Swagger string                 `json:"swagger"`
		Info    map[string]interface{} `json:"info"`
		Paths   map[string]interface{} `json:"paths"`
	}
	require.NoError(t, shared.JSON().UnmarshalFromString(doc, &parsed))

	assert.Equal(t, "2.0", parsed.Swagger)
	assert.Equal(t, "Portfolio API", parsed.Info["title"])
	for _, path := range []string{
		"/ping",
		"/api/visits",
		"/api/failed-logins",
		"/api/message-count",
		"/api/chat-history",
		"/api/chat-resume",
		"/api/clear-conversation",
		"/api/rag-status",
		"/api/refresh-resume",
		"/api/admin/login",
		"/api/status",
	} {
		assert.Contains(t, parsed.Paths, path)
	}
}
