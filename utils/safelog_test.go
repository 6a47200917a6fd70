package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecrets(t *testing.T) {
	in := "GET https://serpapi.com/search.json?engine=google_shopping&api_key=abc123&q=tv"
	assert.Equal(t, "GET https://serpapi.com/search.json?engine=google_shopping&api_key=***&q=tv", MaskSecrets(in))

	in = "https://maps.googleapis.com/maps/api/place/nearbysearch/json?key=AIzaSecret&radius=500"
	assert.NotContains(t, MaskSecrets(in), "AIzaSecret")

	assert.Equal(t, "Authorization: Bearer ***", MaskSecrets("Authorization: Bearer eyJhbGciOi.abc-def"))
	assert.Equal(t, "key sk-***", MaskSecrets("key sk-ant-REDACTED"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LogLevelError, ParseLogLevel(" error "))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
}
