package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key=abc , broken, =x, tenant=dryad ")
	assert.Equal(t, map[string]string{"api-key": "abc", "tenant": "dryad"}, got)
	assert.Nil(t, parseHeaders(""))
}

func TestOtelConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLER_RATIO", "3")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")

	cfg := OtelConfigFromEnv("dryad", "test", "dev")
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 1.0, cfg.SampleRatio)
	assert.Equal(t, "collector:4318", cfg.Endpoint)
	assert.False(t, cfg.Insecure)
}
