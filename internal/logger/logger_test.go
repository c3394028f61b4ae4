package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/apitour/internal/config"
)

func TestNewLoggerWritesServiceFields(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Environment = "production"

	var buf bytes.Buffer
	log := newLogger(cfg, nil, &buf)
	log.Info().Msg("hello")

	out := buf.String()
	assert.Contains(t, out, `"service":"apitour"`)
	assert.Contains(t, out, `"environment":"production"`)
	assert.Contains(t, out, `"message":"hello"`)
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	log := newLogger(cfg, nil, &buf)
	log.Info().Msg("dropped")
	assert.Empty(t, buf.String())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestLoggerServiceWithoutLicense(t *testing.T) {
	svc, err := NewLoggerService(config.DefaultObservabilityConfig())
	require.NoError(t, err)
	assert.Nil(t, svc.GetApplication())

	// Shutdown and trace enrichment are no-ops without an agent.
	svc.Shutdown()

	var buf bytes.Buffer
	base := newLogger(config.DefaultObservabilityConfig(), nil, &buf)
	log := WithTraceContext(base, nil)
	log.Info().Msg("untraced")
	assert.NotContains(t, buf.String(), "trace.id")
}
