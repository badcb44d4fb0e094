package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Info().Str("wallet_id", "abc").Msg("credit")

	var output map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err, "logger output should be valid JSON")

	assert.Equal(t, "credit", output["message"])
	assert.Equal(t, "abc", output["wallet_id"])
	assert.Equal(t, "info", output["level"])
	assert.Contains(t, output, "time", "should include timestamp")
}

func TestNew_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)

	log.Debug().Msg("debug msg")
	assert.NotEmpty(t, buf.String(), "debug messages should be logged at debug level")
}

func TestNew_InfoLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	log.Debug().Msg("should not appear")
	assert.Empty(t, buf.String(), "debug messages should be filtered at info level")
}

func TestNew_WarnLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info().Msg("should not appear")
	assert.Empty(t, buf.String())

	log.Warn().Msg("retrying")
	assert.NotEmpty(t, buf.String())
}

func TestNew_InvalidLevel_DefaultsToInfo(t *testing.T) {
	for _, level := range []string{"invalid", ""} {
		var buf bytes.Buffer
		log := NewWithWriter(level, &buf)

		log.Debug().Msg("should not appear")
		assert.Empty(t, buf.String(), "level %q should default to info, filtering debug", level)

		log.Info().Msg("should appear")
		assert.NotEmpty(t, buf.String())
	}
}

func TestWithRequest(t *testing.T) {
	var buf bytes.Buffer
	log := WithRequest(NewWithWriter("info", &buf), "req-1", "mobile")

	log.Info().Msg("http request")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "req-1", output["request_id"])
	assert.Equal(t, "mobile", output["source"])
}

func TestWithRequest_NoSource(t *testing.T) {
	var buf bytes.Buffer
	log := WithRequest(NewWithWriter("info", &buf), "req-2", "")

	log.Info().Msg("http request")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "req-2", output["request_id"])
	assert.NotContains(t, output, "source")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log := Component(NewWithWriter("info", &buf), "wallet_service")

	log.Warn().Msg("concurrent modification, retrying")

	var output map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &output))
	assert.Equal(t, "wallet_service", output["component"])
	assert.Equal(t, "warn", output["level"])
}

func TestNew_PrettyMode(t *testing.T) {
	// Pretty mode writes to stdout; only check it does not panic.
	log := New("info", true)
	log.Info().Msg("pretty mode test")
}
