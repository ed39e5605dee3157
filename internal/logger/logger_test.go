package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	t.Run("writes json lines", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWithWriter(Config{Level: "info"}, &buf)

		l.Info().Str("symbol", "AAPL").Msg("price refreshed")

		assert.Contains(t, buf.String(), `"symbol":"AAPL"`)
		assert.Contains(t, buf.String(), `"message":"price refreshed"`)
	})

	t.Run("pretty output is not json", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewWithWriter(Config{Level: "info", Pretty: true}, &buf)

		l.Info().Msg("pretty")

		assert.Contains(t, buf.String(), "pretty")
		assert.NotContains(t, buf.String(), `"message"`)
	})
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"debug", "debug", zerolog.DebugLevel},
		{"info", "info", zerolog.InfoLevel},
		{"warn", "warn", zerolog.WarnLevel},
		{"warning alias", "WARNING", zerolog.WarnLevel},
		{"error", "error", zerolog.ErrorLevel},
		{"unknown defaults to info", "verbose", zerolog.InfoLevel},
		{"empty defaults to info", "", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseLevel(tc.level))
		})
	}
}
