package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zap.DebugLevel},
		{"info", zap.InfoLevel},
		{"warn", zap.WarnLevel},
		{"error", zap.ErrorLevel},
		{"", zap.InfoLevel},
		{"loud", zap.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNew_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: FormatJSON, Writer: &buf})

	log.Debug("hidden")
	log.Info("scraped job", zap.String("platform", "linkedin"))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "scraped job", entry["msg"])
	assert.Equal(t, "linkedin", entry["platform"])
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Writer: &buf})

	log.Debug("selector cache hit")
	assert.Contains(t, buf.String(), "DEBUG")
	assert.Contains(t, buf.String(), "selector cache hit")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "careerstack.log")
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Writer: &buf, File: path})

	log.Info("skipped")
	log.Warn("retrying request")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "retrying request")
	assert.NotContains(t, string(data), "skipped")
	assert.Contains(t, buf.String(), "retrying request")
}
