package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(&buf, slog.LevelInfo, FormatJSON)
	require.NoError(t, err)

	logger.Info("listed messages", slog.String(KeyService, "gmail"), Status(StatusSuccess))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "listed messages", entry["msg"])
	assert.Equal(t, "gmail", entry[KeyService])
	assert.Equal(t, StatusSuccess, entry[KeyStatus])
}

func TestSetup_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(&buf, slog.LevelInfo, FormatText)
	require.NoError(t, err)

	logger.Info("hello", Operation("render"))
	assert.True(t, strings.Contains(buf.String(), "operation=render"))
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(&buf, slog.LevelWarn, FormatJSON)
	require.NoError(t, err)

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestSetup_UnknownFormat(t *testing.T) {
	_, err := Setup(&bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestSetupDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	_, err := SetupDefault(&buf, "debug", FormatJSON)
	require.NoError(t, err)

	slog.Debug("via default")
	assert.Contains(t, buf.String(), "via default")

	_, err = SetupDefault(&buf, "loud", FormatJSON)
	assert.Error(t, err)
}
