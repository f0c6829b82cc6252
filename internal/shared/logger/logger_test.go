package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/poolkeeper/internal/shared/config"
)

func TestConditionalSourceHandler_SourceOnlyForSelectedLevels(t *testing.T) {
	tests := []struct {
		name       string
		level      slog.Level
		wantSource bool
	}{
		{name: "info has no source", level: slog.LevelInfo, wantSource: false},
		{name: "debug has no source", level: slog.LevelDebug, wantSource: false},
		{name: "warn has source", level: slog.LevelWarn, wantSource: true},
		{name: "error has source", level: slog.LevelError, wantSource: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			log := slog.New(NewConditionalSourceHandler(base, slog.LevelWarn, slog.LevelError))

			log.Log(t.Context(), tt.level, "reconcile finished", "owner_key", "acme")

			out := buf.String()
			assert.Contains(t, out, "reconcile finished")
			assert.Equal(t, tt.wantSource, strings.Contains(out, `"source"`), out)
		})
	}
}

func TestConditionalSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, nil)
	log := slog.New(NewConditionalSourceHandler(base, slog.LevelError)).
		With("component", "dispatcher").
		WithGroup("job")

	log.Error("job failed", "id", "job_123")

	out := buf.String()
	assert.Contains(t, out, `"component":"dispatcher"`)
	assert.Contains(t, out, `"job":{`)
	assert.Contains(t, out, `"source"`)
}

func TestInit_WritesJSONToFileAtConfiguredLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poolkeeper.log")
	err := Init(&config.LoggerConfig{Level: "warn", Format: "json", OutputPath: path}, "production")
	require.NoError(t, err)
	t.Cleanup(func() { Logger = nil })

	Info("dropped at warn level")
	Warn("scheduler paused", "enabled", false)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped at warn level")
	assert.Contains(t, string(data), "scheduler paused")

	SetLevel(slog.LevelDebug)
	Debug("now visible")
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "now visible")
}

func TestNop_DiscardsOutput(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Infow("ignored", "k", "v")
		log.With("a", 1).Named("x").Errorw("ignored too")
	})
}

func TestFromSlog_NamedAndWith(t *testing.T) {
	var buf bytes.Buffer
	log := FromSlog(slog.New(slog.NewJSONHandler(&buf, nil))).
		Named("dispatcher").
		With("worker", 2)

	log.Infow("job claimed", "job_id", "job_abc")

	out := buf.String()
	assert.Contains(t, out, `"logger":"dispatcher"`)
	assert.Contains(t, out, `"worker":2`)
	assert.Contains(t, out, `"job_id":"job_abc"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" warning "))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
