package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bomgraph/internal/model"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, 256, cfg.CycleDetection.PageSize)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bomgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend: badger
database: /var/lib/bomgraph
tenant: acme
log_level: debug
cycle_detection:
  page_size: 64
metrics_out: /var/lib/node_exporter/bomgraph.prom
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Backend:        BackendBadger,
		Database:       "/var/lib/bomgraph",
		Tenant:         "acme",
		LogLevel:       "debug",
		CycleDetection: CycleDetection{PageSize: 64},
		MetricsOut:     "/var/lib/node_exporter/bomgraph.prom",
	}, cfg)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestParse_PartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("tenant: globex\n"))
	require.NoError(t, err)
	assert.Equal(t, "globex", cfg.Tenant)
	assert.Equal(t, Default().Database, cfg.Database)
	assert.Equal(t, Default().CycleDetection, cfg.CycleDetection)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("databse: typo.db\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"backend", "backend: postgres\n", "backend"},
		{"log level", "log_level: loud\n", "log_level"},
		{"page size", "cycle_detection:\n  page_size: 0\n", "page_size"},
		{"database", "database: \"\"\n", "database"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			var ve *model.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Len(t, ve.Fields, 1)
			assert.Equal(t, tt.field, ve.Fields[0].Field)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	} {
		assert.Equal(t, want, Config{LogLevel: level}.SlogLevel(), level)
	}
}
