package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	v := NewViper()

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G", "H"}, cfg.Generator.Series)
	assert.Equal(t, 100, cfg.Generator.PerSeries)
	assert.Equal(t, 1000, cfg.Generator.MaxAttempts)
	assert.Equal(t, "tickets_database.json", cfg.Records.JSONFile)
	assert.Equal(t, "tickets_database.csv", cfg.Records.CSVFile)
	assert.Equal(t, "tickets_qr", cfg.Render.TicketDir)
	assert.Equal(t, "qr_codes_only", cfg.Render.SymbolDir)
	assert.Equal(t, "qr", cfg.Render.Symbology)
	assert.Equal(t, 800, cfg.Render.Ticket.Width)
	assert.Equal(t, 400, cfg.Render.Ticket.Height)
	assert.Len(t, cfg.Render.Ticket.Instructions, 2)
	assert.Equal(t, 40.0, cfg.Render.Ticket.TitleFont.Size)
	assert.Equal(t, "concert_tickets.db", cfg.Database.Path)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generator:
  series: [X, Y]
  per_series: 3
render:
  symbology: aztec
  workers: 8
`), 0644))

	v := NewViper()
	require.NoError(t, LoadConfig(v, path))

	cfg, err := ParseConfig(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, cfg.Generator.Series)
	assert.Equal(t, 3, cfg.Generator.PerSeries)
	assert.Equal(t, "aztec", cfg.Render.Symbology)
	assert.Equal(t, 8, cfg.Render.Workers)
	assert.Equal(t, 1000, cfg.Generator.MaxAttempts, "unset keys keep defaults")
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TICKETQR_GENERATOR_PER_SERIES=7\n"), 0644))
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("TICKETQR_GENERATOR_PER_SERIES") })

	v := NewViper()
	require.NoError(t, LoadConfig(v, ""))

	cfg, err := ParseConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Generator.PerSeries)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	v := NewViper()
	assert.Error(t, LoadConfig(v, filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TICKETQR_GENERATOR_PER_SERIES", "7")
	t.Setenv("TICKETQR_RENDER_MODE", "qr")

	cfg, err := ParseConfig(NewViper())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Generator.PerSeries)
	assert.Equal(t, "qr", cfg.Render.Mode)
}

func TestParseConfigValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{name: "zero per series", key: "generator.per_series", value: 0},
		{name: "lowercase series", key: "generator.series", value: []string{"a"}},
		{name: "long series", key: "generator.series", value: []string{"AB"}},
		{name: "duplicate series", key: "generator.series", value: []string{"A", "A"}},
		{name: "empty series", key: "generator.series", value: []string{}},
		{name: "unknown mode", key: "render.mode", value: "poster"},
		{name: "unknown symbology", key: "render.symbology", value: "pdf417"},
		{name: "no workers", key: "render.workers", value: 0},
		{name: "bad log level", key: "log.level", value: "loud"},
		{name: "no database path", key: "database.path", value: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViper()
			v.Set(tt.key, tt.value)

			_, err := ParseConfig(v)
			assert.Error(t, err)
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TICKETQR_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("TICKETQR_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("TICKETQR_TEST_MISSING", "fallback"))
}
