package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	cfg, err := FromLookup(lookup(nil))
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 48, cfg.MeshCells)
	assert.Equal(t, 128, cfg.GeometryCache)
	assert.Equal(t, []string{"cnc", "material"}, cfg.RuleDecks)
	assert.Equal(t, DefaultMaterials, cfg.Materials)
	assert.Equal(t, 1.5, cfg.TargetSF)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromLookup(lookup(map[string]string{
		EnvEnv:           "production",
		EnvLogLevel:      "warn",
		EnvMeshCells:     " 96 ",
		EnvGeometryCache: "16",
		EnvRuleDecks:     "cnc, ,constraints",
		EnvMaterials:     "steel,titanium",
		EnvTargetSF:      "2",
		"DATABASE_URL":   "postgres://localhost/partforge",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 96, cfg.MeshCells)
	assert.Equal(t, 16, cfg.GeometryCache)
	assert.Equal(t, []string{"cnc", "constraints"}, cfg.RuleDecks)
	assert.Equal(t, []string{"Steel 1018", "Titanium Ti-6Al-4V"}, cfg.Materials)
	assert.Equal(t, 2.0, cfg.TargetSF)
	assert.Equal(t, "postgres://localhost/partforge", cfg.DatabaseURL)
}

func TestProductionDefaultsToInfo(t *testing.T) {
	cfg, err := FromLookup(lookup(map[string]string{EnvEnv: "Production"}))
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{EnvMeshCells, "lots"},
		{EnvMeshCells, "0"},
		{EnvGeometryCache, "-4"},
		{EnvTargetSF, "strong"},
		{EnvTargetSF, "0"},
		{EnvLogLevel, "loud"},
		{EnvMaterials, "aluminum,mithril"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			_, err := FromLookup(lookup(map[string]string{tt.key: tt.value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PARTFORGE_MESH_CELLS=64\nPARTFORGE_TARGET_SF=1.8\n"), 0o644))
	t.Setenv(EnvTargetSF, "2.5")

	cfg, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.MeshCells)
	assert.Equal(t, 2.5, cfg.TargetSF, "process environment wins over the file")

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
