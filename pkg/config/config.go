// Package config loads runtime settings from the environment and optional
// .env files.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/partforge/pkg/materials"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvEnv           = "PARTFORGE_ENV"
	EnvLogLevel      = "PARTFORGE_LOG_LEVEL"
	EnvMeshCells     = "PARTFORGE_MESH_CELLS"
	EnvGeometryCache = "PARTFORGE_GEOMETRY_CACHE"
	EnvRuleDecks     = "PARTFORGE_RULE_DECKS"
	EnvMaterials     = "PARTFORGE_MATERIALS"
	EnvTargetSF      = "PARTFORGE_TARGET_SF"
	EnvDatabaseURL   = "PARTFORGE_DATABASE_URL"
)

// Defaults.
const (
	DefaultMeshCells     = 48
	DefaultGeometryCache = 128
	DefaultTargetSF      = 1.5
)

var (
	DefaultRuleDecks = []string{"cnc", "material"}
	DefaultMaterials = []string{"Aluminum 6061-T6", "Steel 1018", "Titanium Ti-6Al-4V"}
)

type Config struct {
	Env      string
	LogLevel slog.Level

	// MeshCells is the marching-cubes resolution along the longest axis.
	MeshCells int
	// GeometryCache is the number of synthesized geometries kept in memory.
	GeometryCache int

	RuleDecks []string
	// Materials are the candidates simulated when a design lists only one.
	Materials []string
	TargetSF  float64

	// DatabaseURL selects the Postgres store when set.
	DatabaseURL string
}

func (c Config) IsProduction() bool  { return strings.EqualFold(c.Env, "production") }
func (c Config) IsDevelopment() bool { return !c.IsProduction() }

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Env:           "local",
		LogLevel:      slog.LevelInfo,
		MeshCells:     DefaultMeshCells,
		GeometryCache: DefaultGeometryCache,
		RuleDecks:     append([]string(nil), DefaultRuleDecks...),
		Materials:     append([]string(nil), DefaultMaterials...),
		TargetSF:      DefaultTargetSF,
	}
}

// Load reads the given .env files (".env" when none are named) into the
// process environment, without overriding variables already set, and then
// builds a Config from the environment. Missing files are ignored.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	return FromLookup(os.Getenv)
}

// FromFile builds a Config from a single .env file. Variables set in the
// process environment take precedence over the file.
func FromFile(path string) (Config, error) {
	vals, err := godotenv.Read(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return FromLookup(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return vals[key]
	})
}

// FromLookup builds a Config from a key lookup; empty values keep the
// defaults.
func FromLookup(get func(string) string) (Config, error) {
	cfg := Default()
	val := func(key string) string { return strings.TrimSpace(get(key)) }

	if v := val(EnvEnv); v != "" {
		cfg.Env = v
	} else if v := val("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := val(EnvLogLevel); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvLogLevel, err)
		}
	} else if cfg.IsDevelopment() {
		cfg.LogLevel = slog.LevelDebug
	}

	var err error
	if cfg.MeshCells, err = positiveInt(val(EnvMeshCells), EnvMeshCells, DefaultMeshCells); err != nil {
		return Config{}, err
	}
	if cfg.GeometryCache, err = positiveInt(val(EnvGeometryCache), EnvGeometryCache, DefaultGeometryCache); err != nil {
		return Config{}, err
	}
	if v := val(EnvTargetSF); v != "" {
		sf, err := strconv.ParseFloat(v, 64)
		if err != nil || sf <= 0 {
			return Config{}, fmt.Errorf("config: %s: want a positive number, got %q", EnvTargetSF, v)
		}
		cfg.TargetSF = sf
	}

	if v := splitList(val(EnvRuleDecks)); len(v) > 0 {
		cfg.RuleDecks = v
	}
	if v := splitList(val(EnvMaterials)); len(v) > 0 {
		names := make([]string, 0, len(v))
		for _, name := range v {
			c := materials.Canonical(name)
			if c == "" {
				return Config{}, fmt.Errorf("config: %s: unknown material %q", EnvMaterials, name)
			}
			names = append(names, c)
		}
		cfg.Materials = names
	}
	cfg.DatabaseURL = firstNonEmpty(val(EnvDatabaseURL), val("DATABASE_URL"))
	return cfg, nil
}

func positiveInt(raw, key string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s: want a positive integer, got %q", key, raw)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
