package config

import (
	"os"
	"path/filepath"
	"testing"

	"gorarity/domain/rarity"
	"gorarity/internal"
	"gorarity/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"RARITY_CONFIG", "RARITY_FORMULA", "RARITY_NORMALIZED", "RARITY_RANK_BY", "RARITY_TIE_TOLERANCE", "RARITY_WORKERS", "RARITY_INPUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Scoring, cfg.Scoring)
	assert.Equal(t, internal.LogLevelInfo, cfg.Log.Level)
	assert.Empty(t, cfg.Input.Path)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("RARITY_FORMULA", "geometric_mean")
	t.Setenv("RARITY_NORMALIZED", "false")
	t.Setenv("RARITY_RANK_BY", "score, unique_traits,information")
	t.Setenv("RARITY_TIE_TOLERANCE", "1e-6")
	t.Setenv("RARITY_WORKERS", "3")
	t.Setenv("RARITY_INPUT", "tokens.json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, rarity.FormulaGeometric, cfg.Scoring.Formula)
	assert.False(t, cfg.Scoring.Normalized)
	assert.Equal(t, []rarity.RankMetric{rarity.RankByScore, rarity.RankByUniqueTraits, rarity.RankByInformation}, cfg.Scoring.RankBy)
	assert.Equal(t, 1e-6, cfg.Scoring.TieTolerance)
	assert.Equal(t, 3, cfg.Scoring.Workers)
	assert.Equal(t, "tokens.json", cfg.Input.Path)
	assert.Equal(t, internal.LogLevelDebug, cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown formula":    {"RARITY_FORMULA": "median"},
		"unknown metric":     {"RARITY_RANK_BY": "score,age"},
		"negative tolerance": {"RARITY_TIE_TOLERANCE": "-1"},
		"zero workers":       {"RARITY_WORKERS": "0"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadFrom_FileThenEnvironment(t *testing.T) {
	for _, key := range []string{"RARITY_FORMULA", "RARITY_NORMALIZED", "RARITY_RANK_BY", "RARITY_TIE_TOLERANCE", "RARITY_WORKERS", "RARITY_INPUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	path := filepath.Join(t.TempDir(), "rarity.yaml")
	yamlConfig := `
scoring:
  formula: harmonic
  normalized: false
  rank_by: [score, information]
  tie_tolerance: 0
  workers: 2
input:
  path: collection.json
log_level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o644))
	t.Setenv("RARITY_WORKERS", "6")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, rarity.FormulaHarmonic, cfg.Scoring.Formula)
	assert.False(t, cfg.Scoring.Normalized)
	assert.Equal(t, []rarity.RankMetric{rarity.RankByScore, rarity.RankByInformation}, cfg.Scoring.RankBy)
	assert.Equal(t, 0.0, cfg.Scoring.TieTolerance)
	assert.Equal(t, 6, cfg.Scoring.Workers, "environment wins over the file")
	assert.Equal(t, "collection.json", cfg.Input.Path)
	assert.Equal(t, internal.LogLevelWarn, cfg.Log.Level)
}

func TestLoadFrom_BadFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scoring:\n  formula: median\n"), 0o644))
	_, err = LoadFrom(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
