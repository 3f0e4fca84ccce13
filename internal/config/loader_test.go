package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "DataDirect", cfg.Source.Name)
	assert.Equal(t, "AliveData", cfg.Target.Name)
	assert.Equal(t, 10000, cfg.Store.BatchSize)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", cfg.VSS.Model)
	assert.InDelta(t, 0.85, cfg.VSS.SimilarityThreshold, 1e-9)
	assert.Equal(t, []string{"full_name", "email_std", "email_hash", "mobile", "landline"}, cfg.Match.Fields)
	assert.Equal(t, "given_name_1", cfg.Target.Mapping.FirstName)
}

func TestLoadFromYAML(t *testing.T) {
	path := writeConfigFile(t, `
source:
  name: TPD
  path: data/external/tpd_subset.parquet
target:
  path: data/interim/ad_consumers.parquet
store:
  path: /tmp/matchd-test.db
  batch_size: 500
vss:
  similarity_threshold: 0.9
  batch_size: 10000
  max_results_per_name: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "TPD", cfg.Source.Name)
	assert.Equal(t, "data/external/tpd_subset.parquet", cfg.Source.Path)
	assert.Equal(t, "/tmp/matchd-test.db", cfg.Store.Path)
	assert.Equal(t, 500, cfg.Store.BatchSize)
	assert.InDelta(t, 0.9, cfg.VSS.SimilarityThreshold, 1e-9)
	assert.Equal(t, 10000, cfg.VSS.BatchSize)
	assert.Equal(t, 5, cfg.VSS.MaxResultsPerName)

	// Untouched fields keep their defaults.
	assert.Equal(t, "AliveData", cfg.Target.Name)
	assert.Equal(t, 100000, cfg.VSS.MaxRecords)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MATCHD_STORE_PATH", "/tmp/env-store.db")
	t.Setenv("MATCHD_VSS_BATCH_SIZE", "250")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env-store.db", cfg.Store.Path)
	assert.Equal(t, 250, cfg.VSS.BatchSize)
}

func TestEnvKeyMapping(t *testing.T) {
	cases := map[string]string{
		"MATCHD_STORE_PATH":                "store.path",
		"MATCHD_VSS_BATCH_SIZE":            "vss.batch_size",
		"MATCHD_MATCH_EXTRACT_OUTPUT":      "match.extract_output",
		"MATCHD_LOGGING_LEVEL":             "logging.level",
		"MATCHD_LOGGING_REDACT_ENABLED":    "logging.redact.enabled",
		"MATCHD_SOURCE_MAPPING_FIRST_NAME": "source.mapping.first_name",
		"MATCHD_TARGET_MAPPING_EMAIL_STD":  "target.mapping.email_std",
	}
	for name, want := range cases {
		assert.Equal(t, want, envKey(name), name)
	}
}

func TestLoadEnvOverrideNested(t *testing.T) {
	t.Setenv("MATCHD_LOGGING_REDACT_ENABLED", "false")
	t.Setenv("MATCHD_SOURCE_MAPPING_FIRST_NAME", "fname")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Logging.Redact.Enabled)
	assert.Equal(t, "fname", cfg.Source.Mapping.FirstName)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := writeConfigFile(t, `
vss:
  similarity_threshold: 1.5
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "similarity threshold")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfigFile(t, "store: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestVSSConfigValidate(t *testing.T) {
	cfg := NewDefault().VSS

	cfg.BatchSize = 0
	assert.Error(t, cfg.Validate())

	cfg = NewDefault().VSS
	cfg.MaxRecords = -1
	assert.Error(t, cfg.Validate())

	cfg = NewDefault().VSS
	cfg.SimilarityThreshold = -0.1
	assert.Error(t, cfg.Validate())
}
