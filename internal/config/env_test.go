package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"RECALL_K", "RECALL_WORKERS", "RECALL_DATASET", "RECALL_CUTOFFS", "ENVIRONMENT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.K)
	assert.Equal(t, 0, cfg.Workers)
	assert.Empty(t, cfg.Dataset)
	assert.Empty(t, cfg.Cutoffs)
	assert.Equal(t, "prod", cfg.Environment)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("RECALL_K", "3")
	t.Setenv("RECALL_WORKERS", "8")
	t.Setenv("RECALL_DATASET", "testdata/eval.json.zst")
	t.Setenv("RECALL_CUTOFFS", "1,5,10")
	t.Setenv("ENVIRONMENT", "DEV")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.K)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "testdata/eval.json.zst", cfg.Dataset)
	assert.Equal(t, []int{1, 5, 10}, cfg.Cutoffs)
	assert.Equal(t, "dev", cfg.Environment)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"RECALL_K":       "0",
		"RECALL_WORKERS": "-2",
		"RECALL_CUTOFFS": "2,0",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}

	t.Run("not a number", func(t *testing.T) {
		t.Setenv("RECALL_K", "three")
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}
