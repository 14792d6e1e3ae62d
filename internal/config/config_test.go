package config

import (
	"testing"
	"time"

	"gochart/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("LLM_MODEL", "llama-3-70b")
	t.Setenv("TARGET_TOKEN_LIMIT", "3000")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("LOGGING_URL", "http://logs.internal/api")
	t.Setenv("MODULE_IDS", "axis_resolver=7, category_orderer=9")
	t.Setenv("LLM_TIMEOUT", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama-3-70b", cfg.LLM.Model)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 3000, cfg.Pipeline.TargetTokenLimit)
	assert.Equal(t, 3, cfg.Pipeline.ContentAttempts)
	assert.Equal(t, map[string]string{"axis_resolver": "7", "category_orderer": "9"}, cfg.Pipeline.ModuleIDs)
	assert.Equal(t, "http://logs.internal/api/", cfg.Logging.URL)
	assert.Equal(t, int64(4), cfg.Server.MaxConcurrentRuns)
}

func TestLoadRequiresTokenLimit(t *testing.T) {
	for _, v := range []string{"", "0", "-5", "lots"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("LLM_MODEL", "m")
			t.Setenv("TARGET_TOKEN_LIMIT", v)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadRequiresModel(t *testing.T) {
	t.Setenv("LLM_MODEL", "")
	t.Setenv("TARGET_TOKEN_LIMIT", "100")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM_MODEL")
}

func TestParseModuleIDs(t *testing.T) {
	got, err := ParseModuleIDs("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseModuleIDs("axis_resolver")
	assert.Error(t, err)
}
