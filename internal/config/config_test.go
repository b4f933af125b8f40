package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"VAANI_PORT", "VAANI_ENGINE", "VAANI_MODEL", "VAANI_LANGUAGE",
		"VAANI_NO_SPEECH_THRESHOLD", "VAANI_SILENCE_THRESHOLD_DBFS",
		"VAANI_MAX_UPLOAD_BYTES", "VAANI_PROMPT", "OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "auto", cfg.Engine)
	require.Equal(t, "small", cfg.Model)
	require.Equal(t, "hi", cfg.Language)
	require.InDelta(t, 0.6, cfg.NoSpeechThreshold, 1e-9)
	require.InDelta(t, -65, cfg.SilenceThresholdDBFS, 1e-9)
	require.EqualValues(t, 512<<20, cfg.MaxUploadBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VAANI_PORT", "9090")
	t.Setenv("VAANI_ENGINE", "openai")
	t.Setenv("VAANI_LANGUAGE", "auto")
	t.Setenv("VAANI_NO_SPEECH_THRESHOLD", "0.75")
	t.Setenv("VAANI_MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("VAANI_PROMPT", "यह एक बातचीत है।")

	cfg := Load()
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "openai", cfg.Engine)
	require.Equal(t, "auto", cfg.Language)
	require.InDelta(t, 0.75, cfg.NoSpeechThreshold, 1e-9)
	require.EqualValues(t, 1<<20, cfg.MaxUploadBytes)
	require.Equal(t, "यह एक बातचीत है।", cfg.InitialPrompt)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("VAANI_NO_SPEECH_THRESHOLD", "not-a-number")
	t.Setenv("VAANI_MAX_UPLOAD_BYTES", "many")

	cfg := Load()
	require.InDelta(t, 0.6, cfg.NoSpeechThreshold, 1e-9)
	require.EqualValues(t, 512<<20, cfg.MaxUploadBytes)
}
