package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate moves into an empty directory and blanks the environment the
// loader reads. Viper ignores empty variables, so defaults apply.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(CredentialEnv, "")
	t.Setenv("ORQ_API_URL", "")
	t.Setenv("ORQ_API_TIMEOUT", "")
	t.Setenv("ORQ_MODEL_DEFAULT", "")
	t.Setenv("ORQ_LOGGING_LEVEL", "")
	t.Setenv("ORQ_LOGGING_FORMAT", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	v, err := LoadConfig("")
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "https://openrouter.ai/api/v1", s.API.URL)
	assert.Equal(t, 5*time.Minute, s.API.Timeout)
	assert.Equal(t, "google/gemini-2.5-flash", s.Model.Default)
	assert.Equal(t, "orq", s.App.Title)
	assert.Equal(t, "warn", s.Logging.Level)
	assert.Equal(t, "console", s.Logging.Format)
	assert.Empty(t, s.API.Key)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv(CredentialEnv, "sk-or-env")
	t.Setenv("ORQ_API_TIMEOUT", "30s")
	t.Setenv("ORQ_MODEL_DEFAULT", "openai/gpt-4o-mini")

	v, err := LoadConfig("")
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "sk-or-env", s.API.Key)
	assert.Equal(t, 30*time.Second, s.API.Timeout)
	assert.Equal(t, "openai/gpt-4o-mini", s.Model.Default)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"api:\n  url: http://localhost:9999/v1\n  timeout: 45s\napp:\n  referer: https://example.com\n"), 0o600))

	v, err := LoadConfig(path)
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/v1", s.API.URL)
	assert.Equal(t, 45*time.Second, s.API.Timeout)
	assert.Equal(t, "https://example.com", s.App.Referer)
	assert.Equal(t, "orq", s.App.Title, "unset keys keep defaults")
}

func TestLoad_SearchPath(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("orq.yaml", []byte("model:\n  default: deepseek/deepseek-chat-v3.1\n"), 0o600))

	v, err := LoadConfig("")
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "deepseek/deepseek-chat-v3.1", s.Model.Default)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated\n"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoad_CredentialOnlyFromEnvironment(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("orq.yaml", []byte("api:\n  key: sk-or-from-file\n"), 0o600))
	t.Setenv("ORQ_API_KEY", "sk-or-prefixed")

	v, err := LoadConfig("")
	require.NoError(t, err)
	s, err := Load(v)
	require.NoError(t, err)
	assert.Empty(t, s.API.Key)
	assert.ErrorIs(t, s.Validate(), ErrMissingCredential)

	t.Setenv(CredentialEnv, "sk-or-env")
	s, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, "sk-or-env", s.API.Key)
	assert.NoError(t, s.Validate())
}

func TestValidate(t *testing.T) {
	valid := Settings{API: APISettings{URL: "https://x", Key: "k", Timeout: time.Second}}
	require.NoError(t, valid.Validate())

	missingKey := valid
	missingKey.API.Key = ""
	assert.True(t, errors.Is(missingKey.Validate(), ErrMissingCredential))

	noURL := valid
	noURL.API.URL = ""
	assert.Error(t, noURL.Validate())

	negative := valid
	negative.API.Timeout = -time.Second
	assert.Error(t, negative.Validate())
}
