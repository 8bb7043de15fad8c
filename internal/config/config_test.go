package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearProviderEnv blanks the conventional credential variables so tests do
// not pick up a developer's real keys.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"WEATHER_API_KEY", "TAVILY_API_KEY", "AMADEUS_API_KEY", "AMADEUS_API_SECRET",
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "ANTHROPIC_API_KEY", "OLLAMA_HOST",
		"HOLIDAY_GATEWAY_PORT", "HOLIDAY_GATEWAY_BIND", "HOLIDAY_LOG_LEVEL",
		"HOLIDAY_MODEL", "HOLIDAY_FAILURE_POLICY", "HOLIDAY_GATEWAY_TOKEN",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, DefaultWeatherBaseURL, cfg.Weather.BaseURL)
	assert.Equal(t, DefaultAmadeusBaseURL, cfg.Amadeus.BaseURL)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, "news", cfg.Search.Topic)
	assert.Equal(t, "advanced", cfg.Search.Depth)
	assert.Equal(t, PolicyLegacy, cfg.Tools.FailurePolicy)
	assert.Equal(t, SelectFirst, cfg.Tools.FlightSelection)
	assert.False(t, cfg.Amadeus.CacheTokens)
	assert.Equal(t, "openai", cfg.Model.Provider)
	require.NotNil(t, cfg.Model.Temperature)
	assert.InDelta(t, 0.6, *cfg.Model.Temperature, 1e-9)
	assert.Equal(t, 7860, cfg.Gateway.Port)
	assert.True(t, cfg.Store.IsEnabled())
	assert.Equal(t, 30*time.Second, cfg.ToolTimeout())
}

func TestLoadMissingFile(t *testing.T) {
	clearProviderEnv(t)
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 7860, cfg.Gateway.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAML(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	yaml := `
weather:
  apiKey: wk
amadeus:
  clientId: cid
  clientSecret: csecret
  baseUrl: https://api.amadeus.com
  cacheTokens: true
tools:
  timeoutSeconds: 10
  failurePolicy: soft
  flightSelection: cheapest
model:
  provider: anthropic
  model: claude-sonnet-4-5
  temperature: 0.2
store:
  enabled: false
gateway:
  port: 9000
  bind: lan
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wk", cfg.Weather.APIKey)
	assert.Equal(t, "https://api.amadeus.com", cfg.Amadeus.BaseURL)
	assert.True(t, cfg.Amadeus.CacheTokens)
	assert.Equal(t, 10*time.Second, cfg.ToolTimeout())
	assert.Equal(t, PolicySoft, cfg.Tools.FailurePolicy)
	assert.Equal(t, SelectCheapest, cfg.Tools.FlightSelection)
	assert.Equal(t, "anthropic", cfg.Model.Provider)
	assert.InDelta(t, 0.2, *cfg.Model.Temperature, 1e-9)
	assert.False(t, cfg.Store.IsEnabled())
	assert.Equal(t, 9000, cfg.Gateway.Port)
	assert.Equal(t, "lan", cfg.Gateway.Bind)
	// untouched sections still get defaults
	assert.Equal(t, DefaultSearchBaseURL, cfg.Search.BaseURL)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weather: [unclosed"), 0o600))

	_, err := Load(path)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestLoadExpandsSecrets(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("MY_AMADEUS_SECRET", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("amadeus:\n  clientSecret: ${MY_AMADEUS_SECRET}\n  clientId: ${UNSET_VAR_XYZ}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Amadeus.ClientSecret)
	assert.Equal(t, "${UNSET_VAR_XYZ}", cfg.Amadeus.ClientID)
}

func TestProviderEnvFillsEmptyValues(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("WEATHER_API_KEY", "env-weather")
	t.Setenv("TAVILY_API_KEY", "env-tavily")
	t.Setenv("AMADEUS_API_KEY", "env-id")
	t.Setenv("AMADEUS_API_SECRET", "env-secret")
	t.Setenv("OPENAI_API_KEY", "env-openai")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weather:\n  apiKey: from-file\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Weather.APIKey, "file value wins over conventional env var")
	assert.Equal(t, "env-tavily", cfg.Search.APIKey)
	assert.Equal(t, "env-id", cfg.Amadeus.ClientID)
	assert.Equal(t, "env-secret", cfg.Amadeus.ClientSecret)
	assert.Equal(t, "env-openai", cfg.Model.APIKey)
	assert.Empty(t, Validate(&cfg))
}

func TestHolidayEnvOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("HOLIDAY_GATEWAY_PORT", "9100")
	t.Setenv("HOLIDAY_LOG_LEVEL", "DEBUG")
	t.Setenv("HOLIDAY_MODEL", "gpt-4o")
	t.Setenv("HOLIDAY_FAILURE_POLICY", "soft")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Gateway.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "gpt-4o", cfg.Model.Model)
	assert.Equal(t, PolicySoft, cfg.Tools.FailurePolicy)
}

func TestLoadDotEnv(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HOLIDAY_TEST_DOTENV=loaded\nWEATHER_API_KEY=dotenv-key\n"), 0o600))
	t.Setenv("HOLIDAY_TEST_DOTENV", "")
	os.Unsetenv("HOLIDAY_TEST_DOTENV")
	os.Unsetenv("WEATHER_API_KEY")

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), envFile))
	assert.Equal(t, "loaded", os.Getenv("HOLIDAY_TEST_DOTENV"))

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.Weather.APIKey)
}

func TestLoadDotEnvKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HOLIDAY_TEST_KEEP=from-file\n"), 0o600))
	t.Setenv("HOLIDAY_TEST_KEEP", "from-env")

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "from-env", os.Getenv("HOLIDAY_TEST_KEEP"))
}

func TestRawRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	raw, err := LoadRaw(path)
	require.NoError(t, err)
	assert.Empty(t, raw)

	SetValueAtPath(raw, []string{"tools", "failurePolicy"}, "soft")
	require.NoError(t, SaveRaw(path, raw))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, PolicySoft, cfg.Tools.FailurePolicy)
}
