package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, int64(10000), cfg.MaxUploadBytes)
	assert.Equal(t, "newest", cfg.PrintingPolicy)
	assert.Empty(t, cfg.APIKey)
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"APP_ADDR":            ":9090",
		"STORAGE_ROOT":        "/srv/proxies",
		"API_DOMAIN":          "http://localhost:4000",
		"API_REQUEST_TIMEOUT": "5",
		"API_RPS":             "0",
		"MAX_UPLOAD_BYTES":    "2048",
		"FETCH_CONCURRENCY":   "3",
		"PRINTING_POLICY":     "OLDEST",
		"API_KEY":             "secret",
		"STORAGE_TTL":         "1.5",
		"SWEEP_INTERVAL":      "10m",
		"CORS_ORIGINS":        "http://a.test, http://b.test,",
		"TRUSTED_PROXIES":     "10.0.0.0/8",
		"LOG_LEVEL":           "debug",
		"ENABLE_HSTS":         "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/srv/proxies", cfg.StorageRoot)
	assert.Equal(t, "http://localhost:4000", cfg.APIDomain)
	assert.Equal(t, 5*time.Second, cfg.APIRequestTimeout)
	assert.Zero(t, cfg.APIRPS)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.Equal(t, 3, cfg.FetchConcurrency)
	assert.Equal(t, "oldest", cfg.PrintingPolicy)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 90*time.Minute, cfg.StorageTTL)
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.TrustedProxies)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.EnableHSTS)
}

func TestFromLookup_BlankValuesKeepDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{"APP_ADDR": "  ", "FETCH_CONCURRENCY": ""}))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 8, cfg.FetchConcurrency)
}

func TestFromLookup_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"non numeric rps":   {"API_RPS": "fast"},
		"bad bool":          {"ENABLE_HSTS": "maybe"},
		"bad duration":      {"SWEEP_INTERVAL": "soon"},
		"zero timeout":      {"API_REQUEST_TIMEOUT": "0"},
		"unknown policy":    {"PRINTING_POLICY": "random"},
		"zero upload":       {"MAX_UPLOAD_BYTES": "0"},
		"zero concurrency":  {"FETCH_CONCURRENCY": "0"},
		"domain not a url":  {"API_DOMAIN": "not a url"},
		"unknown log level": {"LOG_LEVEL": "loud"},
		"negative storage":  {"STORAGE_TTL": "-1"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(env))
			assert.Error(t, err)
		})
	}
}

func TestFromLookup_ReportsEveryParseError(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{"API_RPS": "x", "RATE_LIMIT_BURST": "y"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_RPS")
	assert.Contains(t, err.Error(), "RATE_LIMIT_BURST")
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proxydeck.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
app_addr = ":7000"
fetch_concurrency = 4
storage_ttl = 24
cors_origins = ["http://a.test", "http://b.test"]
`), 0o644))

	t.Chdir(dir)
	t.Setenv(FileEnv, path)
	t.Setenv("FETCH_CONCURRENCY", "6")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 6, cfg.FetchConcurrency)
	assert.Equal(t, 24*time.Hour, cfg.StorageTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.toml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadEnvFiles_DoesNotOverrideExistingEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("API_KEY=from_file\nAPI_RESOURCE=from_file\n"), 0o644))

	t.Chdir(dir)
	t.Setenv("API_KEY", "from_env")
	t.Setenv("API_RESOURCE", "")
	require.NoError(t, os.Unsetenv("API_RESOURCE"))

	LoadEnvFiles()

	assert.Equal(t, "from_env", os.Getenv("API_KEY"))
	assert.Equal(t, "from_file", os.Getenv("API_RESOURCE"))
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(
		"API_RESOURCE=from_dotenv\nAPI_VERSION=v9\nAPP_ADDR=:1111\nPROXY_CONFIG_FILE=proxydeck.toml\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "proxydeck.toml"), []byte(
		"api_resource = \"from_toml\"\napp_addr = \":2222\"\n"), 0o644))

	t.Setenv(FileEnv, "")
	t.Setenv("API_RESOURCE", "")
	t.Setenv("API_VERSION", "")
	t.Setenv("APP_ADDR", ":3333")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":3333", cfg.Addr, "environment beats the file")
	assert.Equal(t, "from_toml", cfg.APIResource, "file beats .env")
	assert.Equal(t, "v9", cfg.APIVersion, ".env beats defaults")
	assert.Equal(t, "./storage", cfg.StorageRoot)

	assert.Empty(t, os.Getenv("API_VERSION"), "Load leaves the environment untouched")
}

func TestLoad_EarlierEnvFileWins(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("API_RESOURCE=from_env_file\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("API_RESOURCE=from_local\nAPI_VERSION=v7\n"), 0o644))
	t.Setenv(FileEnv, "")
	t.Setenv("API_RESOURCE", "")
	t.Setenv("API_VERSION", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from_env_file", cfg.APIResource)
	assert.Equal(t, "v7", cfg.APIVersion)
}

