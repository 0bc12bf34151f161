package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		apiURLEnvVar, tokenEnvVar, stateDirEnvVar, redisURLEnvVar, logLevelEnvVar,
		logFileEnvVar, pageSizeEnvVar, timeoutEnvVar, metricsFileEnvVar,
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, DefaultAPIURL, cfg.APIURL)
	require.Equal(t, DefaultPageSize, cfg.PageSize)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, dir, cfg.StateDir)
	require.Equal(t, filepath.Join(dir, "session.json"), cfg.SessionPath())
	require.Equal(t, filepath.Join(dir, "nksadmin.log"), cfg.LogPath())
	require.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yml := "api_url: http://localhost:5000/api\npage_size: 25\ntimeout: 5s\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:5000/api", cfg.APIURL)
	require.Equal(t, 25, cfg.PageSize)
	require.Equal(t, 5*time.Second, cfg.Timeout)
	require.Equal(t, "debug", cfg.LogLevel)

	t.Setenv(apiURLEnvVar, "https://staging.example.com/api")
	t.Setenv(pageSizeEnvVar, "50")
	t.Setenv(tokenEnvVar, "envtoken")
	cfg, err = Load(dir)
	require.NoError(t, err)
	require.Equal(t, "https://staging.example.com/api", cfg.APIURL)
	require.Equal(t, 50, cfg.PageSize)
	require.Equal(t, "envtoken", cfg.Token)
	require.Equal(t, "debug", cfg.LogLevel, "file value survives when env is unset")
}

func TestLoadStateDirFromEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(stateDirEnvVar, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, dir, cfg.StateDir)
}

func TestLoadBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(timeoutEnvVar, "soon")
	_, err := Load(t.TempDir())
	require.ErrorContains(t, err, timeoutEnvVar)
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("page_size: [\n"), 0o600))
	_, err := Load(dir)
	require.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	cfg := Defaults(t.TempDir())
	cfg.APIURL = "ftp://example.com"
	require.Error(t, cfg.Validate())

	cfg = Defaults(t.TempDir())
	cfg.Timeout = 0
	require.Error(t, cfg.Validate())

	cfg = Defaults(t.TempDir())
	cfg.PageSize = -1
	require.Error(t, cfg.Validate())
}

func TestSaveOmitsToken(t *testing.T) {
	clearEnv(t)
	dir := filepath.Join(t.TempDir(), "state")
	cfg := Defaults(dir)
	cfg.Token = "secret"
	cfg.RedisURL = "redis://localhost:6379/0"
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(cfg.ConfigPath())
	require.NoError(t, err)
	require.NotContains(t, string(data), "secret")

	info, err := os.Stat(cfg.ConfigPath())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, cfg.RedisURL, loaded.RedisURL)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("NKS_TEST_VALUE", "")
	require.Equal(t, "fallback", GetEnv("NKS_TEST_VALUE", "fallback"))
	t.Setenv("NKS_TEST_VALUE", "set")
	require.Equal(t, "set", GetEnv("NKS_TEST_VALUE", "fallback"))
}
