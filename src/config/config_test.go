package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":   "postgres://localhost/staff_accounts",
		"JWT_ISSUER":     "staff-accounts",
		"JWT_AUDIENCE":   "staff-accounts-api",
		"JWT_SECRET":     "0123456789abcdef0123456789abcdef",
		"ADMIN_NAME":     "Root",
		"ADMIN_INITIALS": "ADM",
		"ADMIN_PASSWORD": "seed",
	}
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("", env.Options{Environment: requiredEnv()})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.JWT.ValidateIssuer)
	assert.True(t, cfg.JWT.ValidateAudience)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, 10, cfg.Login.RequestsPerMinute)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Empty(t, cfg.TrustedProxies)

	seed := cfg.Bootstrap()
	assert.Equal(t, "Root", seed.Name)
	assert.Equal(t, "ADM", seed.Initials)
	assert.Equal(t, "seed", seed.Password)
}

func TestLoad_EnvOverrides(t *testing.T) {
	environ := requiredEnv()
	environ["PORT"] = "9090"
	environ["ALLOWED_ORIGINS"] = "https://a.example.com,https://b.example.com"
	environ["JWT_VALIDATE_AUDIENCE"] = "false"
	environ["JWT_LEEWAY"] = "30s"
	environ["BCRYPT_COST"] = "12"
	environ["TRUSTED_PROXIES"] = "10.0.0.1,192.168.0.0/16"

	cfg, err := load("", env.Options{Environment: environ})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.False(t, cfg.JWT.ValidateAudience)
	assert.Equal(t, 30*time.Second, cfg.JWT.Leeway)
	assert.Equal(t, 12, cfg.Passwords.BcryptCost)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.TrustedProxies)

	tok := cfg.Token()
	assert.Equal(t, "staff-accounts", tok.Issuer)
	assert.False(t, tok.ValidateAudience)
	assert.Equal(t, 30*time.Second, tok.Leeway)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeConfigFile(t, `
port: 7000
log_format: pretty
database:
  url: postgres://file/db
  max_conns: 5
jwt:
  issuer: file-issuer
  audience: file-audience
  secret: file-secret-file-secret-file-secret
  ttl: 2h
admin:
  name: File Root
  initials: ADM
  password: from-file
`)

	environ := map[string]string{"PORT": "7001", "ADMIN_PASSWORD": "from-env"}
	cfg, err := load(path, env.Options{Environment: environ})
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Port)
	assert.Equal(t, "pretty", cfg.LogFormat)
	assert.Equal(t, "postgres://file/db", cfg.Database.URL)
	assert.Equal(t, int32(5), cfg.Database.MaxConns)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "File Root", cfg.Admin.Name)
	assert.Equal(t, "from-env", cfg.Admin.Password)
	// untouched by the file
	assert.Equal(t, int32(2), cfg.Database.MinConns)
}

func TestLoad_MissingRequiredListsEveryKey(t *testing.T) {
	environ := requiredEnv()
	delete(environ, "JWT_SECRET")
	delete(environ, "ADMIN_PASSWORD")
	environ["ADMIN_NAME"] = "   "

	_, err := load("", env.Options{Environment: environ})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")
	assert.Contains(t, err.Error(), "ADMIN_NAME")
	assert.NotContains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_NothingSet(t *testing.T) {
	_, err := load("", env.Options{Environment: map[string]string{}})
	require.Error(t, err)
	for _, key := range []string{"DATABASE_URL", "JWT_ISSUER", "JWT_AUDIENCE", "JWT_SECRET", "ADMIN_NAME", "ADMIN_INITIALS", "ADMIN_PASSWORD"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	environ := requiredEnv()
	environ["PORT"] = "not-a-number"
	_, err := load("", env.Options{Environment: environ})
	assert.Error(t, err)

	environ = requiredEnv()
	environ["PORT"] = "70000"
	_, err = load("", env.Options{Environment: environ})
	assert.ErrorContains(t, err, "invalid PORT")

	environ = requiredEnv()
	environ["LOGIN_RATE_LIMIT"] = "0"
	_, err = load("", env.Options{Environment: environ})
	assert.ErrorContains(t, err, "LOGIN_RATE_LIMIT")

	environ = requiredEnv()
	environ["TRUSTED_PROXIES"] = "10.0.0.1,not-an-ip"
	_, err = load("", env.Options{Environment: environ})
	assert.ErrorContains(t, err, `invalid TRUSTED_PROXIES entry "not-an-ip"`)
}

func TestLoad_BadFile(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.yaml"), env.Options{Environment: requiredEnv()})
	assert.ErrorContains(t, err, "failed to read config file")

	path := writeConfigFile(t, "port: [unterminated")
	_, err = load(path, env.Options{Environment: requiredEnv()})
	assert.ErrorContains(t, err, "failed to parse config file")
}
