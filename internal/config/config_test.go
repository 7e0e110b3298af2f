package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "postgres", cfg.Limiter.Backend)
	require.Equal(t, time.Minute, cfg.Limiter.Window)
	require.Equal(t, int64(30), cfg.Limiter.Max)
	require.Equal(t, 15*time.Minute, cfg.Limiter.BlockFor)
	require.Equal(t, 24*time.Hour, cfg.Quote.TTL)
	require.Equal(t, "reflect:invalidate", cfg.Invalidate.Channel)
	require.NotEmpty(t, cfg.Client.DataDir)

	require.Error(t, cfg.ValidateServer())
	require.NoError(t, cfg.ValidateClient())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REFLECT_DATABASE_DSN", "postgres://u:p@db/reflect")
	t.Setenv("REFLECT_AUTH_HS256_SECRET", "s3cret")
	t.Setenv("REFLECT_LIMITER_BACKEND", "redis")
	t.Setenv("REFLECT_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REFLECT_LIMITER_WINDOW", "30s")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "postgres://u:p@db/reflect", cfg.Database.DSN)
	require.Equal(t, "redis", cfg.Limiter.Backend)
	require.Equal(t, 30*time.Second, cfg.Limiter.Window)
	require.NoError(t, cfg.ValidateServer())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	content := `
database:
  dsn: postgres://file/reflect
auth:
  rs256_public_key_file: /etc/reflect/jwks.pem
  issuer: https://issuer.example
limiter:
  backend: memcache
cors:
  allowed_origins:
    - https://reflect.example
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "postgres://file/reflect", cfg.Database.DSN)
	require.Equal(t, "https://issuer.example", cfg.Auth.Issuer)
	require.Equal(t, []string{"https://reflect.example"}, cfg.CORS.AllowedOrigins)

	err = cfg.ValidateServer()
	require.ErrorContains(t, err, "limiter.backend")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REFLECT_PIXABAY_API_KEY=from-dotenv\n"), 0o600))
	// godotenv sets the process env; make sure it is restored afterwards
	t.Setenv("REFLECT_PIXABAY_API_KEY", "")
	require.NoError(t, os.Unsetenv("REFLECT_PIXABAY_API_KEY"))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.Pixabay.APIKey)
}
