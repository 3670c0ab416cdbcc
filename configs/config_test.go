package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedro5g/forfly/configs"
)

func TestLoadFromYAMLAndEnv(t *testing.T) {
	t.Setenv("FORFLY_POSTGRES__HOST", "env-host")
	t.Setenv("FORFLY_REDIS__IDEMPOTENCY_TTL", "10m")

	cfg, err := config.Load("testdata")
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.App.HTTPAddr)
	assert.Equal(t, "env-host", cfg.Postgres.Host)
	assert.Equal(t, "forfly", cfg.Postgres.DB)
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, 48*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Security.LinkTTL)
	assert.Equal(t, 10*time.Minute, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, "dev", cfg.App.Env)
	assert.False(t, cfg.OIDC.Enabled())
}

func TestLoadFailsValidation(t *testing.T) {
	t.Setenv("FORFLY_APP__API_BASE_URL", "http://localhost:3333")

	_, err := config.Load("missing-dir")
	assert.EqualError(t, err, "session.secret required")
}

func TestDSNIsPinnedToUTC(t *testing.T) {
	p := config.PostgresConfig{Host: "h", Port: "5432", User: "u", Password: "p", DB: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=d port=5432 sslmode=disable TimeZone=UTC", p.DSN())
}
