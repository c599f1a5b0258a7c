package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gsa-backend", cfg.App.Name)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 3, cfg.DB.MaxRetries)
	assert.Equal(t, 14*24*time.Hour, cfg.Billing.AcceptanceTokenTTL)
	assert.Equal(t, "0 8 * * *", cfg.Reminders.Cron)
	assert.True(t, cfg.Reminders.Enabled)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "20-M", cfg.RateLimit.Public)
}

func TestLoad_SinSecretoFueraDeDesarrollo(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_PublicBaseURLSinBarraFinal(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("PUBLIC_BASE_URL", "https://erp.gsa.test/")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://erp.gsa.test", cfg.Billing.PublicBaseURL)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "gsa", Password: "p@ss:w", DBName: "gsa", SSLMode: "disable"}
	assert.Equal(t, "postgres://gsa:p%40ss%3Aw@db:5432/gsa?sslmode=disable", c.DSN())
	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
