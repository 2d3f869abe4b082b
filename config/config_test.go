package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDecodesYAML(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: shop.db
mail:
  apiUrl: https://mail.example.com
  timeout: 5s
  maxAttempts: 3
notify:
  mode: queue
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "shop.db", cfg.Database.DSN)
	assert.Equal(t, 5*time.Second, cfg.Mail.Timeout)
	assert.Equal(t, 3, cfg.Mail.MaxAttempts)
	assert.Equal(t, NotifyQueue, cfg.Notify.Mode)
	// 未設定的欄位保留預設值
	assert.Equal(t, "Möbelhaus <noreply@manus.space>", cfg.Mail.From)
	assert.Equal(t, "app_session_id", cfg.Auth.CookieName)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, NotifyDirect, cfg.Notify.Mode)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwtSecret: from-file\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_env")
	t.Setenv("REDIS_DB", "2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "whsec_env", cfg.Stripe.WebhookSecret)
	assert.Equal(t, 2, cfg.Redis.Database)
}

func TestInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "two")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe.webhookSecret")
	assert.Contains(t, err.Error(), "auth.jwtSecret")

	cfg.Stripe.WebhookSecret = "whsec_x"
	cfg.Auth.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Notify.Mode = NotifyQueue
	assert.Error(t, cfg.Validate())
	cfg.RabbitMQ.URL = "amqp://localhost"
	assert.NoError(t, cfg.Validate())

	cfg.Notify.Mode = "carrier-pigeon"
	assert.Error(t, cfg.Validate())
}

func TestFrontendOrigins(t *testing.T) {
	server := ServerConfig{
		PublicBaseURL: "https://shop.example.com/",
		AllowOrigins:  []string{"*", "https://admin.example.com", "https://shop.example.com"},
	}
	assert.Equal(t, []string{"https://admin.example.com", "https://shop.example.com"}, server.FrontendOrigins())
	assert.Empty(t, ServerConfig{AllowOrigins: []string{"*"}}.FrontendOrigins())
}

func TestSetupDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := SetupDatabase(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestSetupDatabaseSQLite(t *testing.T) {
	db, err := SetupDatabase(DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "shop.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	_ = sqlDB.Close()
}
