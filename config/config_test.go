package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("ENV", "")
	chdir(t, t.TempDir())
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, StoreMemory, cfg.Server.Store)
	assert.Equal(t, 24*time.Hour, cfg.Server.TokenTTL)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, EventsNone, cfg.Events.Backend)
	assert.Equal(t, "ecocycle-account-events", cfg.Events.Channel)
	assert.True(t, strings.HasSuffix(cfg.Credentials.DurablePath(), filepath.Join("ecocycle", "token")))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ECOCYCLE_API_BASE_URL", "https://api.ecocycle.example/api")
	t.Setenv("ECOCYCLE_LOGGING_LEVEL", "debug")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("DB_PORT", "6543")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.ecocycle.example/api", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "legacy-secret", cfg.Server.JWTSecret)
	assert.Equal(t, 6543, cfg.Database.Port)
}

func TestLoadConfig_File(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "ecocycle.yaml")
	content := `
api:
  base_url: http://10.0.0.5:5000/api
  timeout: 5s
credentials:
  session_key: tty7
server:
  store: postgres
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, StorePostgres, cfg.Server.Store)
	assert.Equal(t, "session-tty7", filepath.Base(cfg.Credentials.EphemeralPath()))
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	isolate(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("ECOCYCLE_LOGGING_FORMAT", "xml")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging format")
}

func TestLoadConfig_Events(t *testing.T) {
	isolate(t)
	t.Setenv("ECOCYCLE_EVENTS_BACKEND", "rabbitmq")
	t.Setenv("RABBITMQ_URL", "amqp://ecocycle:secret@mq:5672/")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, EventsRabbitMQ, cfg.Events.Backend)
	assert.Equal(t, "amqp://ecocycle:secret@mq:5672/", cfg.Events.RabbitMQ.URL)
	assert.Equal(t, 10, cfg.Events.RabbitMQ.PrefetchCount)
	assert.Equal(t, "mailer", cfg.Events.ConsumerGroup)

	t.Setenv("ECOCYCLE_EVENTS_BACKEND", "kafka")
	_, err = LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid events backend")
}

func TestEphemeralPath_SanitizesKey(t *testing.T) {
	c := CredentialsConfig{SessionDir: "/run/ecocycle", SessionKey: "../../etc/passwd"}
	assert.Equal(t, filepath.Join("/run/ecocycle", "session-______etc_passwd"), c.EphemeralPath())
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
