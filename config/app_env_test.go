package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/akeren/event-registration/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func safeConfig() *AppConfig {
	return &AppConfig{
		Admin:   AdminConfig{Username: "admin", Password: "a-long-password"},
		Session: SessionConfig{Secret: "a-long-secret"},
	}
}

func TestValidateProductionSafety_AllowsDefaultsOutsideProduction(t *testing.T) {
	cfg := safeConfig()
	cfg.Session.Secret = DefaultSessionSecret
	cfg.Admin.Password = DefaultAdminPassword

	for _, env := range []string{"", "dev", "development", "local", "test", "staging"} {
		env := env
		t.Run(env, func(t *testing.T) {
			assert.NoError(t, ValidateProductionSafety(env, cfg))
		})
	}
}

func TestValidateProductionSafety_RejectsDefaultsInProduction(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"session secret": func(c *AppConfig) { c.Session.Secret = DefaultSessionSecret },
		"admin password": func(c *AppConfig) { c.Admin.Password = DefaultAdminPassword },
	}

	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			cfg := safeConfig()
			mutate(cfg)

			for _, env := range []string{"production", "prod", " Production "} {
				assert.Error(t, ValidateProductionSafety(env, cfg), "env %q", env)
			}
		})
	}
}

func TestValidateProductionSafety_AcceptsOverriddenSecrets(t *testing.T) {
	assert.NoError(t, ValidateProductionSafety("production", safeConfig()))
}

func TestNewAppConfig_Defaults(t *testing.T) {
	for _, key := range []string{"MONGO_URI", "MONGO_DB_NAME", "MONGO_CONNECT_TIMEOUT", "ADMIN_USERNAME", "ADMIN_PASSWORD", "SESSION_SECRET", "SESSION_TTL", "SESSION_COOKIE_SECURE", "DISPLAY_TIMEZONE", "REPORT_TITLE", "APP_ENV"} {
		t.Setenv(key, "")
	}

	cfg := NewAppConfig()

	assert.Equal(t, DefaultMongoURI, cfg.Store.URI)
	assert.Equal(t, DefaultMongoDatabase, cfg.Store.DatabaseName)
	assert.Equal(t, 3*time.Second, cfg.Store.ConnectTimeout)
	assert.Equal(t, 12*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Equal(t, "Laksha Kantha Geetha Parayana Registrations", cfg.ReportTitle)
	require.NotNil(t, cfg.DisplayLocation)

	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).In(cfg.DisplayLocation).Zone()
	assert.Equal(t, 5*60*60+30*60, offset)
}

func TestNewAppConfig_Overrides(t *testing.T) {
	t.Setenv("MONGO_URI", `"mongodb://db:27017"`)
	t.Setenv("MONGO_DB_NAME", "events")
	t.Setenv("MONGO_CONNECT_TIMEOUT", "5s")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")
	t.Setenv("REPORT_TITLE", "Volunteers")

	cfg := NewAppConfig()

	assert.Equal(t, "mongodb://db:27017", cfg.Store.URI)
	assert.Equal(t, "events", cfg.Store.DatabaseName)
	assert.Equal(t, 5*time.Second, cfg.Store.ConnectTimeout)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, time.UTC, cfg.DisplayLocation)
	assert.Equal(t, "Volunteers", cfg.ReportTitle)
}

func TestUnsafeDefaults_ListsEachDefaultSecret(t *testing.T) {
	cfg := safeConfig()
	assert.Empty(t, UnsafeDefaults(cfg))

	cfg.Session.Secret = DefaultSessionSecret
	cfg.Admin.Password = DefaultAdminPassword
	assert.Equal(t, []string{"SESSION_SECRET", "ADMIN_PASSWORD"}, UnsafeDefaults(cfg))
}

func TestInitializeEnvFile_DoesNotOverrideProcessEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("REPORT_TITLE=From file\nMONGO_DB_NAME=from_file\n"), 0o600))

	t.Setenv("SKIP_DOTENV", "")
	t.Setenv("ENV_FILE", path)
	t.Setenv("REPORT_TITLE", "From process")
	t.Setenv("MONGO_DB_NAME", "")
	require.NoError(t, os.Unsetenv("MONGO_DB_NAME"))

	InitializeEnvFile(log.NewLoggerWithJSONOutput())

	assert.Equal(t, "From process", os.Getenv("REPORT_TITLE"))
	assert.Equal(t, "from_file", os.Getenv("MONGO_DB_NAME"))
	require.NoError(t, os.Unsetenv("MONGO_DB_NAME"))
}
