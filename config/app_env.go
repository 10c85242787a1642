package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/pkg/utils"
	"github.com/joho/godotenv"
)

const AppEnvKey = "APP_ENV"

// InitializeEnvFile loads ENV_FILE (default .env) without overriding variables
// already set in the process environment. SKIP_DOTENV=true disables it.
func InitializeEnvFile(logger *log.Logger) {
	if utils.GetEnvBoolOrDefault("SKIP_DOTENV", false) {
		logger.Info("Skipping env file load (SKIP_DOTENV=true)")
		return
	}

	path := utils.GetEnvTrimmedOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(path); err != nil {
		logger.Info("No env file loaded; using process environment", "path", path, "error", err.Error())
		return
	}

	logger.Info("Environment variables loaded", "path", path)
}

func GetValueFromEnvironmentVariable(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func GetAppEnv() string {
	return strings.ToLower(strings.TrimSpace(os.Getenv(AppEnvKey)))
}

func IsProduction(appEnv string) bool {
	env := strings.ToLower(strings.TrimSpace(appEnv))
	return env == "production" || env == "prod"
}

// UnsafeDefaults lists the secrets still holding their shipped defaults.
func UnsafeDefaults(cfg *AppConfig) []string {
	var unsafe []string

	if cfg.Session.Secret == DefaultSessionSecret {
		unsafe = append(unsafe, "SESSION_SECRET")
	}
	if cfg.Admin.Password == DefaultAdminPassword {
		unsafe = append(unsafe, "ADMIN_PASSWORD")
	}

	return unsafe
}

// ValidateProductionSafety refuses production start-up while shipped secrets
// are still in place. Other environments only get a warning from the caller.
func ValidateProductionSafety(appEnv string, cfg *AppConfig) error {
	unsafe := UnsafeDefaults(cfg)
	if len(unsafe) == 0 || !IsProduction(appEnv) {
		return nil
	}

	return fmt.Errorf("refusing to start with default %s when %s=%q", strings.Join(unsafe, ", "), AppEnvKey, appEnv)
}

func sanitizeEnv(v string) string {
	s := strings.TrimSpace(v)

	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}

	return s
}
