package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment    string
	DefinitionPath string

	// RuntimeURL points the engine at a SCORM runtime endpoint, such as the
	// bundled harness. Empty means standalone mode with no persistence.
	RuntimeURL     string
	RuntimeSession string

	HarnessPort string
	RedisURL    string

	WebhookTimeoutSeconds int
}

func LoadConfig() (*Config, error) {
	// A .env file is a development convenience, not a requirement.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return &Config{
		Environment:           getEnv("ENVIRONMENT", "development"),
		DefinitionPath:        getEnv("TEST_DEFINITION", "test.json"),
		RuntimeURL:            getEnv("RUNTIME_URL", ""),
		RuntimeSession:        getEnv("RUNTIME_SESSION", "default"),
		HarnessPort:           getEnv("HARNESS_PORT", "8080"),
		RedisURL:              getEnv("REDIS_URL", ""),
		WebhookTimeoutSeconds: getEnvInt("WEBHOOK_TIMEOUT_SECONDS", 10),
	}, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
