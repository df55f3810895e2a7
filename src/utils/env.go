package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// InitEnvironmentVariables loads .env.<goEnv> from dir when it exists.
// Production reads its secrets from the real environment only.
func InitEnvironmentVariables(dir, goEnv string) error {
	if goEnv == "production" {
		log.Info("Running in production environment")
		return nil
	}

	if goEnv == "" {
		goEnv = "development"
	}

	envFile := filepath.Join(dir, fmt.Sprintf(".env.%s", goEnv))
	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		log.Debugf("no %s file, using the process environment", envFile)
		return nil
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("InitEnvironmentVariables: failed to load %s: %w", envFile, err)
	}

	return nil
}

func GetEnv(key string) (string, error) {
	value, found := os.LookupEnv(key)
	if !found || value == "" {
		return "", fmt.Errorf("GetEnv: $%s not set", key)
	}

	return value, nil
}

func GetEnvOrDefault(key, fallback string) string {
	if value, err := GetEnv(key); err == nil {
		return value
	}

	return fallback
}
