package config

import (
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// LoadDotEnv loads variables from .env files into the process environment.
// Existing variables are never overridden.
func LoadDotEnv(logger *zap.Logger, files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logger.Warn("No .env file found, using environment variables")
	}
}
