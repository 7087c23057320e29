package config

import "go.uber.org/zap"

// NewLogger creates a zap logger matching the configured environment.
func NewLogger(cfg Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
