package config

import "go.uber.org/zap"

func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	}
	return zap.NewExample(), nil
}
