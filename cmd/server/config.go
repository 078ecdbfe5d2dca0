package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/oamra/tano-web-ui/internal/models"
	"gopkg.in/yaml.v3"
)

type config struct {
	Port       string `yaml:"port"`
	BackendURL string `yaml:"backendURL"`

	RequestTimeoutSeconds     int `yaml:"requestTimeoutSeconds"`
	InactivityTimeoutSeconds  int `yaml:"inactivityTimeoutSeconds"`
	SurveyShowDelaySeconds    int `yaml:"surveyShowDelaySeconds"`
	SurveyDismissDelaySeconds int `yaml:"surveyDismissDelaySeconds"`

	WelcomeMessage string               `yaml:"welcomeMessage"`
	FAQ            []models.FAQCategory `yaml:"faq"`

	Log logConfig `yaml:"log"`
}

type logConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// loadConfig reads the YAML configuration at path and applies environment overrides.
// A missing file is not an error; the environment alone can configure the server.
func loadConfig(path string) (config, error) {
	cfg := config{
		Port:                  "8080",
		RequestTimeoutSeconds: 30,
		Log: logConfig{
			Level:      "info",
			MaxSizeMB:  20,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return config{}, fmt.Errorf("error decoding config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return config{}, fmt.Errorf("error opening config file: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if backendURL := os.Getenv("TANO_BACKEND_URL"); backendURL != "" {
		cfg.BackendURL = backendURL
	}

	if cfg.BackendURL == "" {
		return config{}, fmt.Errorf("backendURL is required (set it in %s or via TANO_BACKEND_URL)", path)
	}

	return cfg, nil
}

func (c config) requestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c config) inactivityTimeout() time.Duration {
	return time.Duration(c.InactivityTimeoutSeconds) * time.Second
}

func (c config) surveyShowDelay() time.Duration {
	return time.Duration(c.SurveyShowDelaySeconds) * time.Second
}

func (c config) surveyDismissDelay() time.Duration {
	return time.Duration(c.SurveyDismissDelaySeconds) * time.Second
}

func (c logConfig) slogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
