// Package config loads pipeline configuration from the environment and from
// an optional YAML engines file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds everything the pipeline reads from the environment.
type Settings struct {
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	PyannoteServerURL string
	PyannoteAuthToken string
	DatabasePath      string
	PostgresDSN       string
	WorkDir           string
	OutputDir         string
	ProcessTimeout    time.Duration
}

// LoadEnv loads variables from the first .env file found near the working
// directory. Missing files are fine; system-wide environment still applies.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	return nil
}

// FromEnv reads settings from the environment, applying defaults for the
// local paths.
func FromEnv() (*Settings, error) {
	s := &Settings{
		OpenAIAPIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:     strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
		PyannoteServerURL: strings.TrimSpace(os.Getenv("PYANNOTE_SERVER_URL")),
		PyannoteAuthToken: strings.TrimSpace(os.Getenv("HF_AUTH_TOKEN")),
		DatabasePath:      strings.TrimSpace(os.Getenv("ECHOSCRIBE_DB")),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		WorkDir:           strings.TrimSpace(os.Getenv("ECHOSCRIBE_WORK_DIR")),
		OutputDir:         strings.TrimSpace(os.Getenv("ECHOSCRIBE_OUTPUT_DIR")),
	}

	if s.WorkDir == "" {
		s.WorkDir = "downloads"
	}
	if s.OutputDir == "" {
		s.OutputDir = "results"
	}
	if s.DatabasePath == "" {
		s.DatabasePath = "data/echoscribe.db"
	}

	if raw := strings.TrimSpace(os.Getenv("ECHOSCRIBE_TIMEOUT_SEC")); raw != "" {
		sec, err := strconv.Atoi(raw)
		if err != nil || sec < 0 {
			return nil, fmt.Errorf("invalid ECHOSCRIBE_TIMEOUT_SEC %q", raw)
		}
		s.ProcessTimeout = time.Duration(sec) * time.Second
	}

	if s.OpenAIAPIKey != "" && !strings.HasPrefix(s.OpenAIAPIKey, "sk-") {
		return nil, fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
	}

	return s, nil
}

// RequireEngines validates that both inference engines are configured.
// Operations that run the full pipeline fail fast without them.
func (s *Settings) RequireEngines() error {
	var missing []string
	if s.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if s.PyannoteServerURL == "" {
		missing = append(missing, "PYANNOTE_SERVER_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("processing requires %s in environment or .env file", strings.Join(missing, " and "))
	}
	return nil
}
