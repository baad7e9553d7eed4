package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Fixed pipeline configuration. The backend endpoint, model and prompt are
// process-wide constants; env vars only override them for local setups.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2-vision"
	DefaultTimeout = 60 * time.Second

	// DefaultPrompt is the fixed OCR instruction sent with every request.
	DefaultPrompt = "Perform OCR on this image. Return ONLY the raw extracted text with:\n" +
		"- No formatting\n" +
		"- No XML/HTML tags\n" +
		"- No markdown\n" +
		"- No explanations\n" +
		"- Preserve line breaks accurately from the visual layout.\n" +
		"If no text found, return an empty response."
)

type Config struct {
	BaseURL           string
	Model             string
	Prompt            string
	RequestTimeout    time.Duration
	Hotkey            string
	EnableFileLogging bool
}

// Load reads optional .env overrides and returns the resolved configuration.
// Missing .env files are not an error; defaults apply.
func Load() (*Config, error) {
	// Try to load .env from the current directory or the executable directory.
	envPaths := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		envPaths = append(envPaths, filepath.Join(filepath.Dir(execPath), ".env"))
	}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			break
		}
	}

	timeout := DefaultTimeout
	if v := os.Getenv("OCR_DEADLINE_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			timeout = time.Duration(n) * time.Second
		}
	}

	cfg := &Config{
		BaseURL:           strings.TrimRight(getEnvWithDefault("OLLAMA_URL", DefaultBaseURL), "/"),
		Model:             getEnvWithDefault("MODEL", DefaultModel),
		Prompt:            DefaultPrompt,
		RequestTimeout:    timeout,
		Hotkey:            getEnvWithDefault("HOTKEY", "Ctrl+Alt+Q"),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
