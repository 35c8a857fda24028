// Package config loads settings for the folio binaries from the
// environment, after reading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Scorer names
const (
	ScorerHeuristic = "heuristic"
	ScorerGemini    = "gemini"
)

type Config struct {
	Workers     int
	PageTimeout time.Duration

	Scorer       string
	GeminiAPIKey string
	GeminiModel  string

	OCRLanguages string
	OCRDPI       int
	OCRMaxPixels int
	Pdftoppm     string

	LogLevel  string
	OutputDir string
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. Variables already set in the environment win over the files.
// Missing files are ignored; invalid values are logged and replaced by
// their defaults.
func Load(files ...string) *Config {
	_ = godotenv.Load(files...)

	return &Config{
		Workers:      getEnvInt("FOLIO_WORKERS", 4),
		PageTimeout:  getEnvDuration("FOLIO_PAGE_TIMEOUT", 60*time.Second),
		Scorer:       strings.ToLower(getEnv("FOLIO_SCORER", ScorerHeuristic)),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("FOLIO_GEMINI_MODEL", "gemini-1.5-flash"),
		OCRLanguages: getEnv("FOLIO_OCR_LANGUAGES", "eng+fra"),
		OCRDPI:       getEnvInt("FOLIO_OCR_DPI", 300),
		OCRMaxPixels: getEnvInt("FOLIO_OCR_MAX_PIXELS", 5000),
		Pdftoppm:     getEnv("FOLIO_PDFTOPPM", "pdftoppm"),
		LogLevel:     getEnv("FOLIO_LOG_LEVEL", "info"),
		OutputDir:    getEnv("FOLIO_OUTPUT_DIR", "results"),
	}
}

// Validate reports settings that cannot work together
func (c *Config) Validate() error {
	var errs []error
	switch c.Scorer {
	case ScorerHeuristic:
	case ScorerGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("FOLIO_SCORER=gemini requires GEMINI_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown FOLIO_SCORER %q", c.Scorer))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("FOLIO_LOG_LEVEL: %w", err))
	}
	return errors.Join(errs...)
}

// Logger returns a text logger at the configured level
func (c *Config) Logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt reads a positive integer
func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		logrus.Warnf("%s=%q is not a positive integer, using default %d", key, v, def)
		return def
	}
	return n
}

// getEnvDuration reads a duration such as "90s", or a whole number of seconds
func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		logrus.Warnf("%s=%q is not a duration, using default %v", key, v, def)
		return def
	}
	return d
}
