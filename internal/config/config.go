package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed recognition.yaml
var recognitionYAML []byte

type Config struct {
	Database    DatabaseConfig
	Recognition RecognitionConfig
	Extractor   ExtractorConfig
	API         APIConfig
}

type DatabaseConfig struct {
	URL           string // PostgreSQL connection URL
	MaxOpenConns  int    // Maximum open connections (default 25)
	MaxIdleConns  int    // Maximum idle connections (default 5)
	HNSWIndexPath string // Path to persist the roster HNSW index (optional, if empty index is rebuilt on startup)
}

// RecognitionConfig controls the matching and debounce behavior of the
// recognition loop. Defaults come from the embedded recognition.yaml and can
// be overridden per-deployment via environment variables.
type RecognitionConfig struct {
	DistanceThreshold float64 `yaml:"distance_threshold"`
	RequiredHits      int     `yaml:"required_hits"`
	FrameIntervalMs   int     `yaml:"frame_interval_ms"`
}

type ExtractorConfig struct {
	URL string // Descriptor extractor endpoint (e.g. http://localhost:8500)
}

type APIConfig struct {
	URL string // Base URL of the attendance API, used by the watch command (e.g. http://localhost:8080)
}

type recognitionDefaults struct {
	Recognition RecognitionConfig `yaml:"recognition"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var defaults recognitionDefaults
	if err := yaml.Unmarshal(recognitionYAML, &defaults); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded recognition.yaml: " + err.Error())
	}
	rec := defaults.Recognition

	return &Config{
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
		Recognition: RecognitionConfig{
			DistanceThreshold: envFloat("RECOGNITION_THRESHOLD", rec.DistanceThreshold),
			RequiredHits:      envInt("RECOGNITION_REQUIRED_HITS", rec.RequiredHits),
			FrameIntervalMs:   envInt("RECOGNITION_INTERVAL_MS", rec.FrameIntervalMs),
		},
		Extractor: ExtractorConfig{
			URL: os.Getenv("EXTRACTOR_URL"),
		},
		API: APIConfig{
			URL: os.Getenv("ATTENDANCE_API_URL"),
		},
	}
}
