package config

import (
	_ "embed"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Media    MediaConfig
	Detect   DetectConfig
	Database DatabaseConfig
	Workers  int
	Defaults Defaults
}

type MediaConfig struct {
	Dir           string // root directory of the blob store (default ./media)
	WatermarkPath string // blob-store path of the watermark overlay asset (optional)
}

type DetectConfig struct {
	PoseServiceURL  string // pose landmark sidecar base URL (optional)
	FaceCascadePath string // pigo facefinder cascade file (optional)
}

type DatabaseConfig struct {
	URL          string // PostgreSQL URL for the face-vector cache (optional)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// Defaults carries the embedded empirical defaults. Both thresholds are
// configurable; neither value has a documented derivation, so they are
// preserved as-is rather than treated as invariants.
type Defaults struct {
	DiscardThreshold   float64 `yaml:"discard_threshold"`
	FaceMatchThreshold float64 `yaml:"face_match_threshold"`
	WatermarkOpacity   float64 `yaml:"watermark_opacity"`
	JPEGQuality        int     `yaml:"jpeg_quality"`
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

// envFloat reads an environment variable as a float64 with a fallback.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return defaultVal
}

func Load() *Config {
	var defaults Defaults
	if err := yaml.Unmarshal(defaultsYAML, &defaults); err != nil {
		// Embedded file, so this can only be a build-time mistake.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}

	defaults.DiscardThreshold = envFloat("DISCARD_THRESHOLD", defaults.DiscardThreshold)
	defaults.FaceMatchThreshold = envFloat("FACE_MATCH_THRESHOLD", defaults.FaceMatchThreshold)
	defaults.WatermarkOpacity = envFloat("WATERMARK_OPACITY", defaults.WatermarkOpacity)

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "./media"
	}

	return &Config{
		Media: MediaConfig{
			Dir:           mediaDir,
			WatermarkPath: os.Getenv("WATERMARK_ASSET_PATH"),
		},
		Detect: DetectConfig{
			PoseServiceURL:  os.Getenv("POSE_SERVICE_URL"),
			FaceCascadePath: os.Getenv("FACE_CASCADE_PATH"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Workers:  envInt("PIPELINE_WORKERS", runtime.NumCPU()),
		Defaults: defaults,
	}
}
