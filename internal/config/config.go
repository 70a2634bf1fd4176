package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/juju/errors"
)

// Config holds all configurable paths and loader settings.
type Config struct {
	// Paths
	AssetDir  string `json:"asset_dir" env:"SPRITES_ASSET_DIR"`
	Manifest  string `json:"manifest" env:"SPRITES_MANIFEST"`
	OutputDir string `json:"output_dir" env:"SPRITES_OUTPUT_DIR"`

	// Loader settings
	FetchWorkers        int `json:"fetch_workers" env:"SPRITES_FETCH_WORKERS"`
	FetchTimeoutSeconds int `json:"fetch_timeout_seconds" env:"SPRITES_FETCH_TIMEOUT_SECONDS"`

	// Export settings
	FrameSize int `json:"frame_size" env:"SPRITES_FRAME_SIZE"`
	Workers   int `json:"workers" env:"SPRITES_WORKERS"`

	// Logging config for loggo, such as "<root>=INFO;sprites.assets=DEBUG".
	Log string `json:"log" env:"SPRITES_LOG"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Annotatef(err, "config: read %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Annotatef(err, "config: parse %s", path)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from SPRITES_* environment variables.
// Unset variables leave fields untouched.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return errors.Annotate(err, "config: parse env")
	}
	return nil
}

// FetchTimeout is the HTTP timeout for remote sources; zero means none.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file and environment
	if flags.AssetDir != "" {
		c.AssetDir = flags.AssetDir
	}
	if flags.Manifest != "" {
		c.Manifest = flags.Manifest
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.FrameSize > 0 {
		c.FrameSize = flags.FrameSize
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Log != "" {
		c.Log = flags.Log
	}

	// Auto-detect asset dir if still empty
	if c.AssetDir == "" {
		c.AssetDir = detectAssetDir()
	}

	// Resolve relative paths against the asset dir
	if c.AssetDir != "" {
		if c.Manifest == "" {
			c.Manifest = findManifest(c.AssetDir)
		} else if !filepath.IsAbs(c.Manifest) {
			c.Manifest = filepath.Join(c.AssetDir, c.Manifest)
		}

		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(filepath.Dir(c.AssetDir), "sprite-exports")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.AssetDir, c.OutputDir)
		}
	}

	// Defaults for loader and export settings
	if c.FrameSize <= 0 {
		c.FrameSize = 128
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.FetchWorkers <= 0 {
		c.FetchWorkers = 4
	}
	if c.FetchTimeoutSeconds < 0 {
		c.FetchTimeoutSeconds = 0
	}
	if c.Log == "" {
		c.Log = "<root>=INFO"
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	AssetDir  string
	Manifest  string
	OutputDir string
	FrameSize int
	Workers   int
	Log       string
}

func detectAssetDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir)} {
			if isDir(filepath.Join(base, "assets")) {
				return filepath.Join(base, "assets")
			}
		}
	}

	// Try current working directory and its parent
	cwd, _ := os.Getwd()
	for _, base := range []string{cwd, filepath.Dir(cwd)} {
		if isDir(filepath.Join(base, "assets")) {
			return filepath.Join(base, "assets")
		}
	}

	return ""
}

func findManifest(assetDir string) string {
	candidates := []string{
		filepath.Join(assetDir, "bundles.yaml"),
		filepath.Join(assetDir, "bundles.yml"),
		filepath.Join(assetDir, "config", "bundles.yaml"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return candidates[0]
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
