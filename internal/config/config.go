package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kpauljoseph/pagemark/internal/geometry"
	"github.com/kpauljoseph/pagemark/internal/history"
	"github.com/kpauljoseph/pagemark/internal/session"
	"github.com/kpauljoseph/pagemark/pkg/models"
)

const (
	EnvAddr           = "PAGEMARK_ADDR"
	EnvLogLevel       = "PAGEMARK_LOG_LEVEL"
	EnvOutputDir      = "PAGEMARK_OUTPUT_DIR"
	EnvAllowedOrigins = "PAGEMARK_ALLOWED_ORIGINS"
)

type Config struct {
	LogLevel string `yaml:"log_level"`
	Server   struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Editor struct {
		DefaultColor   string  `yaml:"default_color"`
		DefaultOpacity int     `yaml:"default_opacity"`
		HistoryLimit   int     `yaml:"history_limit"`
		MinRectSize    float64 `yaml:"min_rect_size"`
		ZoomStep       float64 `yaml:"zoom_step"`
	} `yaml:"editor"`
	Export struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"export"`
}

// LoadEnv reads .env style files into the process environment. Missing
// files are skipped; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the YAML file at path, applies environment overrides and fills
// defaults. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.Export.OutputDir = v
	}
	if v := os.Getenv(EnvAllowedOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if c.Editor.DefaultColor == "" {
		c.Editor.DefaultColor = string(models.ColorYellow)
	}
	if c.Editor.DefaultOpacity == 0 {
		c.Editor.DefaultOpacity = 40
	}
	if c.Editor.HistoryLimit == 0 {
		c.Editor.HistoryLimit = history.DefaultLimit
	}
	if c.Editor.MinRectSize == 0 {
		c.Editor.MinRectSize = geometry.DefaultMinRectSize
	}
	if c.Editor.ZoomStep == 0 {
		c.Editor.ZoomStep = session.DefaultZoomStep
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = "."
	}
}

func (c *Config) Validate() error {
	if c.Editor.DefaultOpacity < models.MinOpacity || c.Editor.DefaultOpacity > models.MaxOpacity {
		return fmt.Errorf("editor.default_opacity must be between %d and %d, got %d",
			models.MinOpacity, models.MaxOpacity, c.Editor.DefaultOpacity)
	}
	if c.Editor.HistoryLimit < 1 {
		return fmt.Errorf("editor.history_limit must be positive, got %d", c.Editor.HistoryLimit)
	}
	if c.Editor.MinRectSize < 0 {
		return fmt.Errorf("editor.min_rect_size must not be negative, got %v", c.Editor.MinRectSize)
	}
	if c.Editor.ZoomStep <= 0 {
		return fmt.Errorf("editor.zoom_step must be positive, got %v", c.Editor.ZoomStep)
	}
	return nil
}

// EditorOptions converts the editor section for session.NewEditor.
func (c *Config) EditorOptions() session.EditorOptions {
	return session.EditorOptions{
		Sessions: session.Options{
			HistoryLimit: c.Editor.HistoryLimit,
			MinRectSize:  c.Editor.MinRectSize,
		},
		DefaultColor:   models.ColorName(c.Editor.DefaultColor),
		DefaultOpacity: c.Editor.DefaultOpacity,
		ZoomStep:       c.Editor.ZoomStep,
	}
}
