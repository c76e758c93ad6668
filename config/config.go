// Package config holds the immutable configuration snapshot the pipeline
// is started with.
package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration surface. Values are fixed at startup;
// only the camera's renegotiation of actual width/height overrides them
// implicitly at run time.
type Config struct {
	Camera  CameraConfig  `yaml:"camera"`
	Output  OutputConfig  `yaml:"output"`
	Images  ImagesConfig  `yaml:"images"`
	Effects EffectsConfig `yaml:"effects"`
	Model   ModelConfig   `yaml:"model"`
	Logging LoggingConfig `yaml:"logging"`
}

type CameraConfig struct {
	Path   string `yaml:"path"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	FPS    int    `yaml:"fps"`
	Codec  string `yaml:"codec"`
}

type OutputConfig struct {
	// LoopbackPath is the v4l2loopback device frames are written to.
	LoopbackPath string `yaml:"loopback_path"`
	// WatchPath is the device path observed for consumer open/close
	// events. Usually a second loopback endpoint of the same device.
	WatchPath string `yaml:"watch_path"`
	// NoOnDemand keeps processing even with no consumers attached.
	NoOnDemand bool `yaml:"no_on_demand"`
}

type ImagesConfig struct {
	// Folder is searched recursively for the first file matching each
	// pattern below.
	Folder                string `yaml:"folder"`
	BackgroundPattern     string `yaml:"background_pattern"`
	ForegroundPattern     string `yaml:"foreground_pattern"`
	ForegroundMaskPattern string `yaml:"foreground_mask_pattern"`
}

type EffectsConfig struct {
	NoBackground    bool `yaml:"no_background"`
	TileBackground  bool `yaml:"tile_background"`
	BackgroundBlur  int  `yaml:"background_blur"`
	KeepAspect      bool `yaml:"keep_aspect"`
	NoForeground    bool `yaml:"no_foreground"`
	Hologram        bool `yaml:"hologram"`
	MaskUpdateSpeed int  `yaml:"mask_update_speed"` // 0-100
}

type ModelConfig struct {
	Path        string `yaml:"path"`
	LibraryPath string `yaml:"library_path"`
	InputWidth  int    `yaml:"input_width"`
	InputHeight int    `yaml:"input_height"`
	InputName   string `yaml:"input_name"`
	OutputName  string `yaml:"output_name"`
	UseCUDA     bool   `yaml:"use_cuda"`
}

type LoggingConfig struct {
	Buffered   bool `yaml:"buffered"`
	AutoFlush  bool `yaml:"auto_flush"`
	SampleRate int  `yaml:"sample_rate"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			Path:   "/dev/video0",
			Width:  1280,
			Height: 720,
			FPS:    30,
			Codec:  "MJPG",
		},
		Output: OutputConfig{
			LoopbackPath: "/dev/video4",
			WatchPath:    "/dev/video5",
		},
		Images: ImagesConfig{
			Folder:                ".",
			BackgroundPattern:     "background.*",
			ForegroundPattern:     "foreground.*",
			ForegroundMaskPattern: "foreground-mask.*",
		},
		Effects: EffectsConfig{
			BackgroundBlur:  25,
			MaskUpdateSpeed: 50,
		},
		Model: ModelConfig{
			Path: "selfie_segmentation.onnx",
		},
		Logging: LoggingConfig{
			SampleRate: 300,
		},
	}
}

// Load reads configuration from a YAML file over the defaults and
// normalizes the result. A missing file is not an error: the defaults
// are returned so the tool runs without any configuration at all.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.Normalize()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Normalize()
	return cfg, nil
}

// Normalize forces dependent values into their valid ranges: the blur
// kernel must be odd and the mask update speed is a percentage.
func (c *Config) Normalize() {
	c.Effects.BackgroundBlur = nextOdd(c.Effects.BackgroundBlur)
	c.Effects.MaskUpdateSpeed = clampPercent(c.Effects.MaskUpdateSpeed)
}

// Alpha converts the mask update speed percentage to the smoothing
// coefficient.
func (c *Config) Alpha() float64 {
	return float64(clampPercent(c.Effects.MaskUpdateSpeed)) / 100
}

func nextOdd(n int) int {
	if n%2 == 0 {
		return n + 1
	}
	return n
}

func clampPercent(n int) int {
	return min(max(n, 0), 100)
}

// FindFile walks dir and returns the first file whose base name matches
// pattern (shell-style globbing). An empty string means no match.
func FindFile(pattern, dir string) string {
	var found string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	return found
}
