package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Camera.Width != 1280 || cfg.Camera.Height != 720 {
		t.Errorf("default dimensions = %dx%d, want 1280x720", cfg.Camera.Width, cfg.Camera.Height)
	}
	if cfg.Camera.Codec != "MJPG" {
		t.Errorf("default codec = %q, want MJPG", cfg.Camera.Codec)
	}
	if cfg.Effects.BackgroundBlur%2 != 1 {
		t.Errorf("default blur = %d, want odd", cfg.Effects.BackgroundBlur)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
camera:
  width: 640
  height: 480
effects:
  background_blur: 10
  mask_update_speed: 250
  hologram: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Camera.Width != 640 || cfg.Camera.Height != 480 {
		t.Errorf("dimensions = %dx%d, want 640x480", cfg.Camera.Width, cfg.Camera.Height)
	}
	// Unset fields keep their defaults.
	if cfg.Camera.FPS != 30 {
		t.Errorf("fps = %d, want default 30", cfg.Camera.FPS)
	}
	if cfg.Effects.BackgroundBlur != 11 {
		t.Errorf("blur = %d, want even 10 forced to 11", cfg.Effects.BackgroundBlur)
	}
	if cfg.Effects.MaskUpdateSpeed != 100 {
		t.Errorf("mask update speed = %d, want clamped 100", cfg.Effects.MaskUpdateSpeed)
	}
	if !cfg.Effects.Hologram {
		t.Error("hologram = false, want true")
	}
}

func TestAlpha(t *testing.T) {
	tests := []struct {
		speed int
		want  float64
	}{
		{0, 0},
		{50, 0.5},
		{100, 1},
		{-20, 0},
		{300, 1},
	}
	for _, tt := range tests {
		c := &Config{}
		c.Effects.MaskUpdateSpeed = tt.speed
		if got := c.Alpha(); got != tt.want {
			t.Errorf("Alpha() with speed %d = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(sub, "background.jpg")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "unrelated.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := FindFile("background.*", dir); got != target {
		t.Errorf("FindFile() = %q, want %q", got, target)
	}
	if got := FindFile("missing.*", dir); got != "" {
		t.Errorf("FindFile() = %q, want empty for no match", got)
	}
}
