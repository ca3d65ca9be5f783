package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gitlab.com/web-doodle/mavis/pkg/region"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threshold != 0.8 || cfg.TicksPerSecond != 10 || cfg.MaxWait != 5*time.Second {
		t.Fatalf("unexpected search defaults %+v", cfg)
	}
	if cfg.ClickDelay != 50*time.Millisecond || cfg.Button != "left" {
		t.Fatalf("unexpected click defaults %+v", cfg)
	}
	if cfg.TesseractLanguages != "rus+eng" || cfg.TesseractBinary != "tesseract" || cfg.OCREngine != "cli" {
		t.Fatalf("unexpected ocr defaults %+v", cfg)
	}
	if cfg.Capture != "robotgo" || cfg.Matcher != "ncc" || cfg.LogLevel != "info" || cfg.Pacing != "busy-yield" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if _, ok := cfg.Fallback(); ok {
		t.Fatal("no fallback point expected by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MAVIS_THRESHOLD", "0.93")
	t.Setenv("MAVIS_MAX_WAIT", "1500ms")
	t.Setenv("MAVIS_FALLBACK_POINT", "960,520")
	t.Setenv("MAVIS_CAPTURE", "screenshot")
	t.Setenv("MAVIS_NOTIFY", "true")
	t.Setenv("MAVIS_OCR_TIMEOUT", "20s")
	t.Setenv("MAVIS_OCR_GRAYSCALE", "1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Threshold != 0.93 || cfg.MaxWait != 1500*time.Millisecond || cfg.Capture != "screenshot" || !cfg.Notify || cfg.OCRTimeout != 20*time.Second || !cfg.OCRGrayscale {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	p, ok := cfg.Fallback()
	if !ok || p != (region.Point{X: 960, Y: 520}) {
		t.Fatalf("unexpected fallback %v %v", p, ok)
	}
}

func TestLoadEnvFile(t *testing.T) {
	const key = "MAVIS_TESSERACT_LANGUAGES"
	os.Unsetenv(key)
	t.Cleanup(func() { os.Unsetenv(key) })

	path := filepath.Join(t.TempDir(), "mavis.env")
	if err := os.WriteFile(path, []byte(key+"=deu+eng\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TesseractLanguages != "deu+eng" {
		t.Fatalf("env file not applied: %q", cfg.TesseractLanguages)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatal("expected error for a missing explicit env file")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("MAVIS_THRESHOLD", "1.5")
	t.Setenv("MAVIS_TICKS_PER_SECOND", "0")
	t.Setenv("MAVIS_OCR_ENGINE", "paddle")
	_, err := Load("")
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"threshold", "ticks per second", "ocr engine"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Threshold: 0.8, TicksPerSecond: 10, MaxWait: time.Second, Pacing: "sleep",
			Button: "right", Capture: "robotgo", Matcher: "opencv", OCREngine: "gosseract",
			TesseractLanguages: "eng", LogLevel: "debug", MotionRate: 60,
		}
	}
	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	tests := map[string]func(*Config){
		"pacing":         func(c *Config) { c.Pacing = "nap" },
		"button":         func(c *Config) { c.Button = "thumb" },
		"fallback":       func(c *Config) { c.FallbackPoint = "1;2" },
		"motion rate":    func(c *Config) { c.MotionDuration = time.Second; c.MotionRate = 0 },
		"matcher":        func(c *Config) { c.Matcher = "sift" },
		"log level":      func(c *Config) { c.LogLevel = "loud" },
		"languages":      func(c *Config) { c.TesseractLanguages = " " },
		"temp dir":       func(c *Config) { c.TempDir = filepath.Join(t.TempDir(), "missing") },
		"negative delay": func(c *Config) { c.ClickDelay = -time.Millisecond },
		"ocr timeout":    func(c *Config) { c.OCRTimeout = -time.Second },
	}
	for name, mutate := range tests {
		c := valid()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion("10, 20,300,40")
	if err != nil {
		t.Fatal(err)
	}
	if r != region.FromRectangle(10, 20, 300, 40) {
		t.Fatalf("unexpected region %v", r)
	}
	for _, bad := range []string{"", "1,2,3", "1,2,3,x", "0,0,0,10", "0,0,10,-1"} {
		if _, err := ParseRegion(bad); err == nil {
			t.Fatalf("ParseRegion(%q): expected error", bad)
		}
	}
}

func TestParsePoint(t *testing.T) {
	p, err := ParsePoint("-5,7")
	if err != nil || p != (region.Point{X: -5, Y: 7}) {
		t.Fatalf("unexpected %v %v", p, err)
	}
	if _, err := ParsePoint("5"); err == nil {
		t.Fatal("expected error")
	}
}
