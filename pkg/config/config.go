// Package config loads mavis settings from the environment and an optional
// .env file. Every field has a MAVIS_ variable and a default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"

	"gitlab.com/web-doodle/mavis/pkg/input"
	"gitlab.com/web-doodle/mavis/pkg/logging"
	"gitlab.com/web-doodle/mavis/pkg/poll"
	"gitlab.com/web-doodle/mavis/pkg/region"
)

// Compatible with "github.com/caarlos0/env"
type Config struct {
	Threshold      float64       `env:"MAVIS_THRESHOLD" envDefault:"0.8"`
	TicksPerSecond int           `env:"MAVIS_TICKS_PER_SECOND" envDefault:"10"`
	MaxWait        time.Duration `env:"MAVIS_MAX_WAIT" envDefault:"5s"`
	Pacing         string        `env:"MAVIS_PACING" envDefault:"busy-yield"`

	ClickDelay     time.Duration `env:"MAVIS_CLICK_DELAY" envDefault:"50ms"`
	Button         string        `env:"MAVIS_BUTTON" envDefault:"left"`
	FallbackPoint  string        `env:"MAVIS_FALLBACK_POINT"`
	MotionDuration time.Duration `env:"MAVIS_MOTION_DURATION"`
	MotionRate     int           `env:"MAVIS_MOTION_RATE" envDefault:"120"`

	Capture  string `env:"MAVIS_CAPTURE" envDefault:"robotgo"`
	Matcher  string `env:"MAVIS_MATCHER" envDefault:"ncc"`
	DebugDir string `env:"MAVIS_DEBUG_DIR"`

	OCREngine          string        `env:"MAVIS_OCR_ENGINE" envDefault:"cli"`
	OCREnhance         bool          `env:"MAVIS_OCR_ENHANCE"`
	OCRGrayscale       bool          `env:"MAVIS_OCR_GRAYSCALE"`
	TesseractBinary    string        `env:"MAVIS_TESSERACT_BINARY" envDefault:"tesseract"`
	TesseractLanguages string        `env:"MAVIS_TESSERACT_LANGUAGES" envDefault:"rus+eng"`
	OCRTimeout         time.Duration `env:"MAVIS_OCR_TIMEOUT"`
	TempDir            string        `env:"MAVIS_TEMP_DIR"`

	LogLevel string `env:"MAVIS_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"MAVIS_LOG_FILE"`
	Notify   bool   `env:"MAVIS_NOTIFY"`
}

// Load reads envFile (or ./.env when empty) into the process environment and
// parses the configuration. A missing default .env is not an error; a missing
// explicit file is.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("cannot parse environment into config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if !(c.Threshold >= 0 && c.Threshold <= 1) {
		errs = append(errs, fmt.Errorf("threshold %v outside [0,1]", c.Threshold))
	}
	if c.TicksPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("ticks per second must be positive, got %d", c.TicksPerSecond))
	}
	if c.MaxWait < 0 {
		errs = append(errs, fmt.Errorf("max wait must not be negative, got %s", c.MaxWait))
	}
	if _, ok := poll.ParsePacing(c.Pacing); !ok {
		errs = append(errs, fmt.Errorf("unknown pacing %q", c.Pacing))
	}
	if c.ClickDelay < 0 {
		errs = append(errs, fmt.Errorf("click delay must not be negative, got %s", c.ClickDelay))
	}
	if _, err := input.ParseButton(c.Button); err != nil {
		errs = append(errs, err)
	}
	if c.FallbackPoint != "" {
		if _, err := ParsePoint(c.FallbackPoint); err != nil {
			errs = append(errs, err)
		}
	}
	if c.MotionDuration < 0 {
		errs = append(errs, fmt.Errorf("motion duration must not be negative, got %s", c.MotionDuration))
	}
	if c.MotionDuration > 0 && c.MotionRate <= 0 {
		errs = append(errs, fmt.Errorf("motion rate must be positive, got %d", c.MotionRate))
	}
	if !oneOf(c.Capture, "robotgo", "screenshot") {
		errs = append(errs, fmt.Errorf("unknown capture backend %q", c.Capture))
	}
	if !oneOf(c.Matcher, "ncc", "opencv") {
		errs = append(errs, fmt.Errorf("unknown matcher %q", c.Matcher))
	}
	if !oneOf(c.OCREngine, "cli", "gosseract") {
		errs = append(errs, fmt.Errorf("unknown ocr engine %q", c.OCREngine))
	}
	if c.OCRTimeout < 0 {
		errs = append(errs, fmt.Errorf("ocr timeout must not be negative, got %s", c.OCRTimeout))
	}
	if strings.TrimSpace(c.TesseractLanguages) == "" {
		errs = append(errs, errors.New("tesseract languages must not be empty"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.TempDir != "" {
		if fi, err := os.Stat(c.TempDir); err != nil || !fi.IsDir() {
			errs = append(errs, fmt.Errorf("temp dir %q is not a directory", c.TempDir))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Fallback returns the configured fallback click point, if any.
func (c *Config) Fallback() (region.Point, bool) {
	if c.FallbackPoint == "" {
		return region.Point{}, false
	}
	p, err := ParsePoint(c.FallbackPoint)
	if err != nil {
		return region.Point{}, false
	}
	return p, true
}

// ParsePoint parses "x,y".
func ParsePoint(s string) (region.Point, error) {
	v, err := ints(s, 2)
	if err != nil {
		return region.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return region.Point{X: v[0], Y: v[1]}, nil
}

// ParseRegion parses "x,y,width,height".
func ParseRegion(s string) (region.Region, error) {
	v, err := ints(s, 4)
	if err != nil {
		return region.Region{}, fmt.Errorf("region %q: %w", s, err)
	}
	if v[2] <= 0 || v[3] <= 0 {
		return region.Region{}, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return region.FromRectangle(v[0], v[1], v[2], v[3]), nil
}

func ints(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated integers", n)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func oneOf(s string, options ...string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
