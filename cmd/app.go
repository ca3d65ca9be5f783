package main

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/gen2brain/beeep"
	cli "github.com/spf13/cobra"

	"gitlab.com/web-doodle/mavis/pkg/action"
	"gitlab.com/web-doodle/mavis/pkg/config"
	"gitlab.com/web-doodle/mavis/pkg/input"
	"gitlab.com/web-doodle/mavis/pkg/logging"
	"gitlab.com/web-doodle/mavis/pkg/ocr"
	"gitlab.com/web-doodle/mavis/pkg/ocr/gosseract"
	"gitlab.com/web-doodle/mavis/pkg/poll"
	"gitlab.com/web-doodle/mavis/pkg/robot"
	"gitlab.com/web-doodle/mavis/pkg/screen"
	"gitlab.com/web-doodle/mavis/pkg/vision"
	"gitlab.com/web-doodle/mavis/pkg/vision/opencv"
)

const debugDir = "./tmp/debug"

// App holds what the commands share. Collaborators that touch the display
// are built on first use so commands like compare run headless.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	closeLog func()

	capturer   screen.Capturer
	robot      *robot.Robot
	dispatcher *action.Dispatcher
}

func setup(cmd *cli.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := applyRootFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.DebugDir != "" {
		if err := os.MkdirAll(cfg.DebugDir, 0755); err != nil {
			return err
		}
	}
	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	app.cfg, app.logger, app.closeLog = cfg, logger, closeLog
	logger.Debug("config loaded", "capture", cfg.Capture, "matcher", cfg.Matcher, "ocr", cfg.OCREngine)
	return nil
}

func teardown(cmd *cli.Command, args []string) {
	if app.closeLog != nil {
		app.closeLog()
	}
}

// applyRootFlags copies explicitly set root flags over the loaded config.
func applyRootFlags(cmd *cli.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if flags.Changed("capture") {
		cfg.Capture, _ = flags.GetString("capture")
	}
	if flags.Changed("matcher") {
		cfg.Matcher, _ = flags.GetString("matcher")
	}
	if flags.Changed("notify") {
		cfg.Notify, _ = flags.GetBool("notify")
	}
	if debug, _ := flags.GetBool("debug"); debug {
		cfg.LogLevel = "debug"
		if cfg.DebugDir == "" {
			cfg.DebugDir = debugDir
		}
	}
	return cfg.Validate()
}

func (a *App) Capturer() (screen.Capturer, error) {
	if a.capturer == nil {
		c, err := screen.New(a.cfg.Capture)
		if err != nil {
			return nil, err
		}
		a.capturer = c
	}
	return a.capturer, nil
}

func (a *App) Robot() *robot.Robot {
	if a.robot == nil {
		a.robot = robot.New(a.logger)
	}
	return a.robot
}

func (a *App) Matcher() *vision.Matcher {
	opts := []vision.MatcherOption{vision.WithLogger(a.logger)}
	if a.cfg.Matcher == "opencv" {
		opts = append(opts, vision.WithCorrelator(opencv.NewCorrelator(a.cfg.DebugDir)))
	}
	return vision.NewMatcher(opts...)
}

func (a *App) OCR() ocr.Engine {
	if a.cfg.OCREngine == "gosseract" {
		return gosseract.New(a.cfg.TesseractLanguages)
	}
	c := ocr.NewCLI(a.cfg.TesseractBinary, a.cfg.TesseractLanguages, a.logger)
	c.Timeout = a.cfg.OCRTimeout
	return c
}

// Dispatcher builds the action dispatcher from the current config. Commands
// adjust a.cfg from their own flags before calling it.
func (a *App) Dispatcher() (*action.Dispatcher, error) {
	if a.dispatcher != nil {
		return a.dispatcher, nil
	}
	c, err := a.Capturer()
	if err != nil {
		return nil, err
	}
	cfg := a.cfg
	button, err := input.ParseButton(cfg.Button)
	if err != nil {
		return nil, err
	}
	pacing, _ := poll.ParsePacing(cfg.Pacing)
	w, h := screen.Size()

	opts := []action.Option{
		action.WithLogger(a.logger),
		action.WithBounds(w, h),
		action.WithClickDelay(cfg.ClickDelay),
		action.WithButton(button),
		action.WithTempDir(cfg.TempDir),
		action.WithMatcher(a.Matcher()),
		action.WithPollOptions(
			poll.WithTicksPerSecond(cfg.TicksPerSecond),
			poll.WithMaxWait(cfg.MaxWait),
			poll.WithPacing(pacing),
		),
	}
	if p, ok := cfg.Fallback(); ok {
		opts = append(opts, action.WithFallbackPoint(p))
	}
	if cfg.MotionDuration > 0 {
		opts = append(opts, action.WithMotion(input.Motion{
			Duration:       cfg.MotionDuration,
			MovesPerSecond: cfg.MotionRate,
		}))
	}
	if pre := ocrPreprocess(cfg); pre != nil {
		opts = append(opts, action.WithPreprocess(pre))
	}
	a.dispatcher = action.New(c, a.Robot(), a.OCR(), opts...)
	return a.dispatcher, nil
}

// ocrPreprocess picks the frame filter applied before OCR. Enhance already
// works in grayscale, so it wins when both are set.
func ocrPreprocess(cfg *config.Config) func(image.Image) (image.Image, error) {
	switch {
	case cfg.OCREnhance:
		return opencv.IntensifyText
	case cfg.OCRGrayscale:
		return opencv.Grayscale
	}
	return nil
}

// Notify shows a desktop notification when --notify is on.
func (a *App) Notify(message string) {
	if !a.cfg.Notify {
		return
	}
	if err := beeep.Notify("mavis", message, ""); err != nil {
		a.logger.Warn("desktop notification failed", "error", err)
	}
}

// Spinner starts a spinner on stderr unless debug logging would interleave
// with it.
func (a *App) Spinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + suffix
	if a.cfg.LogLevel != "debug" {
		s.Start()
	}
	return s
}

func printf(cmd *cli.Command, format string, args ...interface{}) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
