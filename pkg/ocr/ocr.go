// Package ocr turns image files into text. The default engine runs the
// tesseract command line tool out of process.
package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"gitlab.com/web-doodle/mavis/pkg/logging"
	"gitlab.com/web-doodle/mavis/pkg/region"
)

var (
	// ErrOCR wraps every failure to extract text.
	ErrOCR = errors.New("ocr failed")
	// ErrTesseract means the tesseract process ran and exited non-zero.
	ErrTesseract = errors.New("tesseract exited with an error")
	// ErrTextNotFound means OCR ran but the requested text is not on the image.
	ErrTextNotFound = errors.New("text not found")
)

const (
	DefaultBinary    = "tesseract"
	DefaultLanguages = "rus+eng"
)

// Engine extracts the text found in the image at path.
type Engine interface {
	ExtractText(path string) (string, error)
}

// Locator is implemented by engines that report where words are. The
// returned region is in image coordinates.
type Locator interface {
	FindText(path, text string) (region.Region, error)
}

// CLI runs `tesseract <path> stdout -l <languages>`.
type CLI struct {
	Binary    string
	Languages string
	Timeout   time.Duration // zero means no limit

	logger *slog.Logger
}

func NewCLI(binary, languages string, logger *slog.Logger) *CLI {
	if binary == "" {
		binary = DefaultBinary
	}
	if languages == "" {
		languages = DefaultLanguages
	}
	return &CLI{Binary: binary, Languages: languages, logger: logging.OrDiscard(logger)}
}

func (c *CLI) ExtractText(path string) (string, error) {
	ctx := context.Background()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Binary, path, "stdout", "-l", c.Languages)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %s gave no result within %s", ErrOCR, c.Binary, c.Timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %w: exit status %d: %s",
				ErrOCR, ErrTesseract, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("%w: run %s: %v", ErrOCR, c.Binary, err)
	}
	c.logger.Debug("tesseract done", "path", path, "languages", c.Languages, "bytes", stdout.Len(), "took", time.Since(start))
	return stdout.String(), nil
}

// SplitLanguages turns "rus+eng" into ["rus", "eng"].
func SplitLanguages(langs string) []string {
	var out []string
	for _, l := range strings.Split(langs, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
