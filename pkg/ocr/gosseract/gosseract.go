// Package gosseract runs tesseract in process through libtesseract.
package gosseract

import (
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"gitlab.com/web-doodle/mavis/pkg/ocr"
	"gitlab.com/web-doodle/mavis/pkg/region"
)

type Engine struct {
	Languages []string
}

// New accepts languages in the "rus+eng" form used by the CLI.
func New(languages string) *Engine {
	if languages == "" {
		languages = ocr.DefaultLanguages
	}
	return &Engine{Languages: ocr.SplitLanguages(languages)}
}

func (e *Engine) client(path string) (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(e.Languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: set language: %v", ocr.ErrOCR, err)
	}
	if err := client.SetImage(path); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: set image %s: %v", ocr.ErrOCR, path, err)
	}
	return client, nil
}

func (e *Engine) ExtractText(path string) (string, error) {
	client, err := e.client(path)
	if err != nil {
		return "", err
	}
	defer client.Close()

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ocr.ErrOCR, err)
	}
	return text, nil
}

// FindText returns the box of the first word, or line for multi word text,
// containing text. Matching ignores case.
func (e *Engine) FindText(path, text string) (region.Region, error) {
	client, err := e.client(path)
	if err != nil {
		return region.Region{}, err
	}
	defer client.Close()

	level := gosseract.RIL_WORD
	if strings.Contains(strings.TrimSpace(text), " ") {
		level = gosseract.RIL_TEXTLINE
	}
	boxes, err := client.GetBoundingBoxes(level)
	if err != nil {
		return region.Region{}, fmt.Errorf("%w: bounding boxes: %v", ocr.ErrOCR, err)
	}
	box, ok := findBox(boxes, text)
	if !ok {
		return region.Region{}, fmt.Errorf("%w: %q", ocr.ErrTextNotFound, text)
	}
	return region.FromImageRect(box), nil
}

func findBox(boxes []gosseract.BoundingBox, text string) (image.Rectangle, bool) {
	want := strings.ToLower(strings.TrimSpace(text))
	if want == "" {
		return image.Rectangle{}, false
	}
	for _, b := range boxes {
		if strings.Contains(strings.ToLower(b.Word), want) {
			return b.Box, true
		}
	}
	return image.Rectangle{}, false
}
