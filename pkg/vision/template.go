package vision

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/vcaesar/imgo"
	"github.com/vitali-fedulov/images/v2"
)

// LoadTemplate decodes an image file into a Frame.
func LoadTemplate(path string) (*Frame, error) {
	img, _, err := imgo.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("%v: %s", err, path)
	}
	f := FrameFromImage(img)
	if f.Empty() {
		return nil, fmt.Errorf("%w: empty image %s", ErrInvalidInput, path)
	}
	return f, nil
}

// SaveFrame writes f to path; the format follows the file extension.
func SaveFrame(f *Frame, path string) error {
	if err := imaging.Save(f.Image(), path); err != nil {
		return fmt.Errorf("save frame %s: %w", path, err)
	}
	return nil
}

// TemplateCache keeps decoded templates by path.
type TemplateCache struct {
	mu    sync.Mutex
	items map[string]*Frame
	load  func(string) (*Frame, error)
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{items: map[string]*Frame{}, load: LoadTemplate}
}

// Get returns the cached template for path, loading it on first use.
func (c *TemplateCache) Get(path string) (*Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.items[path]; ok {
		return f, nil
	}
	f, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.items[path] = f
	return f, nil
}

func (c *TemplateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Similar reports whether two images look alike by perceptual hash.
func Similar(a, b image.Image) bool {
	hashA, sizeA := images.Hash(a)
	hashB, sizeB := images.Hash(b)
	return images.Similar(hashA, hashB, sizeA, sizeB)
}
