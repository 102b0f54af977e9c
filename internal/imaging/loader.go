package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
)

// cachedImage is a decoded chart plus the format name reported by the decoder.
type cachedImage struct {
	img    image.Image
	format string
}

// ImageCache keeps decoded chart images keyed by file path so that repeated
// tool calls on the same chart (anchor picking, previews, digitizing) decode
// the file once.
//
// ImageCache is safe for concurrent use. Entries stay until Evict or Clear.
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("/charts/spectrum.png")
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// Load returns the decoded image at path, reading it from disk on first use.
//
// Paths are cache keys as given; a relative and an absolute path to the same
// file are cached separately.
//
// # Errors
//
//   - the file cannot be opened
//   - the file is not a PNG, JPEG or GIF image
func (c *ImageCache) Load(path string) (image.Image, error) {
	entry, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return entry.img, nil
}

func (c *ImageCache) load(path string) (cachedImage, error) {
	c.mu.RLock()
	if entry, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return entry, nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return cachedImage{}, fmt.Errorf("failed to decode image: %w", err)
	}

	entry := cachedImage{img: img, format: format}
	c.mu.Lock()
	c.images[path] = entry
	c.mu.Unlock()

	return entry, nil
}

// Evict drops the image cached under path. The next Load reads the file again.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len reports the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// ChartInfo describes a loaded chart image.
type ChartInfo struct {
	Path string `json:"path"`

	// Width and Height are in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Format is the decoder name: "png", "jpeg" or "gif".
	Format string `json:"format"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// Describe loads the chart at path into cache and reports its metadata.
func Describe(cache *ImageCache, path string) (*ChartInfo, error) {
	entry, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := entry.img.Bounds()
	return &ChartInfo{
		Path:          path,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        entry.format,
		FileSizeBytes: stat.Size(),
	}, nil
}
