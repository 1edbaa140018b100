package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ironsheep/magick-tools-mcp/internal/magick"
)

// ImageStore keeps the images opened by MCP clients, keyed by handle.
//
// ImageStore is safe for concurrent use. Images removed from the store are
// destroyed, which deletes their temp files.
type ImageStore struct {
	mu     sync.RWMutex
	images map[string]*magick.Image
}

// NewImageStore creates an empty store.
func NewImageStore() *ImageStore {
	return &ImageStore{
		images: make(map[string]*magick.Image),
	}
}

// Put stores img and returns its new handle.
func (s *ImageStore) Put(img *magick.Image) string {
	handle := uuid.NewString()
	s.mu.Lock()
	s.images[handle] = img
	s.mu.Unlock()
	return handle
}

// Get returns the image for handle.
func (s *ImageStore) Get(handle string) (*magick.Image, error) {
	s.mu.RLock()
	img, ok := s.images[handle]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown image handle: %s", handle)
	}
	return img, nil
}

// Evict removes handle from the store and destroys its image.
// Unknown handles are ignored.
func (s *ImageStore) Evict(handle string) error {
	s.mu.Lock()
	img, ok := s.images[handle]
	delete(s.images, handle)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return img.Destroy()
}

// Clear destroys every stored image.
func (s *ImageStore) Clear() error {
	s.mu.Lock()
	images := s.images
	s.images = make(map[string]*magick.Image)
	s.mu.Unlock()

	var errs []error
	for _, img := range images {
		if err := img.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of stored images.
func (s *ImageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}
