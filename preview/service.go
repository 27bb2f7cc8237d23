package preview

import (
	"context"
	"fmt"
	"image"

	"go_editor/editor"
)

// ImageFetcher retrieves raw source image bytes by storage key.
// imagorclient.Client satisfies this with FetchImage.
type ImageFetcher interface {
	FetchImage(ctx context.Context, key string) ([]byte, error)
}

// Service renders thumbnail previews by fetching the session's source
// images and compositing them locally. It trades fidelity for latency:
// no imagor render round-trip, one cheap fetch per distinct source.
type Service struct {
	fetcher ImageFetcher
	maxSize int
}

// NewService creates a preview service. maxSize caps the longest thumbnail
// edge; zero or negative means DefaultMaxSize.
func NewService(fetcher ImageFetcher, maxSize int) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{fetcher: fetcher, maxSize: maxSize}
}

// Render composes a PNG thumbnail for the state. Layer sources that fail
// to fetch or decode are skipped rather than failing the whole preview;
// the base image is required.
func (s *Service) Render(ctx context.Context, state editor.State) ([]byte, error) {
	baseData, err := s.fetcher.FetchImage(ctx, state.Source)
	if err != nil {
		return nil, fmt.Errorf("preview: fetch base image: %w", err)
	}
	base, err := DecodeImage(baseData)
	if err != nil {
		return nil, fmt.Errorf("preview: decode base image: %w", err)
	}

	layerImages := make(map[string]image.Image)
	for _, layer := range state.Layers {
		data, err := s.fetcher.FetchImage(ctx, layer.Source)
		if err != nil {
			continue
		}
		img, err := DecodeImage(data)
		if err != nil {
			continue
		}
		layerImages[layer.ID] = img
	}

	composed, err := Compose(state, base, layerImages, s.maxSize)
	if err != nil {
		return nil, err
	}
	return EncodePNG(composed)
}
