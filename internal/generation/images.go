package generation

import "context"

// ImageStore persists generated image bytes and returns a stable
// reference for them. Generators never hand raw image bytes to callers;
// results carry the reference instead.
type ImageStore interface {
	// SaveImage stores the image under the given name and returns the
	// reference callers should persist.
	SaveImage(ctx context.Context, name, mimeType string, data []byte) (string, error)
}
