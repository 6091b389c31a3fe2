package scenic

import "context"

// TextureHandle is a GPU-resident texture produced by a TextureCache.
// Handles are created and owned by the cache; the renderer only reads
// them during a frame.
type TextureHandle interface {
	// Size returns the texture dimensions in pixels.
	Size() (width, height int)
}

// TextureCache owns decoded image textures across frames. PrepareScene
// calls GetOrCreate for every image reference in a scene before Render
// runs; Render only ever calls GetIfCached and treats a miss as "skip
// this fill" — it never blocks on decoding.
//
// Implementations must be safe for concurrent GetOrCreate calls: scene
// preparation decodes images on a worker pool.
type TextureCache interface {
	// GetOrCreate decodes data and uploads it, keyed by ref. A ref
	// already resident is a cheap no-op. Decode failures are
	// returned but renderers treat them as skippable.
	GetOrCreate(ctx context.Context, ref string, data []byte, mime string) error

	// GetIfCached returns the resident texture for ref, if any.
	GetIfCached(ref string) (TextureHandle, bool)
}
