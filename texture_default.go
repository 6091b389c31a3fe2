// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scenic

import (
	"context"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/scenic/internal/gpu"
)

// defaultTextureBudget caps the default cache at 256 MiB of decoded
// texture data before least-recently-used eviction kicks in.
const defaultTextureBudget = 256 << 20

// deviceTextureCache adapts the GPU texture cache to the TextureCache
// interface. It is the cache a Renderer creates for itself when
// WithTextureCache is not given.
type deviceTextureCache struct {
	inner *gpu.Cache
}

var _ TextureCache = (*deviceTextureCache)(nil)

func newDeviceTextureCache(device hal.Device, queue hal.Queue, budget int64) *deviceTextureCache {
	return &deviceTextureCache{inner: gpu.NewTextureCache(device, queue, budget)}
}

func (c *deviceTextureCache) GetOrCreate(ctx context.Context, ref string, data []byte, mime string) error {
	return c.inner.GetOrCreate(ctx, ref, data, mime)
}

func (c *deviceTextureCache) GetIfCached(ref string) (TextureHandle, bool) {
	tex, ok := c.inner.GetIfCached(ref)
	if !ok {
		return nil, false
	}
	return tex, true
}

func (c *deviceTextureCache) destroy() {
	c.inner.Destroy()
}
