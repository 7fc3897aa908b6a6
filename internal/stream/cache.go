// Package stream is the client-side chunk streaming layer: a worker pool
// that fulfills the tracer's chunk-load requests by generating and building
// SVDAG chunks, an injectable cache for built payloads, and installation of
// finished chunks into the registry between frames.
package stream

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"voxelrt/internal/world"
)

// Cache stores encoded chunk payloads keyed by coordinate. Implementations
// must be safe for concurrent use by build workers.
type Cache interface {
	Load(coord world.ChunkCoord) ([]byte, bool, error)
	Store(coord world.ChunkCoord, payload []byte) error
}

// NullCache never hits.
type NullCache struct{}

func (NullCache) Load(world.ChunkCoord) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Store(world.ChunkCoord, []byte) error        { return nil }

// DiskCache keeps zstd-compressed chunk payloads in one directory, one
// file per chunk.
type DiskCache struct {
	dir string
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewDiskCache creates dir if needed and prepares the codec.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("stream: create cache dir: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir, enc: enc, dec: dec}, nil
}

func (c *DiskCache) path(coord world.ChunkCoord) string {
	return filepath.Join(c.dir, fmt.Sprintf("chunk_%d_%d_%d.svdag.zst", coord.X, coord.Y, coord.Z))
}

// Load returns the decompressed payload, or found=false when absent.
func (c *DiskCache) Load(coord world.ChunkCoord) ([]byte, bool, error) {
	raw, err := os.ReadFile(c.path(coord))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stream: read cached chunk: %w", err)
	}
	payload, err := c.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, false, fmt.Errorf("stream: decompress cached chunk: %w", err)
	}
	return payload, true, nil
}

// Store compresses and writes the payload. A torn write is avoided by
// writing to a temp file and renaming.
func (c *DiskCache) Store(coord world.ChunkCoord, payload []byte) error {
	compressed := c.enc.EncodeAll(payload, nil)
	tmp := c.path(coord) + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("stream: write cached chunk: %w", err)
	}
	return os.Rename(tmp, c.path(coord))
}
