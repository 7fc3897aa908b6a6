// Package world holds the resident-chunk registry: per-chunk SVDAG
// metadata, the shared node/leaf buffers, the spatial hash index, the
// coarse meta-occupancy grid and the chunk-request queue.
package world

import "math"

// ChunkCoord is an integer chunk-grid coordinate.
type ChunkCoord struct {
	X, Y, Z int32
}

// DefaultChunkEdge is the default voxels-per-side of one chunk.
const DefaultChunkEdge = 32

// Hash mixes a chunk coordinate with the fixed 3-prime XOR hash. It must
// stay stable across runs: the index layout is part of the determinism
// contract.
func (c ChunkCoord) Hash() uint32 {
	return uint32(c.X)*0x9e3779b1 ^ uint32(c.Y)*0x85ebca6b ^ uint32(c.Z)*0xc2b2ae35
}

// Add returns c offset by (dx, dy, dz).
func (c ChunkCoord) Add(dx, dy, dz int32) ChunkCoord {
	return ChunkCoord{c.X + dx, c.Y + dy, c.Z + dz}
}

// CoordOf returns the chunk coordinate containing the world position.
func CoordOf(x, y, z float32, edge uint32) ChunkCoord {
	e := float64(edge)
	return ChunkCoord{
		X: int32(math.Floor(float64(x) / e)),
		Y: int32(math.Floor(float64(y) / e)),
		Z: int32(math.Floor(float64(z) / e)),
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
