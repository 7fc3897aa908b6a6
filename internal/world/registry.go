package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelrt/internal/svdag"
)

// Chunk is the registry's per-chunk metadata. Created once when a chunk is
// installed and immutable afterwards. Word offsets inside the node buffer
// stay relative to Base; Root is absolute.
type Chunk struct {
	Coord  ChunkCoord
	Origin mgl32.Vec3
	Edge   uint32

	// Material DAG. NodeWords is the authoritative emptiness test: a chunk
	// with NodeWords == 0 has no geometry, while Root == Base is a valid
	// first-node root, not a sentinel.
	Root      uint32
	Base      uint32
	NodeWords uint32
	LeafBase  uint32
	LeafCount uint32

	// Opaque-only DAG, used for occlusion tests.
	OpaqueRoot      uint32
	OpaqueBase      uint32
	OpaqueNodeWords uint32
	OpaqueLeafBase  uint32
	OpaqueLeafCount uint32
}

// Empty reports whether the chunk carries no geometry.
func (c *Chunk) Empty() bool { return c.NodeWords == 0 }

const (
	indexEmpty = int32(-1)

	// MaxProbe bounds linear probing. Exceeding it during registration is a
	// capacity error: the table must be sized with enough slack (load
	// factor target around 0.4) that probe sequences stay short.
	MaxProbe = 64
)

// Registry owns all resident-chunk state shared read-only by ray workers
// during a frame: chunk metadata, the flattened node/leaf buffers, the
// open-addressed coordinate index and the meta-occupancy grid. Mutation
// (Register) happens only between frames.
type Registry struct {
	Edge   uint32
	Nodes  []uint32
	Leaves []uint32

	chunks []Chunk
	index  []int32
	meta   *MetaGrid
}

// NewRegistry sizes the hash index for the expected resident-chunk count
// at roughly 0.4 load factor (rounded up to a power of two so the hash
// reduces with a mask).
func NewRegistry(edge uint32, expectedChunks int, meta *MetaGrid) *Registry {
	size := 64
	for size*2 < expectedChunks*5 {
		size *= 2
	}
	idx := make([]int32, size)
	for i := range idx {
		idx[i] = indexEmpty
	}
	return &Registry{Edge: edge, index: idx, meta: meta}
}

// Meta returns the meta-occupancy grid (may be nil when skipping is off).
func (r *Registry) Meta() *MetaGrid { return r.meta }

// Len returns the number of registered chunks.
func (r *Registry) Len() int { return len(r.chunks) }

// Chunk returns the metadata for a registry slot.
func (r *Registry) Chunk(slot int) *Chunk { return &r.chunks[slot] }

// Register appends the chunk's DAG buffers and metadata and inserts the
// coordinate into the hash index. Registering a coordinate twice returns
// the existing slot. Exhausting the probe bound is a fatal capacity error;
// entries are never removed within a session.
func (r *Registry) Register(coord ChunkCoord, data *svdag.ChunkData) (int, error) {
	if data.Edge != r.Edge {
		return 0, fmt.Errorf("world: chunk edge %d does not match registry edge %d", data.Edge, r.Edge)
	}
	if slot, ok := r.Lookup(coord); ok {
		return slot, nil
	}

	mask := uint32(len(r.index) - 1)
	h := coord.Hash() & mask
	probe := 0
	for ; probe < MaxProbe; probe++ {
		if r.index[h] == indexEmpty {
			break
		}
		h = (h + 1) & mask
	}
	if probe == MaxProbe {
		return 0, fmt.Errorf("world: chunk index probe bound exceeded at %d chunks; table under-sized", len(r.chunks))
	}

	e := float32(r.Edge)
	c := Chunk{
		Coord:  coord,
		Origin: mgl32.Vec3{float32(coord.X) * e, float32(coord.Y) * e, float32(coord.Z) * e},
		Edge:   r.Edge,

		Base:      uint32(len(r.Nodes)),
		NodeWords: uint32(len(data.Material.Nodes)),
		LeafBase:  uint32(len(r.Leaves)),
		LeafCount: uint32(len(data.Material.Leaves)),
	}
	c.Root = c.Base + data.Material.Root
	r.Nodes = append(r.Nodes, data.Material.Nodes...)
	r.Leaves = append(r.Leaves, data.Material.Leaves...)

	c.OpaqueBase = uint32(len(r.Nodes))
	c.OpaqueNodeWords = uint32(len(data.Opaque.Nodes))
	c.OpaqueLeafBase = uint32(len(r.Leaves))
	c.OpaqueLeafCount = uint32(len(data.Opaque.Leaves))
	c.OpaqueRoot = c.OpaqueBase + data.Opaque.Root
	r.Nodes = append(r.Nodes, data.Opaque.Nodes...)
	r.Leaves = append(r.Leaves, data.Opaque.Leaves...)

	slot := len(r.chunks)
	r.chunks = append(r.chunks, c)
	r.index[h] = int32(slot)

	r.MarkOccupancy(coord, c.Empty())
	return slot, nil
}

// Lookup probes the index for coord. An empty slot encountered while
// probing is authoritative proof of absence (no tombstones). A hash match
// alone does not imply identity: the stored chunk's coordinate is
// recomputed from its world origin and compared coordinate-wise.
func (r *Registry) Lookup(coord ChunkCoord) (int, bool) {
	mask := uint32(len(r.index) - 1)
	h := coord.Hash() & mask
	for probe := 0; probe < MaxProbe; probe++ {
		slot := r.index[h]
		if slot == indexEmpty {
			return 0, false
		}
		c := &r.chunks[slot]
		e := float64(c.Edge)
		stored := ChunkCoord{
			X: int32(math.Floor(float64(c.Origin.X()) / e)),
			Y: int32(math.Floor(float64(c.Origin.Y()) / e)),
			Z: int32(math.Floor(float64(c.Origin.Z()) / e)),
		}
		if stored == coord {
			return int(slot), true
		}
		h = (h + 1) & mask
	}
	return 0, false
}

// MarkOccupancy forwards a chunk's emptiness to the meta grid.
func (r *Registry) MarkOccupancy(coord ChunkCoord, isEmpty bool) {
	if r.meta != nil {
		r.meta.Mark(coord, isEmpty)
	}
}
