// Package svdag builds, encodes and decodes sparse voxel DAGs: octrees
// flattened into linear u32 node/leaf buffers with structurally identical
// subtrees deduplicated into shared nodes.
package svdag

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"voxelrt/internal/voxel"
)

// Node tags. Every node starts with a tag word.
const (
	TagInner uint32 = 0
	TagLeaf  uint32 = 1
)

// LeafNodeWords is the fixed size of a leaf node: tag, leaf index, padding.
// Inner nodes occupy 2 + popcount(mask) words, at least 3 since an inner
// node's mask is never zero.
const LeafNodeWords = 3

// DAG is one flattened node/leaf buffer pair. Node "indices" are word
// offsets into Nodes; child offsets inside inner nodes are relative to the
// start of the buffer so they stay small enough for 16-bit packing.
type DAG struct {
	Nodes  []uint32
	Leaves []uint32

	// Root is the word offset of the root node. It is only meaningful when
	// NodeCount > 0; a root of 0 is valid data, never an emptiness sentinel.
	Root      uint32
	NodeCount uint32
}

// BuildStats reports diagnostics from one build.
type BuildStats struct {
	NodeCount uint32
	LeafCount uint32
	NodeWords int

	// CompressionRatio is 1 - (nodeWords+leafWords)/voxelCount.
	CompressionRatio float64
}

// BuildOptions selects the build variant.
type BuildOptions struct {
	// OpaqueOnly prunes leaves whose material is flagged transparent,
	// producing the second DAG used purely for occlusion tests.
	OpaqueOnly bool

	// Materials is consulted for transparency flags. Required when
	// OpaqueOnly is set.
	Materials *voxel.Table
}

type builder struct {
	grid  *voxel.Grid
	opts  BuildOptions
	nodes []uint32
	// leaves holds one entry per distinct material: leaves are deduplicated
	// by material ID alone across the whole chunk.
	leaves []uint32

	memo    map[string]uint32
	leafIdx map[voxel.Material]uint32
	count   uint32
	keyBuf  []byte
}

// Build subdivides grid into an octree and flattens it bottom-up into a
// deduplicated DAG. All-empty subtrees are pruned and never materialized;
// an all-air grid yields NodeCount 0.
func Build(grid *voxel.Grid, opts BuildOptions) (*DAG, BuildStats, error) {
	edge := grid.Edge
	if edge <= 0 || edge&(edge-1) != 0 {
		return nil, BuildStats{}, fmt.Errorf("svdag: edge length %d is not a power of two", edge)
	}
	if opts.OpaqueOnly && opts.Materials == nil {
		return nil, BuildStats{}, fmt.Errorf("svdag: opaque-only build requires a material table")
	}

	b := &builder{
		grid:    grid,
		opts:    opts,
		memo:    make(map[string]uint32),
		leafIdx: make(map[voxel.Material]uint32),
	}

	root, present := b.emit(0, 0, 0, edge)
	d := &DAG{Nodes: b.nodes, Leaves: b.leaves, NodeCount: b.count}
	if present {
		d.Root = root
	}

	stats := BuildStats{
		NodeCount: b.count,
		LeafCount: uint32(len(b.leaves)),
		NodeWords: len(b.nodes),
		CompressionRatio: 1 - float64(len(b.nodes)+len(b.leaves))/
			float64(grid.VoxelCount()),
	}
	return d, stats, nil
}

// emit builds the subtree covering the size^3 region at (x,y,z) and returns
// its word offset, or present=false when the region is entirely pruned.
func (b *builder) emit(x, y, z, size int) (off uint32, present bool) {
	if size == 1 {
		m := b.grid.At(x, y, z)
		if m == voxel.MaterialAir {
			return 0, false
		}
		if b.opts.OpaqueOnly && b.opts.Materials.IsTransparent(m) {
			return 0, false
		}
		return b.emitLeaf(m), true
	}

	half := size / 2
	var children [8]uint32
	var mask uint32
	n := 0
	for oct := 0; oct < 8; oct++ {
		cx := x + (oct&1)*half
		cy := y + (oct>>1&1)*half
		cz := z + (oct>>2&1)*half
		child, ok := b.emit(cx, cy, cz, half)
		if !ok {
			continue
		}
		mask |= 1 << oct
		children[n] = child
		n++
	}
	if mask == 0 {
		return 0, false
	}
	return b.emitInner(mask, children[:n]), true
}

func (b *builder) emitLeaf(m voxel.Material) uint32 {
	b.keyBuf = b.keyBuf[:0]
	b.keyBuf = append(b.keyBuf, 'L')
	b.keyBuf = binary.LittleEndian.AppendUint32(b.keyBuf, uint32(m))
	if off, ok := b.memo[string(b.keyBuf)]; ok {
		return off
	}

	idx, ok := b.leafIdx[m]
	if !ok {
		idx = uint32(len(b.leaves))
		b.leaves = append(b.leaves, uint32(m))
		b.leafIdx[m] = idx
	}

	off := uint32(len(b.nodes))
	b.nodes = append(b.nodes, TagLeaf, idx, 0)
	b.count++
	b.memo[string(b.keyBuf)] = off
	return off
}

func (b *builder) emitInner(mask uint32, children []uint32) uint32 {
	b.keyBuf = b.keyBuf[:0]
	b.keyBuf = append(b.keyBuf, 'I', byte(mask))
	for _, c := range children {
		b.keyBuf = binary.LittleEndian.AppendUint32(b.keyBuf, c)
	}
	if off, ok := b.memo[string(b.keyBuf)]; ok {
		return off
	}

	off := uint32(len(b.nodes))
	b.nodes = append(b.nodes, TagInner, mask)
	b.nodes = append(b.nodes, children...)
	b.count++
	b.memo[string(b.keyBuf)] = off
	return off
}

// ChildOffset returns the word offset of the child in octant oct of the
// inner node at off, given the node's occupancy mask.
func ChildOffset(nodes []uint32, off, mask, oct uint32) uint32 {
	rank := bits.OnesCount32(mask & (1<<oct - 1))
	return nodes[off+2+uint32(rank)]
}
