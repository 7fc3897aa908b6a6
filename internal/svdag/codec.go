package svdag

import (
	"encoding/binary"
	"fmt"

	"voxelrt/internal/voxel"
)

// Binary chunk wire format: a fixed 40-byte little-endian header followed
// by the material node words, material leaves, opaque node words and
// opaque leaves as u32 arrays. Node records are variable length (three
// words minimum), so the node-count header fields carry u32 word counts:
// that lets the decoder slice the arrays without walking the graph, and
// still serves as the emptiness test (zero words means zero nodes).
const (
	Magic         uint32 = 0x53564447 // "SVDG"
	FormatVersion uint32 = 1
	HeaderSize           = 40
)

// ChunkData is the decoded payload of one chunk: the material DAG plus the
// opaque-only DAG. Both are always built and emitted explicitly, even when
// no transparent material exists and they would be identical.
type ChunkData struct {
	Edge     uint32
	Material DAG
	Opaque   DAG
}

// BuildChunk builds both DAG variants for one voxel grid.
func BuildChunk(grid *voxel.Grid, mats *voxel.Table) (*ChunkData, BuildStats, error) {
	mat, stats, err := Build(grid, BuildOptions{})
	if err != nil {
		return nil, BuildStats{}, err
	}
	opq, _, err := Build(grid, BuildOptions{OpaqueOnly: true, Materials: mats})
	if err != nil {
		return nil, BuildStats{}, err
	}
	return &ChunkData{
		Edge:     uint32(grid.Edge),
		Material: *mat,
		Opaque:   *opq,
	}, stats, nil
}

// Encode serializes c into the wire format.
func Encode(c *ChunkData) []byte {
	size := HeaderSize + 4*(len(c.Material.Nodes)+len(c.Material.Leaves)+
		len(c.Opaque.Nodes)+len(c.Opaque.Leaves))
	buf := make([]byte, 0, size)

	buf = binary.LittleEndian.AppendUint32(buf, Magic)
	buf = binary.LittleEndian.AppendUint32(buf, FormatVersion)
	buf = binary.LittleEndian.AppendUint32(buf, c.Edge)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Material.Nodes)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Material.Leaves)))
	buf = binary.LittleEndian.AppendUint32(buf, c.Material.Root)
	buf = binary.LittleEndian.AppendUint32(buf, 0) // flags, reserved
	buf = binary.LittleEndian.AppendUint32(buf, 0) // checksum, reserved
	buf = binary.LittleEndian.AppendUint32(buf, c.Opaque.Root)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Opaque.Nodes)))

	buf = appendWords(buf, c.Material.Nodes)
	buf = appendWords(buf, c.Material.Leaves)
	buf = appendWords(buf, c.Opaque.Nodes)
	buf = appendWords(buf, c.Opaque.Leaves)
	return buf
}

// Decode parses the wire format. The opaque leaf array runs to the end of
// the buffer; every other extent comes from the header.
func Decode(buf []byte) (*ChunkData, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("svdag: chunk payload truncated: %d bytes", len(buf))
	}
	if m := binary.LittleEndian.Uint32(buf[0:]); m != Magic {
		return nil, fmt.Errorf("svdag: bad magic 0x%08x", m)
	}
	if v := binary.LittleEndian.Uint32(buf[4:]); v != FormatVersion {
		return nil, fmt.Errorf("svdag: unsupported format version %d", v)
	}

	edge := binary.LittleEndian.Uint32(buf[8:])
	matNodeWords := binary.LittleEndian.Uint32(buf[12:])
	matLeafCount := binary.LittleEndian.Uint32(buf[16:])
	matRoot := binary.LittleEndian.Uint32(buf[20:])
	opqRoot := binary.LittleEndian.Uint32(buf[32:])
	opqNodeWords := binary.LittleEndian.Uint32(buf[36:])

	words := buf[HeaderSize:]
	if len(words)%4 != 0 {
		return nil, fmt.Errorf("svdag: payload not word-aligned")
	}
	total := uint32(len(words) / 4)
	fixed := matNodeWords + matLeafCount + opqNodeWords
	if fixed > total {
		return nil, fmt.Errorf("svdag: header counts exceed payload (%d words > %d)", fixed, total)
	}

	all := make([]uint32, total)
	for i := range all {
		all[i] = binary.LittleEndian.Uint32(words[4*i:])
	}

	c := &ChunkData{Edge: edge}
	pos := uint32(0)
	c.Material.Nodes = all[pos : pos+matNodeWords]
	pos += matNodeWords
	c.Material.Leaves = all[pos : pos+matLeafCount]
	pos += matLeafCount
	c.Opaque.Nodes = all[pos : pos+opqNodeWords]
	pos += opqNodeWords
	c.Opaque.Leaves = all[pos:]

	c.Material.Root = matRoot
	c.Material.NodeCount = countNodes(c.Material.Nodes)
	c.Opaque.Root = opqRoot
	c.Opaque.NodeCount = countNodes(c.Opaque.Nodes)

	if err := c.Material.Validate(); err != nil {
		return nil, err
	}
	if err := c.Opaque.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func appendWords(buf []byte, words []uint32) []byte {
	for _, w := range words {
		buf = binary.LittleEndian.AppendUint32(buf, w)
	}
	return buf
}

// countNodes scans a node word array front to back. Nodes are emitted
// contiguously by the builder, so record boundaries follow from each
// record's own tag and mask.
func countNodes(nodes []uint32) uint32 {
	var n uint32
	for off := 0; off+LeafNodeWords <= len(nodes); {
		if nodes[off] == TagLeaf {
			off += LeafNodeWords
		} else {
			k := 0
			for oct := uint32(0); oct < 8; oct++ {
				if nodes[off+1]&(1<<oct) != 0 {
					k++
				}
			}
			off += 2 + k
		}
		n++
	}
	return n
}
