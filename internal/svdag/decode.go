package svdag

import (
	"math/bits"

	"voxelrt/internal/voxel"
)

// ReconstructGrid decodes the DAG depth-first and re-derives the material
// of every voxel, reproducing the grid the DAG was built from. Used by
// round-trip verification and offline tooling.
func (d *DAG) ReconstructGrid(edge int) (*voxel.Grid, error) {
	g, err := voxel.NewGrid(edge)
	if err != nil {
		return nil, err
	}
	if d.NodeCount == 0 {
		return g, nil
	}
	d.fill(g, d.Root, 0, 0, 0, edge)
	return g, nil
}

func (d *DAG) fill(g *voxel.Grid, off uint32, x, y, z, size int) {
	if d.Nodes[off] == TagLeaf {
		m := voxel.Material(d.Leaves[d.Nodes[off+1]])
		for dz := 0; dz < size; dz++ {
			for dy := 0; dy < size; dy++ {
				for dx := 0; dx < size; dx++ {
					g.Set(x+dx, y+dy, z+dz, m)
				}
			}
		}
		return
	}

	mask := d.Nodes[off+1]
	half := size / 2
	for oct := uint32(0); oct < 8; oct++ {
		if mask&(1<<oct) == 0 {
			continue
		}
		cx := x + int(oct&1)*half
		cy := y + int(oct>>1&1)*half
		cz := z + int(oct>>2&1)*half
		d.fill(g, ChildOffset(d.Nodes, off, mask, oct), cx, cy, cz, half)
	}
}

// Validate walks the DAG from the root and checks structural invariants:
// inner masks are non-zero, child offsets stay inside the node buffer and
// leaf indices stay inside the leaf buffer. Intended for decode paths fed
// by external producers.
func (d *DAG) Validate() error {
	if d.NodeCount == 0 {
		return nil
	}
	return d.validateNode(d.Root, 0)
}

func (d *DAG) validateNode(off uint32, depth int) error {
	if depth > 32 {
		return errCorrupt("node chain deeper than any power-of-two grid allows")
	}
	if int(off)+LeafNodeWords > len(d.Nodes) {
		return errCorrupt("node offset past end of node buffer")
	}
	switch d.Nodes[off] {
	case TagLeaf:
		if int(d.Nodes[off+1]) >= len(d.Leaves) {
			return errCorrupt("leaf index past end of leaf buffer")
		}
		if d.Leaves[d.Nodes[off+1]] == uint32(voxel.MaterialAir) {
			return errCorrupt("air stored as a reachable leaf")
		}
		return nil
	case TagInner:
		mask := d.Nodes[off+1]
		if mask == 0 || mask > 0xFF {
			return errCorrupt("inner node with empty or oversized mask")
		}
		n := bits.OnesCount32(mask)
		if int(off)+2+n > len(d.Nodes) {
			return errCorrupt("inner node children past end of node buffer")
		}
		for oct := uint32(0); oct < 8; oct++ {
			if mask&(1<<oct) == 0 {
				continue
			}
			if err := d.validateNode(ChildOffset(d.Nodes, off, mask, oct), depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return errCorrupt("unknown node tag")
	}
}

type corruptError string

func errCorrupt(msg string) error { return corruptError(msg) }

func (e corruptError) Error() string { return "svdag: corrupt graph: " + string(e) }
