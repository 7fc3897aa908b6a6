package voxel

import "fmt"

// Grid is a dense cubic voxel grid of material IDs for one chunk.
// The edge length must be a power of two.
type Grid struct {
	Edge int
	data []Material
}

// NewGrid allocates an all-air grid. A non-power-of-two edge is a
// configuration error and fails fast.
func NewGrid(edge int) (*Grid, error) {
	if edge <= 0 || edge&(edge-1) != 0 {
		return nil, fmt.Errorf("voxel: grid edge %d is not a power of two", edge)
	}
	return &Grid{
		Edge: edge,
		data: make([]Material, edge*edge*edge),
	}, nil
}

func (g *Grid) index(x, y, z int) int {
	return (z*g.Edge+y)*g.Edge + x
}

// At returns the material at local coordinates. Out-of-bounds reads are air.
func (g *Grid) At(x, y, z int) Material {
	if x < 0 || x >= g.Edge || y < 0 || y >= g.Edge || z < 0 || z >= g.Edge {
		return MaterialAir
	}
	return g.data[g.index(x, y, z)]
}

// Set writes the material at local coordinates. Out-of-bounds writes are dropped.
func (g *Grid) Set(x, y, z int, m Material) {
	if x < 0 || x >= g.Edge || y < 0 || y >= g.Edge || z < 0 || z >= g.Edge {
		return
	}
	g.data[g.index(x, y, z)] = m
}

// Fill sets every voxel to m.
func (g *Grid) Fill(m Material) {
	for i := range g.data {
		g.data[i] = m
	}
}

// IsEmpty reports whether the grid contains only air.
func (g *Grid) IsEmpty() bool {
	for _, m := range g.data {
		if m != MaterialAir {
			return false
		}
	}
	return true
}

// VoxelCount returns the total number of voxels.
func (g *Grid) VoxelCount() int {
	return len(g.data)
}

// Equal reports whether two grids have identical contents.
func (g *Grid) Equal(o *Grid) bool {
	if g.Edge != o.Edge {
		return false
	}
	for i := range g.data {
		if g.data[i] != o.data[i] {
			return false
		}
	}
	return true
}
