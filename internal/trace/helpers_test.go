package trace_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"voxelrt/internal/svdag"
	"voxelrt/internal/voxel"
	"voxelrt/internal/world"
)

// fillBox sets a half-open voxel box [min, max) to one material.
func fillBox(g *voxel.Grid, x0, y0, z0, x1, y1, z1 int, m voxel.Material) {
	for z := z0; z < z1; z++ {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				g.Set(x, y, z, m)
			}
		}
	}
}

// slabGrid returns a 32^3 grid filled with stone below height.
func slabGrid(t *testing.T, height int) *voxel.Grid {
	t.Helper()
	g, err := voxel.NewGrid(32)
	require.NoError(t, err)
	fillBox(g, 0, 0, 0, 32, height, 32, voxel.MaterialStone)
	return g
}

func registerGrid(t *testing.T, reg *world.Registry, coord world.ChunkCoord, g *voxel.Grid) int {
	t.Helper()
	cd, _, err := svdag.BuildChunk(g, voxel.DefaultTable())
	require.NoError(t, err)
	slot, err := reg.Register(coord, cd)
	require.NoError(t, err)
	return slot
}

func registerEmpty(t *testing.T, reg *world.Registry, coord world.ChunkCoord, edge int) int {
	t.Helper()
	g, err := voxel.NewGrid(edge)
	require.NoError(t, err)
	return registerGrid(t, reg, coord, g)
}

func registerSolid(t *testing.T, reg *world.Registry, coord world.ChunkCoord, edge int) int {
	t.Helper()
	g, err := voxel.NewGrid(edge)
	require.NoError(t, err)
	g.Fill(voxel.MaterialStone)
	return registerGrid(t, reg, coord, g)
}
