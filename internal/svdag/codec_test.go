package svdag_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelrt/internal/svdag"
	"voxelrt/internal/voxel"
)

func buildTestChunk(t *testing.T) *svdag.ChunkData {
	t.Helper()
	g := mustGrid(t, 16)
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			h := 4 + (x+z)%3
			for y := 0; y < h; y++ {
				g.Set(x, y, z, voxel.MaterialStone)
			}
			g.Set(x, h, z, voxel.MaterialGrass)
			if h < 5 {
				g.Set(x, h+1, z, voxel.MaterialWater)
			}
		}
	}
	cd, _, err := svdag.BuildChunk(g, voxel.DefaultTable())
	require.NoError(t, err)
	return cd
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cd := buildTestChunk(t)

	buf := svdag.Encode(cd)
	require.GreaterOrEqual(t, len(buf), svdag.HeaderSize)
	assert.Equal(t, uint32(svdag.Magic), binary.LittleEndian.Uint32(buf[0:4]))

	back, err := svdag.Decode(buf)
	require.NoError(t, err)

	assert.Equal(t, cd.Edge, back.Edge)
	assert.Equal(t, cd.Material.Root, back.Material.Root)
	assert.Equal(t, cd.Material.Nodes, back.Material.Nodes)
	assert.Equal(t, cd.Material.Leaves, back.Material.Leaves)
	assert.Equal(t, cd.Material.NodeCount, back.Material.NodeCount)
	assert.Equal(t, cd.Opaque.Root, back.Opaque.Root)
	assert.Equal(t, cd.Opaque.Nodes, back.Opaque.Nodes)
	assert.Equal(t, cd.Opaque.Leaves, back.Opaque.Leaves)
	assert.Equal(t, cd.Opaque.NodeCount, back.Opaque.NodeCount)
}

func TestEncodeDecodeEmptyChunk(t *testing.T) {
	g := mustGrid(t, 16)
	cd, _, err := svdag.BuildChunk(g, voxel.DefaultTable())
	require.NoError(t, err)

	buf := svdag.Encode(cd)

	back, err := svdag.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), back.Material.NodeCount)
	assert.Equal(t, uint32(0), back.Opaque.NodeCount)
	assert.Empty(t, back.Material.Nodes)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := svdag.Encode(buildTestChunk(t))

	binary.LittleEndian.PutUint32(buf[0:4], 0xDEADBEEF)
	_, err := svdag.Decode(buf)
	assert.Error(t, err)
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	buf := svdag.Encode(buildTestChunk(t))

	binary.LittleEndian.PutUint32(buf[4:8], svdag.FormatVersion+1)
	_, err := svdag.Decode(buf)
	assert.Error(t, err)
}

func TestDecodeRejectsTruncation(t *testing.T) {
	buf := svdag.Encode(buildTestChunk(t))

	_, err := svdag.Decode(buf[:svdag.HeaderSize-1])
	assert.Error(t, err)

	_, err = svdag.Decode(buf[:len(buf)-4])
	assert.Error(t, err)

	_, err = svdag.Decode(nil)
	assert.Error(t, err)
}

func TestDecodeRejectsCorruptNodes(t *testing.T) {
	buf := svdag.Encode(buildTestChunk(t))

	// Zero out the mask of the first inner node after the leaf record.
	off := svdag.HeaderSize + int(svdag.LeafNodeWords+1)*4
	binary.LittleEndian.PutUint32(buf[off:off+4], 0)
	_, err := svdag.Decode(buf)
	assert.Error(t, err)
}
