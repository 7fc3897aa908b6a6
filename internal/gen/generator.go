package gen

import (
	"math"

	"voxelrt/internal/voxel"
	"voxelrt/internal/world"
)

// SeaLevel is the world height water fills up to.
const SeaLevel = 20

// Generator turns a heightmap into per-chunk voxel grids.
type Generator struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
}

// NewGenerator creates a generator with default terrain settings.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:        seed,
		scale:       1.0 / 96.0,
		baseHeight:  24,
		amp:         20,
		octaves:     4,
		persistence: 0.5,
		lacunarity:  2.0,
	}
}

// HeightAt computes the surface height (voxel Y) at world X, Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	x := float64(worldX) * g.scale
	z := float64(worldZ) * g.scale
	n := octaveNoise2D(x, z, g.seed, g.octaves, g.persistence, g.lacunarity)
	height := float64(g.baseHeight) + n*g.amp
	if height < 1 {
		height = 1
	}
	return int(math.Floor(height))
}

// GridFor fills a fresh grid for the chunk at coord. Columns get bedrock
// at world height 0, stone, dirt, then grass (or sand near water), with
// water filling the air below sea level. Chunks entirely above terrain and
// sea come back all-air.
func (g *Generator) GridFor(coord world.ChunkCoord, edge int) (*voxel.Grid, error) {
	grid, err := voxel.NewGrid(edge)
	if err != nil {
		return nil, err
	}

	baseX := int(coord.X) * edge
	baseY := int(coord.Y) * edge
	baseZ := int(coord.Z) * edge

	for lz := 0; lz < edge; lz++ {
		for lx := 0; lx < edge; lx++ {
			h := g.HeightAt(baseX+lx, baseZ+lz)
			for ly := 0; ly < edge; ly++ {
				wy := baseY + ly
				var m voxel.Material
				switch {
				case wy < 0:
					continue
				case wy == 0:
					m = voxel.MaterialBedrock
				case wy < h-3:
					m = voxel.MaterialStone
				case wy < h:
					m = voxel.MaterialDirt
				case wy == h:
					if h <= SeaLevel+1 {
						m = voxel.MaterialSand
					} else {
						m = voxel.MaterialGrass
					}
				case wy <= SeaLevel:
					m = voxel.MaterialWater
				default:
					continue
				}
				grid.Set(lx, ly, lz, m)
			}
		}
	}
	return grid, nil
}
