package voxel

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Material identifies a voxel material. Zero is reserved for air and is
// never stored in a leaf; it only marks absent subtrees during builds.
type Material uint16

const (
	MaterialAir Material = iota
	MaterialStone
	MaterialDirt
	MaterialGrass
	MaterialSand
	MaterialWater
	MaterialBedrock
)

// MaterialDebug is the reserved diagnostic material substituted by the
// traversal fail-safe path (stack overflow on a pathological graph).
const MaterialDebug Material = 0xFFFF

// MaterialDef holds the render attributes of one material.
type MaterialDef struct {
	ID    Material
	Name  string
	Color mgl32.Vec3

	// Transparent materials accumulate as layers instead of terminating
	// the ray. Absorption is the per-unit-thickness opacity density used
	// by the compositor.
	Transparent bool
	Absorption  float32
}

// Table maps material IDs to their definitions.
type Table struct {
	defs map[Material]MaterialDef
}

// NewTable creates an empty material table.
func NewTable() *Table {
	return &Table{defs: make(map[Material]MaterialDef)}
}

// Register adds or replaces a material definition.
func (t *Table) Register(def MaterialDef) {
	t.defs[def.ID] = def
}

// Get returns the definition for id. Unknown materials resolve to an
// opaque magenta placeholder so bad data stays visible instead of crashing.
func (t *Table) Get(id Material) MaterialDef {
	if def, ok := t.defs[id]; ok {
		return def
	}
	return MaterialDef{ID: id, Name: "unknown", Color: mgl32.Vec3{1, 0, 1}}
}

// IsTransparent reports whether id is a registered transparent material.
func (t *Table) IsTransparent(id Material) bool {
	return t.defs[id].Transparent
}

// DefaultTable returns the standard terrain materials.
func DefaultTable() *Table {
	t := NewTable()
	t.Register(MaterialDef{ID: MaterialStone, Name: "stone", Color: mgl32.Vec3{0.55, 0.55, 0.55}})
	t.Register(MaterialDef{ID: MaterialDirt, Name: "dirt", Color: mgl32.Vec3{0.45, 0.32, 0.2}})
	t.Register(MaterialDef{ID: MaterialGrass, Name: "grass", Color: mgl32.Vec3{0.3, 0.62, 0.25}})
	t.Register(MaterialDef{ID: MaterialSand, Name: "sand", Color: mgl32.Vec3{0.86, 0.8, 0.58}})
	t.Register(MaterialDef{ID: MaterialWater, Name: "water", Color: mgl32.Vec3{0.15, 0.35, 0.7}, Transparent: true, Absorption: 0.08})
	t.Register(MaterialDef{ID: MaterialBedrock, Name: "bedrock", Color: mgl32.Vec3{0.2, 0.2, 0.22}})
	t.Register(MaterialDef{ID: MaterialDebug, Name: "debug", Color: mgl32.Vec3{1, 0, 1}})
	return t
}
