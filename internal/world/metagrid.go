package world

// MetaGrid is a coarse occupancy index over blocks of chunks: each cell
// covers Ratio^3 chunk coordinates within a fixed window around the world
// origin. It answers "definitely empty" conservatively: a cell reports
// empty only once every chunk it covers is resident and carries no
// geometry, and any non-empty registration marks the cell non-empty for
// the rest of the session. Anything outside the window, or not yet fully
// resident, is "unknown" and must be probed the normal way.
//
// Mark is called only between frames (chunk installation); reads during a
// frame see an immutable grid.
type MetaGrid struct {
	Ratio  int32 // chunks per cell edge
	radius int32 // window half-extent, in cells
	dim    int32

	resident []uint16
	occupied []uint16
}

// NewMetaGrid creates a grid of (2*radiusCells+1)^3 cells.
func NewMetaGrid(ratio, radiusCells int32) *MetaGrid {
	dim := 2*radiusCells + 1
	n := int(dim) * int(dim) * int(dim)
	return &MetaGrid{
		Ratio:    ratio,
		radius:   radiusCells,
		dim:      dim,
		resident: make([]uint16, n),
		occupied: make([]uint16, n),
	}
}

func (m *MetaGrid) cellIndex(c ChunkCoord) (int, bool) {
	cx := floorDiv(c.X, m.Ratio) + m.radius
	cy := floorDiv(c.Y, m.Ratio) + m.radius
	cz := floorDiv(c.Z, m.Ratio) + m.radius
	if cx < 0 || cx >= m.dim || cy < 0 || cy >= m.dim || cz < 0 || cz >= m.dim {
		return 0, false
	}
	return int((cz*m.dim+cy)*m.dim + cx), true
}

// Mark records one resident chunk of the covering cell. Non-empty chunks
// permanently pin the cell as occupied.
func (m *MetaGrid) Mark(c ChunkCoord, isEmpty bool) {
	i, ok := m.cellIndex(c)
	if !ok {
		return
	}
	m.resident[i]++
	if !isEmpty {
		m.occupied[i]++
	}
}

// DefinitelyEmpty reports whether every chunk covered by c's cell is known
// to be resident and empty.
func (m *MetaGrid) DefinitelyEmpty(c ChunkCoord) bool {
	i, ok := m.cellIndex(c)
	if !ok {
		return false
	}
	full := uint16(m.Ratio * m.Ratio * m.Ratio)
	return m.resident[i] >= full && m.occupied[i] == 0
}
