package world

import "sync/atomic"

// RequestQueue is the chunk-load request buffer shared between ray workers
// and the streaming layer: a dense (2R+1)^3 window of counters indexed by
// chunk offset relative to the camera's chunk. Workers increment counters
// atomically during a frame; the streamer drains and resets them between
// frames. SetCenter is also a between-frames operation.
type RequestQueue struct {
	Radius int32
	dim    int32

	center   ChunkCoord
	counters []atomic.Int32
}

// NewRequestQueue creates a request window with the given radius in chunks.
func NewRequestQueue(radius int32) *RequestQueue {
	dim := 2*radius + 1
	return &RequestQueue{
		Radius:   radius,
		dim:      dim,
		counters: make([]atomic.Int32, int(dim)*int(dim)*int(dim)),
	}
}

// SetCenter moves the window to the camera's current chunk.
func (q *RequestQueue) SetCenter(c ChunkCoord) { q.center = c }

// Center returns the current window center.
func (q *RequestQueue) Center() ChunkCoord { return q.center }

func (q *RequestQueue) slot(c ChunkCoord) (int, bool) {
	dx := c.X - q.center.X + q.Radius
	dy := c.Y - q.center.Y + q.Radius
	dz := c.Z - q.center.Z + q.Radius
	if dx < 0 || dx >= q.dim || dy < 0 || dy >= q.dim || dz < 0 || dz >= q.dim {
		return 0, false
	}
	return int((dz*q.dim+dy)*q.dim + dx), true
}

// Request records one miss for the chunk at c. Requests outside the window
// are dropped; the return value reports whether the request was recorded.
func (q *RequestQueue) Request(c ChunkCoord) bool {
	i, ok := q.slot(c)
	if !ok {
		return false
	}
	q.counters[i].Add(1)
	return true
}

// Pending returns the request count currently recorded for c.
func (q *RequestQueue) Pending(c ChunkCoord) int32 {
	i, ok := q.slot(c)
	if !ok {
		return 0
	}
	return q.counters[i].Load()
}

// Drain visits every non-zero counter and resets it. Called by the
// streaming layer between frames.
func (q *RequestQueue) Drain(fn func(coord ChunkCoord, count int32)) {
	for dz := int32(0); dz < q.dim; dz++ {
		for dy := int32(0); dy < q.dim; dy++ {
			for dx := int32(0); dx < q.dim; dx++ {
				i := int((dz*q.dim+dy)*q.dim + dx)
				n := q.counters[i].Swap(0)
				if n == 0 {
					continue
				}
				fn(ChunkCoord{
					X: q.center.X + dx - q.Radius,
					Y: q.center.Y + dy - q.Radius,
					Z: q.center.Z + dz - q.Radius,
				}, n)
			}
		}
	}
}
