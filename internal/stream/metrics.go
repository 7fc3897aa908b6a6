package stream

import (
	"time"

	"voxelrt/internal/svdag"
	"voxelrt/internal/world"
)

// MetricsSink receives build and cache events. Injected rather than global
// so tests and headless runs can observe or discard them. Implementations
// must tolerate calls from multiple build workers.
type MetricsSink interface {
	ChunkBuilt(coord world.ChunkCoord, stats svdag.BuildStats, elapsed time.Duration)
	CacheLookup(hit bool)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) ChunkBuilt(world.ChunkCoord, svdag.BuildStats, time.Duration) {}
func (NopMetrics) CacheLookup(bool)                                             {}
