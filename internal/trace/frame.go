package trace

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"voxelrt/internal/graphics"
	"voxelrt/internal/profiling"
	"voxelrt/internal/voxel"
	"voxelrt/internal/world"
)

// Debug visualization modes.
const (
	DebugOff = iota
	DebugNodeSteps
	DebugChunkSteps
)

// RenderParams configures one frame.
type RenderParams struct {
	MaxDistance float32
	DebugMode   int
	Workers     int
}

// DebugReadback reports the center pixel's hit for diagnostics.
type DebugReadback struct {
	HitCoord    world.ChunkCoord
	HitMaterial voxel.Material
	HitDistance float32
	ChunkSteps  int
	NodeSteps   int32
	Hole        bool
}

// FrameStats aggregates per-frame traversal counters.
type FrameStats struct {
	Rays    int64
	Holes   int64
	Skips   int64
	Lookups int64
	Debug   DebugReadback
}

// RenderFrame shades every pixel of fb in parallel row bands. Rays share
// no mutable state beyond the atomic request counters and these aggregate
// stats, so workers never wait on each other; cancellation between frames
// abandons the batch without retaining partial pixel state.
func RenderFrame(ctx context.Context, cam *graphics.Camera, comp *Compositor, fb *graphics.Framebuffer, p RenderParams) (FrameStats, error) {
	defer profiling.Track("trace.RenderFrame")()

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	w, h := fb.Size()
	cx, cy := w/2, h/2

	var stats FrameStats
	var holes, skips, lookups atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	rows := (h + workers - 1) / workers
	for band := 0; band < h; band += rows {
		y0, y1 := band, band+rows
		if y1 > h {
			y1 = h
		}
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				for x := 0; x < w; x++ {
					dir := cam.Ray(x, y, w, h)
					col, info := comp.Shade(cam.Position, dir, p.MaxDistance)
					if info.Hole {
						holes.Add(1)
					}
					skips.Add(int64(info.Skips))
					lookups.Add(int64(info.Lookups))
					if p.DebugMode != DebugOff {
						col = debugColor(p.DebugMode, info)
					}
					fb.SetRGB(x, y, col)
					if x == cx && y == cy {
						stats.Debug = DebugReadback{
							HitCoord:    info.HitCoord,
							HitMaterial: info.HitMaterial,
							HitDistance: info.HitDistance,
							ChunkSteps:  info.ChunkSteps,
							NodeSteps:   info.NodeSteps,
							Hole:        info.Hole,
						}
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return FrameStats{}, err
	}

	stats.Rays = int64(w) * int64(h)
	stats.Holes = holes.Load()
	stats.Skips = skips.Load()
	stats.Lookups = lookups.Load()
	return stats, nil
}

func debugColor(mode int, info ShadeInfo) mgl32.Vec3 {
	var v float32
	switch mode {
	case DebugNodeSteps:
		v = float32(info.NodeSteps) / 128
	case DebugChunkSteps:
		v = float32(info.ChunkSteps) / 32
	}
	if v > 1 {
		v = 1
	}
	// Cold-to-hot ramp.
	return mgl32.Vec3{v, 0.2 * (1 - v), 1 - v}
}
