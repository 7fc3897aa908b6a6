package main

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxelrt/internal/config"
	"voxelrt/internal/gen"
	"voxelrt/internal/graphics"
	"voxelrt/internal/profiling"
	"voxelrt/internal/stream"
	"voxelrt/internal/trace"
	"voxelrt/internal/voxel"
	"voxelrt/internal/world"
)

// session holds everything one running world needs.
type session struct {
	reg      *world.Registry
	queue    *world.RequestQueue
	streamer *stream.Streamer
	mats     *voxel.Table
	cam      *graphics.Camera
	comp     *trace.Compositor
	fb       *graphics.Framebuffer

	maxDistance    float32
	expectedChunks int
}

type worldOptions struct {
	Width    int
	Height   int
	Seed     int64
	CacheDir string
	Shadows  bool
}

// setupWorld assembles the registry, streamer and tracer, primes a small
// area around the spawn point synchronously so the first frame is not all
// holes, and parks the camera above the terrain.
func setupWorld(opts worldOptions) (*session, error) {
	edge := uint32(world.DefaultChunkEdge)
	dist := config.GetRenderDistance()

	// Resident set upper bound: the full request window, plus slack for
	// chunks kept from earlier camera positions.
	window := 2*dist + 1
	expected := window * window * window * 2

	meta := world.NewMetaGrid(4, 64)
	reg := world.NewRegistry(edge, expected, meta)
	queue := world.NewRequestQueue(int32(dist))

	var cache stream.Cache = stream.NullCache{}
	if opts.CacheDir != "" {
		dc, err := stream.NewDiskCache(opts.CacheDir)
		if err != nil {
			return nil, err
		}
		cache = dc
	}

	mats := voxel.DefaultTable()
	streamer := stream.NewStreamer(stream.Config{
		Generator: gen.NewGenerator(opts.Seed),
		Materials: mats,
		Cache:     cache,
		Metrics:   stream.NopMetrics{},
		Edge:      int(edge),
	})

	g := gen.NewGenerator(opts.Seed)
	spawnY := float32(g.HeightAt(0, 0) + 24)
	cam := graphics.NewCamera(mgl32.Vec3{float32(edge) / 2, spawnY, float32(edge) / 2})
	cam.Pitch = -20

	s := &session{
		reg:            reg,
		queue:          queue,
		streamer:       streamer,
		mats:           mats,
		cam:            cam,
		fb:             graphics.NewFramebuffer(opts.Width, opts.Height),
		maxDistance:    float32(dist) * float32(edge),
		expectedChunks: expected,
	}
	s.comp = &trace.Compositor{
		Materials:       mats,
		MaxLayers:       4,
		ThicknessProbes: 8,
		OpacityCutoff:   0.98,
		SkyColor:        mgl32.Vec3{0.53, 0.81, 0.92},
		LightDir:        mgl32.Vec3{0.45, 0.8, 0.35}.Normalize(),
		Ambient:         0.35,
		Shadows:         opts.Shadows,
		ShadowDist:      3 * float32(edge),
		ShadowTint:      0.35,
	}

	center := world.CoordOf(cam.Position[0], cam.Position[1], cam.Position[2], edge)
	queue.SetCenter(center)
	if err := streamer.PrimeSync(reg, center, int32(config.GetChunkLoadRadius())); err != nil {
		return nil, err
	}
	return s, nil
}

// memoryPressure reports whether the resident set has outgrown the hash
// index's sizing target far enough to shrink the per-ray step budget.
func memoryPressure(resident, expected int) bool {
	return resident*4 > expected*3
}

// renderFrame runs one full frame: install finished chunks, retarget the
// request window, trace, then hand new requests to the streamer.
func (s *session) renderFrame(ctx context.Context) (trace.FrameStats, error) {
	profiling.ResetFrame()

	if _, err := s.streamer.Install(s.reg); err != nil {
		return trace.FrameStats{}, err
	}
	config.SetMemoryPressure(memoryPressure(s.reg.Len(), s.expectedChunks))

	center := world.CoordOf(s.cam.Position[0], s.cam.Position[1], s.cam.Position[2], s.reg.Edge)
	s.queue.SetCenter(center)

	s.comp.Stepper = &trace.Stepper{
		Reg:       s.reg,
		Req:       s.queue,
		MaxSteps:  config.GetMaxChunkSteps(),
		SkipEmpty: config.GetMetaSkip(),
	}

	stats, err := trace.RenderFrame(ctx, s.cam, s.comp, s.fb, trace.RenderParams{
		MaxDistance: s.maxDistance,
		DebugMode:   config.GetDebugMode(),
	})
	if err != nil {
		return trace.FrameStats{}, err
	}

	s.streamer.Fulfill(s.queue)
	return stats, nil
}

func (s *session) overlay(stats trace.FrameStats, fps float64) {
	s.fb.DrawText(8, 16, fmt.Sprintf("fps %.1f  chunks %d  holes %d  skips %d  lookups %d",
		fps, s.reg.Len(), stats.Holes, stats.Skips, stats.Lookups))
	d := stats.Debug
	s.fb.DrawText(8, 32, fmt.Sprintf("center: chunk (%d,%d,%d) mat %d dist %.1f steps %d/%d hole %v",
		d.HitCoord.X, d.HitCoord.Y, d.HitCoord.Z, d.HitMaterial, d.HitDistance, d.ChunkSteps, d.NodeSteps, d.Hole))
	s.fb.DrawText(8, 48, profiling.TopN(3))
}

// Close stops the background workers.
func (s *session) Close() {
	s.streamer.Close()
}
