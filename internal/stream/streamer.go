package stream

import (
	"log"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"voxelrt/internal/gen"
	"voxelrt/internal/profiling"
	"voxelrt/internal/svdag"
	"voxelrt/internal/voxel"
	"voxelrt/internal/world"
)

// BuiltChunk is a finished chunk waiting to be installed into the registry.
type BuiltChunk struct {
	Coord world.ChunkCoord
	Data  *svdag.ChunkData
}

// Streamer fulfills chunk-load requests asynchronously. Workers generate
// voxel grids, build both DAG variants (through the cache) and hand the
// results back; Install moves them into the registry strictly between
// frames, so traversal only ever sees immutable buffers.
type Streamer struct {
	jobs    chan world.ChunkCoord
	results chan *BuiltChunk

	pending   map[world.ChunkCoord]struct{}
	pendingMu sync.Mutex

	gen     *gen.Generator
	mats    *voxel.Table
	cache   Cache
	metrics MetricsSink
	limiter *rate.Limiter
	edge    int
}

// Config wires the streamer's collaborators.
type Config struct {
	Generator *gen.Generator
	Materials *voxel.Table
	Cache     Cache
	Metrics   MetricsSink
	Edge      int
	Workers   int

	// BuildsPerSecond caps how fast fulfillment admits new build jobs,
	// keeping a burst of misses from starving the render loop.
	BuildsPerSecond int
}

// NewStreamer starts the build workers.
func NewStreamer(cfg Config) *Streamer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	bps := cfg.BuildsPerSecond
	if bps <= 0 {
		bps = 512
	}
	if cfg.Cache == nil {
		cfg.Cache = NullCache{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NopMetrics{}
	}

	s := &Streamer{
		jobs:    make(chan world.ChunkCoord, 4096),
		results: make(chan *BuiltChunk, 4096),
		pending: make(map[world.ChunkCoord]struct{}),
		gen:     cfg.Generator,
		mats:    cfg.Materials,
		cache:   cfg.Cache,
		metrics: cfg.Metrics,
		limiter: rate.NewLimiter(rate.Limit(bps), bps),
		edge:    cfg.Edge,
	}
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

// Close stops the background workers.
func (s *Streamer) Close() {
	close(s.jobs)
}

func (s *Streamer) worker() {
	for coord := range s.jobs {
		built, err := s.buildChunk(coord)
		if err != nil {
			// Build failures are programming errors (bad edge, corrupt
			// cache); surface them loudly rather than dropping silently.
			log.Printf("stream: building chunk %v: %v", coord, err)
		} else {
			select {
			case s.results <- built:
			default:
				// Results buffer full: drop and let the next frame's miss
				// re-request the chunk.
			}
		}
		s.pendingMu.Lock()
		delete(s.pending, coord)
		s.pendingMu.Unlock()
	}
}

func (s *Streamer) buildChunk(coord world.ChunkCoord) (*BuiltChunk, error) {
	payload, hit, err := s.cache.Load(coord)
	if err != nil {
		return nil, err
	}
	s.metrics.CacheLookup(hit)
	if hit {
		data, err := svdag.Decode(payload)
		if err != nil {
			return nil, err
		}
		return &BuiltChunk{Coord: coord, Data: data}, nil
	}

	start := time.Now()
	grid, err := s.gen.GridFor(coord, s.edge)
	if err != nil {
		return nil, err
	}
	data, stats, err := svdag.BuildChunk(grid, s.mats)
	if err != nil {
		return nil, err
	}
	s.metrics.ChunkBuilt(coord, stats, time.Since(start))

	if err := s.cache.Store(coord, svdag.Encode(data)); err != nil {
		// Cache write failures only cost a rebuild next session.
		log.Printf("stream: caching chunk %v: %v", coord, err)
	}
	return &BuiltChunk{Coord: coord, Data: data}, nil
}

// Fulfill drains the request queue and enqueues build jobs, most-requested
// chunks first, up to the rate limit. Returns the number of jobs admitted.
func (s *Streamer) Fulfill(q *world.RequestQueue) int {
	defer profiling.Track("stream.Fulfill")()

	type req struct {
		coord world.ChunkCoord
		count int32
	}
	var reqs []req
	q.Drain(func(coord world.ChunkCoord, count int32) {
		reqs = append(reqs, req{coord, count})
	})
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].count > reqs[j].count })

	admitted := 0
	for _, r := range reqs {
		if !s.limiter.Allow() {
			break
		}
		if s.enqueue(r.coord) {
			admitted++
		}
	}
	return admitted
}

// enqueue adds a job unless it is already pending or the queue is full.
func (s *Streamer) enqueue(coord world.ChunkCoord) bool {
	s.pendingMu.Lock()
	if _, ok := s.pending[coord]; ok {
		s.pendingMu.Unlock()
		return false
	}
	s.pending[coord] = struct{}{}
	s.pendingMu.Unlock()

	select {
	case s.jobs <- coord:
		return true
	default:
		s.pendingMu.Lock()
		delete(s.pending, coord)
		s.pendingMu.Unlock()
		return false
	}
}

// Install registers finished chunks. Must be called between frames: it is
// the only path that mutates the registry's shared buffers.
func (s *Streamer) Install(reg *world.Registry) (int, error) {
	defer profiling.Track("stream.Install")()
	installed := 0
	for {
		select {
		case built := <-s.results:
			if _, err := reg.Register(built.Coord, built.Data); err != nil {
				return installed, err
			}
			installed++
		default:
			return installed, nil
		}
	}
}

// PrimeSync builds and installs a cube of chunks around center on the
// calling goroutine, for startup before the first frame.
func (s *Streamer) PrimeSync(reg *world.Registry, center world.ChunkCoord, radius int32) error {
	defer profiling.Track("stream.PrimeSync")()
	for dz := -radius; dz <= radius; dz++ {
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				coord := center.Add(dx, dy, dz)
				if _, ok := reg.Lookup(coord); ok {
					continue
				}
				built, err := s.buildChunk(coord)
				if err != nil {
					return err
				}
				if _, err := reg.Register(coord, built.Data); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
