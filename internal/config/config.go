package config

import "sync"

// RenderSettings holds render configuration shared between the render loop
// and the UI/flag layer.
type RenderSettings struct {
	mu              sync.RWMutex
	renderDistance  int // in chunks
	chunkLoadRadius int // in chunks, synchronous startup prime
	maxChunkSteps   int
	metaSkip        bool
	memoryPressure  bool
	debugMode       int
}

var globalRenderSettings = &RenderSettings{
	renderDistance:  12,
	chunkLoadRadius: 2,
	maxChunkSteps:   96,
	metaSkip:        true,
}

// GetRenderDistance returns the current render distance in chunks.
func GetRenderDistance() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.renderDistance
}

// SetRenderDistance sets the render distance in chunks.
func SetRenderDistance(distance int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()

	if distance < 2 {
		distance = 2
	}
	if distance > 64 {
		distance = 64
	}
	globalRenderSettings.renderDistance = distance
}

// GetMaxChunkSteps returns the per-ray chunk-step budget. Under memory
// pressure the budget halves so worst-case per-pixel work shrinks along
// with the resident set.
func GetMaxChunkSteps() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	if globalRenderSettings.memoryPressure {
		return globalRenderSettings.maxChunkSteps / 2
	}
	return globalRenderSettings.maxChunkSteps
}

// SetMaxChunkSteps sets the per-ray chunk-step budget.
func SetMaxChunkSteps(steps int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if steps < 8 {
		steps = 8
	}
	globalRenderSettings.maxChunkSteps = steps
}

// SetMemoryPressure toggles the adaptive budget reduction.
func SetMemoryPressure(on bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.memoryPressure = on
}

// GetMetaSkip returns whether the meta-occupancy skip is enabled.
func GetMetaSkip() bool {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.metaSkip
}

// SetMetaSkip toggles the meta-occupancy skip.
func SetMetaSkip(on bool) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.metaSkip = on
}

// GetDebugMode returns the active debug-visualization mode.
func GetDebugMode() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.debugMode
}

// SetDebugMode selects a debug-visualization mode.
func SetDebugMode(mode int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.debugMode = mode
}

// GetChunkLoadRadius returns the radius primed synchronously at startup.
func GetChunkLoadRadius() int {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.chunkLoadRadius
}

// SetChunkLoadRadius sets the synchronous startup priming radius. Kept
// small: everything past it streams in asynchronously.
func SetChunkLoadRadius(radius int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if radius < 0 {
		radius = 0
	}
	if radius > 8 {
		radius = 8
	}
	globalRenderSettings.chunkLoadRadius = radius
}
