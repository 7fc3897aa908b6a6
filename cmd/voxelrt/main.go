package main

import (
	"flag"
	"log"
	"runtime"

	"voxelrt/internal/config"
)

func init() {
	// GLFW event handling must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	width := flag.Int("width", 960, "framebuffer width in pixels")
	height := flag.Int("height", 540, "framebuffer height in pixels")
	seed := flag.Int64("seed", 1337, "terrain seed")
	dist := flag.Int("dist", 12, "render distance in chunks")
	cacheDir := flag.String("cache", "", "chunk cache directory (empty disables caching)")
	headless := flag.Bool("headless", false, "render PNG frames instead of opening a window")
	frames := flag.Int("frames", 1, "frame count in headless mode")
	out := flag.String("out", "frame", "output PNG prefix in headless mode")
	debug := flag.Int("debug", 0, "debug visualization mode (0 off, 1 node steps, 2 chunk steps)")
	shadows := flag.Bool("shadows", true, "directional shadow probes against the opaque DAGs")
	flag.Parse()

	config.SetRenderDistance(*dist)
	config.SetDebugMode(*debug)

	s, err := setupWorld(worldOptions{
		Width:    *width,
		Height:   *height,
		Seed:     *seed,
		CacheDir: *cacheDir,
		Shadows:  *shadows,
	})
	if err != nil {
		log.Fatalf("voxelrt: %v", err)
	}
	defer s.Close()

	if *headless {
		if err := runHeadless(s, *frames, *out); err != nil {
			log.Fatalf("voxelrt: %v", err)
		}
		return
	}

	if err := runViewer(s); err != nil {
		log.Fatalf("voxelrt: %v", err)
	}
}
