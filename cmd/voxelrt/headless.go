package main

import (
	"context"
	"fmt"
	"log"
)

// runHeadless renders a fixed number of frames to PNG files, letting the
// streamer fill holes in between. Useful for smoke tests and environments
// without a display.
func runHeadless(s *session, frames int, prefix string) error {
	for i := 0; i < frames; i++ {
		stats, err := s.renderFrame(context.Background())
		if err != nil {
			return err
		}
		s.overlay(stats, 0)

		path := fmt.Sprintf("%s_%03d.png", prefix, i)
		if err := s.fb.WritePNG(path); err != nil {
			return err
		}
		log.Printf("wrote %s (%d chunks resident, %d holes)", path, s.reg.Len(), stats.Holes)
	}
	return nil
}
