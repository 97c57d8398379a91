package feed

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ReplaySource plays a recorded NMEA log file back at a fixed cadence,
// optionally looping. Useful for bench work and demos without instruments
// attached.
type ReplaySource struct {
	path     string
	interval time.Duration
	loop     bool
	log      *zap.Logger
}

// NewReplaySource builds a replay at one line per interval. speed scales
// the default 1 s cadence: 2.0 plays twice as fast.
func NewReplaySource(path string, speed float64, loop bool, log *zap.Logger) *ReplaySource {
	if speed <= 0 {
		speed = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReplaySource{
		path:     path,
		interval: time.Duration(float64(time.Second) / speed),
		loop:     loop,
		log:      log,
	}
}

func (s *ReplaySource) Name() string { return "replay:" + s.path }

func (s *ReplaySource) Run(ctx context.Context, out chan<- Line) error {
	for {
		if err := s.playOnce(ctx, out); err != nil {
			return err
		}
		if !s.loop {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (s *ReplaySource) playOnce(ctx context.Context, out chan<- Line) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("replay open: %w", err)
	}
	defer f.Close()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256), 4096)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if !usable(text) {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if !emit(ctx, out, Line{Text: text, When: time.Now().UTC(), Source: s.Name()}) {
			return ctx.Err()
		}
	}
	return scanner.Err()
}
