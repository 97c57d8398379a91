// Package feed provides NMEA line sources: TCP client, UDP listener,
// serial port, file replay and a demo simulator. Sources deliver raw
// lines to a shared channel; all parsing happens downstream in the
// pipeline so per-source ordering is preserved.
package feed

import (
	"context"
	"strings"
	"time"
)

// Line is one raw sentence as received, before any validation.
type Line struct {
	Text   string
	When   time.Time
	Source string
}

// Source is a running line producer. Run blocks until ctx is done or the
// source fails terminally; transient errors are handled internally with
// reconnects.
type Source interface {
	Name() string
	Run(ctx context.Context, out chan<- Line) error
}

// emit delivers a line unless the context is done. Sources drop lines
// rather than block forever on a stalled consumer.
func emit(ctx context.Context, out chan<- Line, l Line) bool {
	select {
	case out <- l:
		return true
	case <-ctx.Done():
		return false
	}
}

// usable filters obvious non-NMEA chatter before it reaches the pipeline
// counters.
func usable(line string) bool {
	line = strings.TrimSpace(line)
	return line != "" && (line[0] == '$' || line[0] == '!')
}
