package feed

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TCPSource reads newline-delimited sentences from an NMEA-over-TCP
// server (multiplexers, gateways, OpenCPN). It reconnects forever with
// exponential backoff; a dead gateway is a data outage, not a process
// failure.
type TCPSource struct {
	addr string
	log  *zap.Logger
}

func NewTCPSource(addr string, log *zap.Logger) *TCPSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &TCPSource{addr: addr, log: log}
}

func (s *TCPSource) Name() string { return "tcp:" + s.addr }

func (s *TCPSource) Run(ctx context.Context, out chan<- Line) error {
	backoff := 250 * time.Millisecond
	const maxBackoff = 10 * time.Second

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		d := &net.Dialer{Timeout: 2 * time.Second}
		conn, err := d.DialContext(ctx, "tcp", s.addr)
		if err != nil {
			s.log.Warn("feed dial failed", zap.String("addr", s.addr), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = 250 * time.Millisecond
		s.log.Info("feed connected", zap.String("addr", s.addr))

		s.scan(ctx, conn, out)
		_ = conn.Close()
	}
}

func (s *TCPSource) scan(ctx context.Context, conn net.Conn, out chan<- Line) {
	go func() {
		// Unblock the scanner when ctx ends mid-read.
		<-ctx.Done()
		_ = conn.Close()
	}()

	scanner := bufio.NewScanner(conn)
	// NMEA sentences are < 82 chars; allow headroom for chatty gateways.
	scanner.Buffer(make([]byte, 0, 256), 4096)

	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if !usable(text) {
			continue
		}
		if !emit(ctx, out, Line{Text: text, When: time.Now().UTC(), Source: s.Name()}) {
			return
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.log.Warn("feed read stopped", zap.String("addr", s.addr), zap.Error(err))
	} else if ctx.Err() == nil {
		s.log.Warn("feed closed by peer", zap.String("addr", s.addr), zap.Error(io.EOF))
	}
}
