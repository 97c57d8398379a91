package feed

import (
	"context"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
)

// UDPSource listens for NMEA datagrams as broadcast by WiFi gateways
// (conventionally port 10110). One datagram may carry several sentences.
type UDPSource struct {
	listen string
	log    *zap.Logger
}

func NewUDPSource(listen string, log *zap.Logger) *UDPSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &UDPSource{listen: listen, log: log}
}

func (s *UDPSource) Name() string { return "udp:" + s.listen }

func (s *UDPSource) Run(ctx context.Context, out chan<- Line) error {
	addr, err := net.ResolveUDPAddr("udp", s.listen)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	s.log.Info("feed listening", zap.String("addr", s.listen))

	buf := make([]byte, 4096)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		now := time.Now().UTC()
		for _, text := range strings.Split(string(buf[:n]), "\n") {
			text = strings.TrimSpace(text)
			if !usable(text) {
				continue
			}
			if !emit(ctx, out, Line{Text: text, When: now, Source: s.Name()}) {
				return ctx.Err()
			}
		}
	}
}
