package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SerialSource reads NMEA from a serial instrument bus. NMEA-0183 talks
// at 4800 baud by default; multiplexers often run 38400.
type SerialSource struct {
	device string
	baud   int
	log    *zap.Logger
}

func NewSerialSource(device string, baud int, log *zap.Logger) *SerialSource {
	if baud == 0 {
		baud = 4800
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SerialSource{device: device, baud: baud, log: log}
}

func (s *SerialSource) Name() string { return "serial:" + s.device }

func (s *SerialSource) Run(ctx context.Context, out chan<- Line) error {
	device := strings.TrimSpace(s.device)
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			return fmt.Errorf("serial auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
		}
	}

	f, err := openSerial(device, s.baud)
	if err != nil {
		return fmt.Errorf("serial open %s baud=%d: %w", device, s.baud, err)
	}
	defer f.Close()

	go func() {
		<-ctx.Done()
		_ = f.Close()
	}()

	s.log.Info("feed serial open", zap.String("device", device), zap.Int("baud", s.baud))

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256), 4096)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if !usable(text) {
			continue
		}
		if !emit(ctx, out, Line{Text: text, When: time.Now().UTC(), Source: s.Name()}) {
			return ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	err = scanner.Err()
	if err == nil {
		err = io.EOF
	}
	return fmt.Errorf("serial read stopped: %w", err)
}

func autoDetectDevice() string {
	// Keep it intentionally tiny and predictable.
	for _, pattern := range []string{"/dev/ttyACM%d", "/dev/ttyUSB%d"} {
		for i := 0; i < 10; i++ {
			p := fmt.Sprintf(pattern, i)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}
