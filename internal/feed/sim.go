package feed

import (
	"context"
	"fmt"
	"math"
	"time"

	"pelorus/internal/nmea"
)

// SimSource synthesizes a plausible instrument stream for demo mode:
// depth, speed/heading, wind, water temperature and house battery, one
// burst per interval. Values wander on slow sine curves so trends and
// session statistics have something to show.
type SimSource struct {
	interval time.Duration
}

func NewSimSource(interval time.Duration) *SimSource {
	if interval <= 0 {
		interval = time.Second
	}
	return &SimSource{interval: interval}
}

func (s *SimSource) Name() string { return "sim" }

func (s *SimSource) Run(ctx context.Context, out chan<- Line) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		t := time.Since(start).Seconds()
		now := time.Now().UTC()

		depth := 12.0 + 4.0*math.Sin(t/60)
		stw := 5.5 + 1.0*math.Sin(t/45)   // knots
		hdg := math.Mod(245+10*math.Sin(t/90)+360, 360)
		awa := math.Mod(45+15*math.Sin(t/30)+360, 360)
		aws := 12.0 + 4.0*math.Sin(t/75) // knots
		wtmp := 18.0 + 0.5*math.Sin(t/600)
		volts := 12.6 + 0.2*math.Sin(t/300)

		burst := []string{
			nmea.Line(fmt.Sprintf("SDDPT,%.1f,0.5", depth)),
			nmea.Line(fmt.Sprintf("VWVHW,%.1f,T,%.1f,M,%.1f,N,%.1f,K", hdg, hdg, stw, stw*1.852)),
			nmea.Line(fmt.Sprintf("WIMWV,%.1f,R,%.1f,N,A", awa, aws)),
			nmea.Line(fmt.Sprintf("YXMTW,%.1f,C", wtmp)),
			nmea.Line(fmt.Sprintf("IIXDR,U,%.2f,V,HOUSE", volts)),
		}
		for _, text := range burst {
			if !emit(ctx, out, Line{Text: text, When: now, Source: s.Name()}) {
				return ctx.Err()
			}
		}
	}
}
