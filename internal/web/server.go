// Package web exposes the read API used by cockpit displays: current
// metric values, session history and presentation selection, plus the
// Prometheus scrape endpoint.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pelorus/internal/pipeline"
	"pelorus/internal/presentation"
	"pelorus/internal/sensor"
)

type Server struct {
	pl       *pipeline.Pipeline
	store    *sensor.Store
	reg      *presentation.Registry
	gatherer prometheus.Gatherer
	log      *zap.Logger

	started time.Time
	feeds   []string
}

func NewServer(pl *pipeline.Pipeline, store *sensor.Store, reg *presentation.Registry, gatherer prometheus.Gatherer, feeds []string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		pl:       pl,
		store:    store,
		reg:      reg,
		gatherer: gatherer,
		log:      log,
		started:  time.Now().UTC(),
		feeds:    feeds,
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics", s.handleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/api/metrics/{path:.+}", s.handleMetric).Methods(http.MethodGet)
	r.HandleFunc("/api/history/{path:.+}", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/presentations", s.handlePresentations).Methods(http.MethodGet)
	r.HandleFunc("/api/presentations/{category}/{id}", s.handleSelect).Methods(http.MethodPost)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}

// pathParam converts the URL form (depth/0/depth.min) back to the dotted
// metric path.
func pathParam(r *http.Request) string {
	return strings.ReplaceAll(mux.Vars(r)["path"], "/", ".")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	type sourceStatus struct {
		Metric    string `json:"metric"`
		Source    string `json:"source,omitempty"`
		Available bool   `json:"available"`
	}
	var sources []sourceStatus
	var instances []string
	for _, id := range s.store.Instances() {
		instances = append(instances, id.String())
	}
	for _, mv := range s.pl.Snapshot(now) {
		if strings.Contains(mv.Path, ".") {
			continue // logical metrics only
		}
		sources = append(sources, sourceStatus{Metric: mv.Path, Source: mv.Source, Available: mv.Available})
	}

	writeJSON(w, struct {
		StartedUTC string         `json:"started_utc"`
		UptimeSec  int64          `json:"uptime_sec"`
		Region     string         `json:"region"`
		Feeds      []string       `json:"feeds"`
		Instances  []string       `json:"instances"`
		Sources    []sourceStatus `json:"sources"`
	}{
		StartedUTC: s.started.Format(time.RFC3339),
		UptimeSec:  int64(now.Sub(s.started).Seconds()),
		Region:     string(s.reg.Region()),
		Feeds:      s.feeds,
		Instances:  instances,
		Sources:    sources,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.pl.Snapshot(time.Now().UTC()))
}

func (s *Server) handleMetric(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.pl.GetMetric(time.Now().UTC(), pathParam(r)))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	p, err := sensor.ParsePath(pathParam(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	type point struct {
		Value float64   `json:"value"`
		When  time.Time `json:"when"`
	}
	entries := s.store.HistoryEntries(p.ID(), p.Key)
	points := make([]point, 0, len(entries))
	for _, e := range entries {
		points = append(points, point{Value: e.Value, When: e.When})
	}
	stats := s.store.HistoryStats(p.ID(), p.Key)

	writeJSON(w, struct {
		Path   string  `json:"path"`
		Points []point `json:"points"`
		Min    float64 `json:"min"`
		Max    float64 `json:"max"`
		Avg    float64 `json:"avg"`
		Count  int     `json:"count"`
	}{
		Path:   p.String(),
		Points: points,
		Min:    stats.Min,
		Max:    stats.Max,
		Avg:    stats.Avg,
		Count:  stats.Count,
	})
}

func (s *Server) handlePresentations(w http.ResponseWriter, r *http.Request) {
	type option struct {
		ID      string `json:"id"`
		Symbol  string `json:"symbol"`
		Default bool   `json:"default"`
	}
	type category struct {
		Category string   `json:"category"`
		Selected string   `json:"selected"`
		Options  []option `json:"options"`
	}

	var out []category
	for _, cat := range s.reg.Categories() {
		c := category{
			Category: string(cat),
			Selected: s.reg.Selected(cat).ID,
		}
		for _, p := range s.reg.Presentations(cat) {
			c.Options = append(c.Options, option{ID: p.ID, Symbol: p.Symbol, Default: p.Default})
		}
		out = append(out, c)
	}
	writeJSON(w, out)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cat := presentation.Category(vars["category"])
	if err := s.reg.Select(cat, vars["id"]); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Info("presentation selected", zap.String("category", vars["category"]), zap.String("id", vars["id"]))
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("{\"ok\":true}\n"))
}

// Serve runs the HTTP server until ctx is done.
func Serve(ctx context.Context, listenAddr string, s *Server) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       30 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("web listening", zap.String("addr", listenAddr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
