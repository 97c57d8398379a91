package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pelorus/internal/config"
	"pelorus/internal/feed"
	"pelorus/internal/mqttpub"
	"pelorus/internal/pipeline"
	"pelorus/internal/presentation"
	"pelorus/internal/sensor"
	"pelorus/internal/web"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the instrument hub",
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	log, err := config.BuildLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store := sensor.NewStore(sensor.StoreConfig{
		Retention:  cfg.History.Retention,
		MaxEntries: cfg.History.MaxEntries,
	})
	for path, th := range cfg.Alarms.Overrides {
		p, err := sensor.ParsePath(path)
		if err != nil {
			return err
		}
		store.SetThreshold(p.ID(), p.Key, th)
	}

	reg := presentation.NewRegistry()
	reg.SetRegion(presentation.Region(cfg.Presentation.Region))
	for cat, id := range cfg.Presentation.Selections {
		if err := reg.Select(presentation.Category(cat), id); err != nil {
			return err
		}
	}

	candidates, err := cfg.Arbiter.Candidates()
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	met := pipeline.NewMetrics(promReg)
	asm := pipeline.NewAssembler(store, reg, cfg.Arbiter.StaleAfter)
	pl := pipeline.New(pipeline.Config{
		StaleAfter:           cfg.Arbiter.StaleAfter,
		TickInterval:         cfg.Arbiter.TickInterval,
		ClearHistoryOnSwitch: cfg.Arbiter.ClearHistory(),
		Priorities:           candidates,
	}, store, asm, met, log)

	sources, err := buildSources(cfg.Feeds, log)
	if err != nil {
		return err
	}

	lines := make(chan feed.Line, 64)
	names := make([]string, 0, len(sources))
	for _, src := range sources {
		names = append(names, src.Name())
		go func(src feed.Source) {
			if err := src.Run(ctx, lines); err != nil && ctx.Err() == nil {
				log.Error("feed stopped", zap.String("feed", src.Name()), zap.Error(err))
			}
		}(src)
	}

	if cfg.MQTT.Enable {
		pub, err := mqttpub.New(cfg.MQTT, log)
		if err != nil {
			return err
		}
		pub.Attach(pl)
		defer pub.Close()
	}

	if cfg.Web.Enable {
		srv := web.NewServer(pl, store, reg, promReg, names, log)
		go func() {
			if err := web.Serve(ctx, cfg.Web.Listen, srv); err != nil && ctx.Err() == nil {
				log.Error("web server stopped", zap.Error(err))
				cancel()
			}
		}()
	}

	log.Info("pelorus starting", zap.Strings("feeds", names), zap.String("region", cfg.Presentation.Region))

	if err := pl.Run(ctx, lines); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("pelorus stopping")
	return nil
}

func buildSources(feeds []config.FeedConfig, log *zap.Logger) ([]feed.Source, error) {
	out := make([]feed.Source, 0, len(feeds))
	for _, f := range feeds {
		switch f.Type {
		case "tcp":
			out = append(out, feed.NewTCPSource(f.Addr, log))
		case "udp":
			out = append(out, feed.NewUDPSource(f.Listen, log))
		case "serial":
			out = append(out, feed.NewSerialSource(f.Device, f.Baud, log))
		case "replay":
			out = append(out, feed.NewReplaySource(f.Path, f.Speed, f.Loop, log))
		case "sim":
			out = append(out, feed.NewSimSource(f.Interval))
		default:
			return nil, fmt.Errorf("unknown feed type %q", f.Type)
		}
	}
	return out, nil
}
