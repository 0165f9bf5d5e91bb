package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ayusman/aura/internal/app"
	"github.com/ayusman/aura/internal/capture"
	"github.com/ayusman/aura/internal/config"
	"github.com/ayusman/aura/internal/detector"
	"github.com/ayusman/aura/internal/server"
	"github.com/ayusman/aura/internal/store"
	"github.com/ayusman/aura/internal/telemetry"
	"github.com/ayusman/aura/internal/tray"
)

const (
	serviceName     = "aura"
	windowTitle     = "Aura"
	shutdownTimeout = 5 * time.Second
	trayRefresh     = 250 * time.Millisecond
)

func main() {
	log.SetPrefix("[AURA] ")

	cfg, err := config.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("Aura failed: %v", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Printf("Failed to flush traces: %v", err)
		}
	}()

	st, err := openStore(cfg.RecordPath)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	var frames *server.FrameBuffer
	if cfg.HTTPAddr != "" {
		frames = server.NewFrameBuffer(0)
	}

	source, err := newSource(cfg, st, frames)
	if err != nil {
		return err
	}

	opts := app.Options{
		Source: source,
		Config: cfg.Particles.Particle(),
	}
	if cfg.Record {
		rec, err := store.NewRecorder(st, time.Now().Format("2006-01-02 15:04:05"))
		if err != nil {
			return err
		}
		opts.Recorder = rec
	}

	a := app.New(opts)
	defer a.Stop()

	// MediaPipe startup can take seconds; the field animates at rest meanwhile
	go a.Start(ctx)
	go func() {
		select {
		case <-ctx.Done():
			a.Stop()
		case <-a.Done():
		}
	}()

	if cfg.HTTPAddr != "" {
		srv := server.New(server.Config{
			StaticDir:  cfg.StaticDir,
			Visualizer: a,
			Store:      st,
			Frames:     frames,
		})
		go func() {
			if err := srv.ListenAndServe(cfg.HTTPAddr); err != nil {
				log.Printf("Control server failed: %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				log.Printf("Control server shutdown: %v", err)
			}
		}()
	}

	if cfg.Tray {
		tr := tray.New(a)
		tr.OnToggle(func(enabled bool) bool {
			return a.SetTracking(ctx, enabled)
		})
		tr.OnQuit(a.Stop)
		tr.Register()
		defer tr.Quit()
		go refreshTray(tr, a)
	}

	if cfg.Headless {
		err := a.RunHeadless(ctx, cfg.TPS)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	game := app.NewGame(a, cfg.Width, cfg.Height)
	return game.Run(windowTitle, cfg.Width, cfg.Height, cfg.TPS)
}

// openStore opens the session database, creating its directory. An empty
// path disables recording and replay.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return store.New(path)
}

// newSource picks the landmark detector: a recorded session when replaying,
// otherwise MediaPipe on the camera, falling back to the mock detector.
func newSource(cfg config.Config, st *store.Store, frames *server.FrameBuffer) (*detector.Source, error) {
	if cfg.ReplaySession != "" {
		replay, err := store.NewReplayDetector(st, cfg.ReplaySession, cfg.ReplayLoop)
		if err != nil {
			return nil, err
		}
		log.Printf("Replaying session %s (%d frames)", cfg.ReplaySession, replay.Len())
		return detector.NewSource(replay), nil
	}

	if !cfg.Mock {
		mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
		if err == nil {
			opts := []detector.SourceOption{
				detector.WithCamera(capture.NewCamera(cfg.CameraID)),
			}
			if cfg.MotionThreshold > 0 {
				opts = append(opts, detector.WithMotionGate(capture.NewMotionDetector(cfg.MotionThreshold)))
			}
			if frames != nil {
				opts = append(opts, detector.WithFrameTap(frames.Put))
			}
			return detector.NewSource(mp, opts...), nil
		}
		log.Printf("MediaPipe unavailable, falling back to mock detector: %v", err)
	}

	return detector.NewSource(detector.NewMockDetector()), nil
}

func refreshTray(tr *tray.Tray, a *app.App) {
	ticker := time.NewTicker(trayRefresh)
	defer ticker.Stop()

	last := -1
	for {
		select {
		case <-a.Done():
			return
		case <-ticker.C:
		}
		if n := len(a.State().Hands); n != last {
			tr.SetHands(n)
			last = n
		}
	}
}
