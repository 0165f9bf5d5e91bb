// Package app wires the landmark source, gesture interpreter and particle
// simulator into one frame-driven loop.
package app

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/aura/internal/detector"
	"github.com/ayusman/aura/internal/gesture"
	"github.com/ayusman/aura/internal/particle"
	"github.com/ayusman/aura/internal/render"
)

// FrameRecorder receives every detection result the loop consumes.
type FrameRecorder interface {
	Record(res *detector.Result) error
	Close() error
}

// Options configures an App.
type Options struct {
	// Source supplies hand landmarks. Required.
	Source *detector.Source
	// Config is the initial particle configuration; zero means DefaultConfig.
	Config particle.Config
	// Simulation customizes the particle simulator.
	Simulation []particle.Option
	// Recorder, when set, stores every detection result.
	Recorder FrameRecorder
	// Clock overrides time.Now for the animation clock.
	Clock func() time.Time
}

// App owns the per-frame pipeline. Tick runs on a single goroutine (the
// render loop); config and gesture snapshots are published as atomic value
// replacements so other goroutines may read or replace them at any time.
type App struct {
	source   *detector.Source
	sim      *particle.Simulator
	recorder FrameRecorder
	clock    func() time.Time
	started  time.Time

	config   atomic.Pointer[particle.Config]
	state    atomic.Pointer[gesture.State]
	tracking atomic.Bool
	ticks    atomic.Uint64

	// tickMu keeps Stop from releasing the source mid-Tick.
	tickMu   sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	done     chan struct{}

	recordWarn sync.Once
}

// New creates an App. Tracking starts enabled but the source is not
// initialized until Start.
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == (particle.Config{}) {
		cfg = particle.DefaultConfig()
	}
	cfg = cfg.Normalize()

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		source:   opts.Source,
		sim:      particle.New(cfg, opts.Simulation...),
		recorder: opts.Recorder,
		clock:    clock,
		started:  clock(),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	state := gesture.RestState()
	a.state.Store(&state)
	a.config.Store(&cfg)
	a.tracking.Store(true)

	return a
}

// Start initializes the landmark source. It reports whether the source is
// ready; on failure the visualizer keeps running at rest and the caller may
// retry through SetTracking.
func (a *App) Start(ctx context.Context) bool {
	if a.source == nil {
		return false
	}
	ready := a.source.Initialize(ctx)
	if !ready {
		log.Println("Landmark source unavailable, running without hand tracking")
	}
	return ready
}

// Stop tears the pipeline down: the loop exits on its next tick and the
// source and recorder are released. Safe to call more than once.
func (a *App) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
		a.cancel()

		a.tickMu.Lock()
		defer a.tickMu.Unlock()

		if a.source != nil {
			if err := a.source.Close(); err != nil {
				log.Printf("Error closing landmark source: %v", err)
			}
		}
		if a.recorder != nil {
			if err := a.recorder.Close(); err != nil {
				log.Printf("Error closing recorder: %v", err)
			}
		}

		log.Println("Visualizer stopped")
	})
}

// Done is closed once Stop has been called.
func (a *App) Done() <-chan struct{} {
	return a.done
}

// Stopped reports whether Stop has been called.
func (a *App) Stopped() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// Elapsed returns the animation clock.
func (a *App) Elapsed() time.Duration {
	return a.clock().Sub(a.started)
}

// Tick runs one frame: detect, interpret, simulate. It returns the gesture
// state published for this frame. After Stop it only returns the last state.
func (a *App) Tick(ctx context.Context, now time.Duration) gesture.State {
	a.tickMu.Lock()
	defer a.tickMu.Unlock()
	if a.Stopped() {
		return a.State()
	}

	cfg := a.Config()

	var res *detector.Result
	if a.source != nil && a.tracking.Load() {
		res = a.source.Detect(ctx, now)
	}
	if res != nil && a.recorder != nil {
		if err := a.recorder.Record(res); err != nil {
			a.recordWarn.Do(func() {
				log.Printf("Recording failed, further errors suppressed: %v", err)
			})
		}
	}

	state := gesture.Interpret(a.State(), res)
	a.state.Store(&state)

	a.sim.Tick(state, cfg, now)
	a.ticks.Add(1)
	return state
}

// Frame returns what the renderer needs for the current simulator state.
// Like Tick it must be called from the loop goroutine.
func (a *App) Frame() render.Frame {
	return render.Frame{
		Positions: a.sim.Positions(),
		Rotation:  a.sim.Rotation(),
		Material:  a.sim.Material(),
		Gesture:   a.State(),
		Config:    a.sim.Config(),
		Now:       a.Elapsed(),
	}
}

// State returns the most recently published gesture state.
func (a *App) State() gesture.State {
	return *a.state.Load()
}

// Config returns the current particle configuration snapshot.
func (a *App) Config() particle.Config {
	return *a.config.Load()
}

// SetConfig normalizes cfg and publishes it for the next tick.
func (a *App) SetConfig(cfg particle.Config) particle.Config {
	cfg = cfg.Normalize()
	a.config.Store(&cfg)
	return cfg
}

// SetTracking enables or disables hand detection. Enabling initializes the
// source if it is not ready yet; it reports whether tracking is live.
func (a *App) SetTracking(ctx context.Context, enabled bool) bool {
	wasEnabled := a.tracking.Swap(enabled)
	if !enabled || a.source == nil {
		return false
	}
	if !wasEnabled {
		a.source.Resume()
	}
	if a.source.Ready() {
		return true
	}
	return a.Start(ctx)
}

// Tracking reports whether hand detection is enabled.
func (a *App) Tracking() bool {
	return a.tracking.Load()
}

// Ticks returns how many frames have run.
func (a *App) Ticks() uint64 {
	return a.ticks.Load()
}

// Simulator returns the particle simulator.
func (a *App) Simulator() *particle.Simulator {
	return a.sim
}

// Source returns the landmark source.
func (a *App) Source() *detector.Source {
	return a.source
}
