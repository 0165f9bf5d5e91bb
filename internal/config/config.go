// Package config loads runtime settings from the environment and command
// line flags.
package config

import (
	"errors"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/ayusman/aura/internal/particle"
	"github.com/ayusman/aura/internal/shape"
)

// Config holds the visualizer command configuration.
type Config struct {
	CameraID        int     `env:"AURA_CAMERA_ID"        envDefault:"0"`
	Width           int     `env:"AURA_WIDTH"            envDefault:"1280"`
	Height          int     `env:"AURA_HEIGHT"           envDefault:"720"`
	TPS             int     `env:"AURA_TPS"              envDefault:"60"`
	MotionThreshold float64 `env:"AURA_MOTION_THRESHOLD" envDefault:"0"`
	Mock            bool    `env:"AURA_MOCK"`
	Headless        bool    `env:"AURA_HEADLESS"`

	HTTPAddr  string `env:"AURA_HTTP_ADDR"`
	StaticDir string `env:"AURA_STATIC_DIR"`

	RecordPath    string `env:"AURA_RECORD_PATH"`
	Record        bool   `env:"AURA_RECORD"`
	ReplaySession string `env:"AURA_REPLAY_SESSION"`
	ReplayLoop    bool   `env:"AURA_REPLAY_LOOP" envDefault:"true"`

	Tray         bool   `env:"AURA_TRAY"`
	OTelEndpoint string `env:"AURA_OTEL_ENDPOINT"`

	Particles Particles `envPrefix:"AURA_"`
}

// Particles holds the initial particle configuration.
type Particles struct {
	Shape      string  `env:"SHAPE"      envDefault:"sphere"`
	Count      int     `env:"COUNT"      envDefault:"35000"`
	Hue        float64 `env:"HUE"        envDefault:"280"`
	Saturation float64 `env:"SATURATION" envDefault:"90"`
	Lightness  float64 `env:"LIGHTNESS"  envDefault:"60"`
	Size       float64 `env:"SIZE"       envDefault:"0.6"`
	Speed      float64 `env:"SPEED"      envDefault:"1.2"`
}

// ParseConfig reads the environment, then lets flags in args override it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag set is required")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "camera device id")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "window width")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "window height")
	fs.IntVar(&cfg.TPS, "tps", cfg.TPS, "simulation ticks per second")
	fs.Float64Var(&cfg.MotionThreshold, "motion", cfg.MotionThreshold, "skip detection below this percentage of changed pixels (0 disables)")
	fs.BoolVar(&cfg.Mock, "mock", cfg.Mock, "use the mock detector instead of MediaPipe")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run without a window")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "control server address (empty disables)")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "directory served at / by the control server")
	fs.StringVar(&cfg.RecordPath, "db", cfg.RecordPath, "sqlite file for recorded sessions")
	fs.BoolVar(&cfg.Record, "record", cfg.Record, "record landmarks into -db")
	fs.StringVar(&cfg.ReplaySession, "replay", cfg.ReplaySession, "replay a recorded session instead of the camera")
	fs.BoolVar(&cfg.ReplayLoop, "loop", cfg.ReplayLoop, "loop the replayed session")
	fs.BoolVar(&cfg.Tray, "tray", cfg.Tray, "show the system tray controller")
	fs.StringVar(&cfg.OTelEndpoint, "otel", cfg.OTelEndpoint, "OTLP/HTTP trace endpoint (empty disables)")

	fs.StringVar(&cfg.Particles.Shape, "shape", cfg.Particles.Shape, "initial shape: sphere, cube, torus, heart, dna")
	fs.IntVar(&cfg.Particles.Count, "count", cfg.Particles.Count, "initial particle count")
	fs.Float64Var(&cfg.Particles.Hue, "hue", cfg.Particles.Hue, "particle hue in degrees")
	fs.Float64Var(&cfg.Particles.Saturation, "saturation", cfg.Particles.Saturation, "particle saturation percent")
	fs.Float64Var(&cfg.Particles.Lightness, "lightness", cfg.Particles.Lightness, "particle lightness percent")
	fs.Float64Var(&cfg.Particles.Size, "size", cfg.Particles.Size, "particle size")
	fs.Float64Var(&cfg.Particles.Speed, "speed", cfg.Particles.Speed, "turbulence speed")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be clamped into a usable range.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("tps must be positive, got %d", c.TPS)
	}
	if c.MotionThreshold < 0 || c.MotionThreshold > 100 {
		return fmt.Errorf("motion threshold must be within [0, 100], got %v", c.MotionThreshold)
	}
	if (c.Record || c.ReplaySession != "") && c.RecordPath == "" {
		return errors.New("recording and replay require a database path")
	}
	if c.Record && c.ReplaySession != "" {
		return errors.New("cannot record while replaying")
	}
	if _, err := shape.Parse(c.Particles.Shape); err != nil {
		return err
	}
	return nil
}

// Particle returns the initial particle configuration, normalized.
func (p Particles) Particle() particle.Config {
	s, err := shape.Parse(p.Shape)
	if err != nil {
		s = shape.Sphere
	}
	return particle.Config{
		Count:      p.Count,
		Hue:        p.Hue,
		Saturation: p.Saturation,
		Lightness:  p.Lightness,
		Size:       p.Size,
		Speed:      p.Speed,
		Shape:      s,
	}.Normalize()
}
