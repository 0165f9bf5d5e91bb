package config

import (
	"errors"
	"flag"
	"testing"

	"github.com/ayusman/aura/internal/particle"
	"github.com/ayusman/aura/internal/shape"
)

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	if cfg.Width != 1280 || cfg.Height != 720 || cfg.TPS != 60 {
		t.Errorf("unexpected window defaults: %+v", cfg)
	}
	if cfg.HTTPAddr != "" || cfg.OTelEndpoint != "" || cfg.Record {
		t.Errorf("optional components should default off: %+v", cfg)
	}
	if !cfg.ReplayLoop {
		t.Error("expected replay to loop by default")
	}
	if got := cfg.Particles.Particle(); got != particle.DefaultConfig() {
		t.Errorf("Particle() = %+v, want %+v", got, particle.DefaultConfig())
	}
}

func TestParseConfig_EnvAndFlags(t *testing.T) {
	t.Setenv("AURA_HTTP_ADDR", "env:9000")
	t.Setenv("AURA_SHAPE", "torus")
	t.Setenv("AURA_COUNT", "20000")
	t.Setenv("AURA_TRAY", "true")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http", "flag:9001", "-hue", "120"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}

	if cfg.HTTPAddr != "flag:9001" {
		t.Errorf("expected flag value for http addr, got %q", cfg.HTTPAddr)
	}
	if !cfg.Tray {
		t.Error("expected tray from env")
	}

	p := cfg.Particles.Particle()
	if p.Shape != shape.Torus || p.Count != 20000 || p.Hue != 120 {
		t.Errorf("unexpected particle config: %+v", p)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{name: "zero width", args: []string{"-width", "0"}},
		{name: "negative tps", args: []string{"-tps", "-1"}},
		{name: "motion above 100", args: []string{"-motion", "150"}},
		{name: "record without db", args: []string{"-record"}},
		{name: "replay without db", args: []string{"-replay", "abc"}},
		{name: "record while replaying", args: []string{"-db", "x.db", "-record", "-replay", "abc"}},
		{name: "unknown flag", args: []string{"-nope"}},
		{name: "bad env value", env: map[string]string{"AURA_WIDTH": "wide"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(nopWriter{})
			if _, err := ParseConfig(fs, tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}

	t.Run("unknown shape", func(t *testing.T) {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		_, err := ParseConfig(fs, []string{"-shape", "pyramid"})
		if !errors.Is(err, shape.ErrInvalidShape) {
			t.Errorf("expected ErrInvalidShape, got %v", err)
		}
	})

	t.Run("nil flag set", func(t *testing.T) {
		if _, err := ParseConfig(nil, nil); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestParticles_ParticleClamps(t *testing.T) {
	p := Particles{Shape: "CUBE", Count: 1, Hue: -10, Saturation: 200, Lightness: 50, Size: 0.6, Speed: 1}
	got := p.Particle()

	if got.Shape != shape.Cube {
		t.Errorf("expected cube, got %q", got.Shape)
	}
	if got.Count != particle.MinCount || got.Hue != 0 || got.Saturation != particle.MaxSaturation {
		t.Errorf("expected clamped values, got %+v", got)
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
