package shape

import (
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Shape
		wantErr bool
	}{
		{in: "sphere", want: Sphere},
		{in: "DNA", want: DNA},
		{in: " torus ", want: Torus},
		{in: "pyramid", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidShape) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidShape", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestShape_UnmarshalText(t *testing.T) {
	var s Shape
	if err := s.UnmarshalText([]byte("heart")); err != nil || s != Heart {
		t.Errorf("UnmarshalText(heart) = %q, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("blob")); err == nil {
		t.Error("UnmarshalText(blob) should fail")
	}
}

func TestGenerate_Counts(t *testing.T) {
	counts := []int{1, 2, 10000, 35000, 60000}

	for _, s := range All {
		for _, n := range counts {
			points := Generate(s, n, NewRand(1))
			if len(points) != 3*n {
				t.Errorf("Generate(%s, %d) len = %d, want %d", s, n, len(points), 3*n)
			}
		}
	}
}

func TestGenerate_Empty(t *testing.T) {
	for _, n := range []int{0, -5} {
		if got := Generate(Sphere, n, nil); len(got) != 0 {
			t.Errorf("Generate(sphere, %d) len = %d, want 0", n, len(got))
		}
	}
}

func TestGenerate_Bounds(t *testing.T) {
	const n = 12000
	helixReach := math.Hypot(HelixRadius, HelixPitch*math.Pi*HelixTurns)

	tests := []struct {
		shape     Shape
		maxRadius float64
		minRadius float64
	}{
		{shape: Sphere, maxRadius: SphereRadius + 0.01, minRadius: SphereRadius - 0.01},
		{shape: Cube, maxRadius: math.Sqrt(3) * CubeSide / 2},
		{shape: Torus, maxRadius: TorusMajor + TorusMinor + 0.01, minRadius: TorusMajor - TorusMinor - 0.01},
		{shape: Heart, maxRadius: 40},
		{shape: DNA, maxRadius: helixReach + 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.shape.String(), func(t *testing.T) {
			points := Generate(tt.shape, n, NewRand(7))
			for i := 0; i < n; i++ {
				x, y, z := float64(points[3*i]), float64(points[3*i+1]), float64(points[3*i+2])
				r := math.Sqrt(x*x + y*y + z*z)
				if r > tt.maxRadius || r < tt.minRadius {
					t.Fatalf("point %d radius %f outside [%f, %f]", i, r, tt.minRadius, tt.maxRadius)
				}
			}
		})
	}
}

func TestGenerate_CubeFillsVolume(t *testing.T) {
	points := Generate(Cube, 20000, NewRand(3))
	half := float32(CubeSide / 2)

	var inner int
	for i := 0; i < len(points); i += 3 {
		for a := 0; a < 3; a++ {
			if points[i+a] < -half || points[i+a] > half {
				t.Fatalf("coordinate %f outside [-%f, %f]", points[i+a], half, half)
			}
		}
		if abs32(points[i]) < half/2 && abs32(points[i+1]) < half/2 && abs32(points[i+2]) < half/2 {
			inner++
		}
	}
	// the inner half-cube holds 1/8 of a uniform fill
	if inner < 2000 || inner > 3000 {
		t.Errorf("inner count = %d, want about 2500 for a volume fill", inner)
	}
}

func TestGenerate_SphereIsDeterministic(t *testing.T) {
	a := Generate(Sphere, 5000, nil)
	b := Generate(Sphere, 5000, nil)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sphere differs at %d: %f != %f", i, a[i], b[i])
		}
	}
}

func TestGenerate_SeededRepeatable(t *testing.T) {
	for _, s := range All {
		t.Run(s.String(), func(t *testing.T) {
			a := Generate(s, 3000, NewRand(42))
			b := Generate(s, 3000, NewRand(42))
			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("seeded %s differs at %d", s, i)
				}
			}
		})
	}
}

func TestGenerate_DNAStrands(t *testing.T) {
	const n = 9000
	points := Generate(DNA, n, NewRand(5))

	for i := 0; i < n; i += 3 {
		x, y, z := float64(points[3*i]), float64(points[3*i+1]), float64(points[3*i+2])
		// undo the 45° tilt
		ux := (x + z) / (2 * helixTilt)
		if r := math.Hypot(ux, y); math.Abs(r-HelixRadius) > 0.05 {
			t.Fatalf("strand point %d at radius %f, want %f", i, r, HelixRadius)
		}
	}
}

func TestGenerate_UnknownFallsBackToSphere(t *testing.T) {
	got := Generate(Shape("blob"), 100, nil)
	want := Generate(Sphere, 100, nil)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unknown shape differs from sphere at %d", i)
		}
	}
}

func BenchmarkGenerate(b *testing.B) {
	for _, s := range All {
		b.Run(s.String(), func(b *testing.B) {
			rng := NewRand(1)
			for i := 0; i < b.N; i++ {
				Generate(s, 60000, rng)
			}
		})
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
