package shape

import (
	"math"
	"math/rand/v2"
)

// Geometry of each primitive, in world units before expansion.
const (
	SphereRadius = 25.0
	CubeSide     = 45.0

	TorusMajor = 28.0
	TorusMinor = 10.0

	HeartScale = 1.8
	HeartDepth = 12.0

	HelixRadius = 12.0
	HelixPitch  = 8.0
	HelixTurns  = 5.0 // full span is 2π·HelixTurns
	RungBucket  = 30
	// helixTilt is cos(45°) rounded, applied to x and z.
	helixTilt = 0.7
)

// NewRand returns a seeded PCG source for Generate.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate returns n target points for s as a flat x,y,z buffer of length 3n.
// Random draws come from rng, so a seeded rng reproduces the same cloud.
// Unknown shapes fall back to Sphere.
func Generate(s Shape, n int, rng *rand.Rand) []float32 {
	if n <= 0 {
		return []float32{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	out := make([]float32, 3*n)
	for i := 0; i < n; i++ {
		var x, y, z float64
		switch s {
		case Cube:
			x, y, z = cube(rng)
		case Torus:
			x, y, z = torus(rng)
		case Heart:
			x, y, z = heart(rng)
		case DNA:
			x, y, z = helix(i, n, rng)
		default:
			x, y, z = sphere(i, n)
		}
		out[3*i] = float32(x)
		out[3*i+1] = float32(y)
		out[3*i+2] = float32(z)
	}
	return out
}

// sphere places points on a Fibonacci lattice, which avoids pole clustering.
func sphere(i, n int) (x, y, z float64) {
	phi := math.Acos(-1 + 2*float64(i)/float64(n))
	theta := math.Sqrt(float64(n)*math.Pi) * phi
	sinPhi := math.Sin(phi)
	return SphereRadius * math.Cos(theta) * sinPhi,
		SphereRadius * math.Sin(theta) * sinPhi,
		SphereRadius * math.Cos(phi)
}

func cube(rng *rand.Rand) (x, y, z float64) {
	return (rng.Float64() - 0.5) * CubeSide,
		(rng.Float64() - 0.5) * CubeSide,
		(rng.Float64() - 0.5) * CubeSide
}

func torus(rng *rand.Rand) (x, y, z float64) {
	u := rng.Float64() * 2 * math.Pi
	v := rng.Float64() * 2 * math.Pi
	ring := TorusMajor + TorusMinor*math.Cos(v)
	return ring * math.Cos(u), ring * math.Sin(u), TorusMinor * math.Sin(v)
}

// heart samples the curve at random t, so density varies along it.
func heart(rng *rand.Rand) (x, y, z float64) {
	t := rng.Float64() * 2 * math.Pi
	sin := math.Sin(t)
	x = 16 * sin * sin * sin
	y = 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
	z = (rng.Float64() - 0.5) * HeartDepth
	return x * HeartScale, y * HeartScale, z
}

// helix interleaves two strands and the rungs between them (i mod 3), then
// tilts the whole structure 45° about Y.
func helix(i, n int, rng *rand.Rand) (x, y, z float64) {
	span := 2 * math.Pi * HelixTurns

	switch i % 3 {
	case 0, 1:
		t := float64(i) / float64(n) * span
		phase := float64(i%3) * math.Pi
		x = HelixRadius * math.Cos(t+phase)
		y = HelixRadius * math.Sin(t+phase)
		z = HelixPitch * (t - span/2)
	default:
		t := float64(i/RungBucket) * (RungBucket / float64(n)) * span
		x1, y1 := HelixRadius*math.Cos(t), HelixRadius*math.Sin(t)
		x2, y2 := HelixRadius*math.Cos(t+math.Pi), HelixRadius*math.Sin(t+math.Pi)
		f := rng.Float64()
		x = x1 + (x2-x1)*f
		y = y1 + (y2-y1)*f
		z = HelixPitch * (t - span/2)
	}

	return x*helixTilt - z*helixTilt, y, x*helixTilt + z*helixTilt
}

// MaxRadius returns the largest distance from the origin in a flat buffer.
func MaxRadius(points []float32) float64 {
	var furthest float64
	for i := 0; i+2 < len(points); i += 3 {
		x, y, z := float64(points[i]), float64(points[i+1]), float64(points[i+2])
		if r := math.Sqrt(x*x + y*y + z*z); r > furthest {
			furthest = r
		}
	}
	return furthest
}
