// Package shape generates the target point clouds the particle field morphs
// between.
package shape

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidShape is returned when a shape name is not recognized.
var ErrInvalidShape = errors.New("invalid shape")

// Shape identifies a primitive family.
type Shape string

const (
	Sphere Shape = "sphere"
	Cube   Shape = "cube"
	Torus  Shape = "torus"
	Heart  Shape = "heart"
	DNA    Shape = "dna"
)

// All lists the shapes in menu order.
var All = []Shape{Sphere, Cube, Torus, Heart, DNA}

// Parse converts a case-insensitive name into a Shape.
func Parse(name string) (Shape, error) {
	s := Shape(strings.ToLower(strings.TrimSpace(name)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidShape, name)
	}
	return s, nil
}

// Valid reports whether s is one of All.
func (s Shape) Valid() bool {
	switch s {
	case Sphere, Cube, Torus, Heart, DNA:
		return true
	}
	return false
}

func (s Shape) String() string {
	return string(s)
}

// UnmarshalText implements encoding.TextUnmarshaler so JSON and env values are
// validated on decode.
func (s *Shape) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
