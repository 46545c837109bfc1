// Package scene loads scene descriptions (YAML or JSON) and builds worlds
// from them.
package scene

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a decoded scene description.
type File struct {
	Name          string     `json:"name" yaml:"name"`
	Models        []Model    `json:"models,omitempty" yaml:"models,omitempty"`
	Grids         []Grid     `json:"grids" yaml:"grids"`
	Blocks        []Block    `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	Panels        []Panel    `json:"panels,omitempty" yaml:"panels,omitempty"`
	Links         [][]int64  `json:"links,omitempty" yaml:"links,omitempty"`
	MateTolerance *Tolerance `json:"mateTolerance,omitempty" yaml:"mateTolerance,omitempty"`
	Events        []Event    `json:"events,omitempty" yaml:"events,omitempty"`
}

// Model declares a block model by its attachment points.
type Model struct {
	Name    string  `json:"name" yaml:"name"`
	Dummies []Dummy `json:"dummies" yaml:"dummies"`
}

// Dummy is a named attachment point. Rotation is XYZ Euler in degrees.
type Dummy struct {
	Name     string `json:"name" yaml:"name"`
	Parent   *int   `json:"parent,omitempty" yaml:"parent,omitempty"`
	Position Vec3   `json:"position" yaml:"position"`
	Rotation Vec3   `json:"rotation" yaml:"rotation"`
}

// Grid is a rigid body. Spin is in degrees per second.
type Grid struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Position Vec3   `json:"position" yaml:"position"`
	Forward  *Vec3  `json:"forward,omitempty" yaml:"forward,omitempty"`
	Up       *Vec3  `json:"up,omitempty" yaml:"up,omitempty"`
	Velocity Vec3   `json:"velocity" yaml:"velocity"`
	Spin     Vec3   `json:"spin" yaml:"spin"`
}

// Block places a block on a grid. Forward and Up are direction names.
type Block struct {
	ID       int64  `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	Grid     int64  `json:"grid" yaml:"grid"`
	Model    string `json:"model" yaml:"model"`
	Position Vec3   `json:"position" yaml:"position"`
	Forward  string `json:"forward" yaml:"forward"`
	Up       string `json:"up" yaml:"up"`
}

// Panel is a display block.
type Panel struct {
	Block       `yaml:",inline"`
	TextureSize *Vec2  `json:"textureSize,omitempty" yaml:"textureSize,omitempty"`
	SurfaceSize *Vec2  `json:"surfaceSize,omitempty" yaml:"surfaceSize,omitempty"`
	Foreground  *Color `json:"foreground,omitempty" yaml:"foreground,omitempty"`
	CustomData  string `json:"customData" yaml:"customData"`
}

// Tolerance bounds how close two connectors must be to mate. Zero lock
// bounds keep the world defaults.
type Tolerance struct {
	Distance     float64 `json:"distance" yaml:"distance"`
	AngleDeg     float64 `json:"angleDeg" yaml:"angleDeg"`
	LockDistance float64 `json:"lockDistance,omitempty" yaml:"lockDistance,omitempty"`
	LockAngleDeg float64 `json:"lockAngleDeg,omitempty" yaml:"lockAngleDeg,omitempty"`
}

// Vec3 decodes from a three-element sequence.
type Vec3 [3]float64

// Vec2 decodes from a two-element sequence.
type Vec2 [2]float64

func (v *Vec3) UnmarshalYAML(n *yaml.Node) error { return decodeFixed(n.Decode, v[:]) }
func (v *Vec3) UnmarshalJSON(b []byte) error    { return decodeFixed(jsonDecoder(b), v[:]) }
func (v *Vec2) UnmarshalYAML(n *yaml.Node) error { return decodeFixed(n.Decode, v[:]) }
func (v *Vec2) UnmarshalJSON(b []byte) error    { return decodeFixed(jsonDecoder(b), v[:]) }

func jsonDecoder(b []byte) func(any) error {
	return func(v any) error { return json.Unmarshal(b, v) }
}

func decodeFixed(decode func(any) error, dst []float64) error {
	var xs []float64
	if err := decode(&xs); err != nil {
		return err
	}
	if len(xs) != len(dst) {
		return fmt.Errorf("want %d numbers, got %d", len(dst), len(xs))
	}
	copy(dst, xs)
	return nil
}

// Color decodes from "#rrggbb" or "#rrggbbaa".
type Color color.RGBA

func (c *Color) UnmarshalYAML(n *yaml.Node) error { return c.decode(n.Decode) }
func (c *Color) UnmarshalJSON(b []byte) error    { return c.decode(jsonDecoder(b)) }

func (c *Color) decode(decode func(any) error) error {
	var s string
	if err := decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = Color(parsed)
	return nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa". Alpha defaults to opaque.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("colour %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// LoadYAML decodes a scene from YAML.
func LoadYAML(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return &f, nil
}

// LoadJSON decodes a scene from JSON.
func LoadJSON(r io.Reader) (*File, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return &f, nil
}

// LoadFile decodes path as JSON when it ends in .json and as YAML otherwise.
func LoadFile(path string) (*File, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	defer r.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(r)
	}
	return LoadYAML(r)
}
