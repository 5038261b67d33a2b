package network

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jusunglee/railmap-go/internal/models"
)

//go:embed data/mumbai.yml
var defaultNetwork []byte

// ErrInvalidNetwork is returned when a network file fails validation
var ErrInvalidNetwork = errors.New("invalid network")

// StationConfig is a station entry in a network file
type StationConfig struct {
	Name  string  `yaml:"name" validate:"required"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Label string  `yaml:"label" validate:"omitempty,oneof=start end"`
}

// LineConfig is a line entry in a network file
type LineConfig struct {
	Name     string   `yaml:"name" validate:"required"`
	Color    string   `yaml:"color" validate:"required,hexcolor"`
	Mode     string   `yaml:"mode"`
	Stations []string `yaml:"stations" validate:"min=2,dive,required"`
}

// File is the on-disk network description
type File struct {
	Name     string          `yaml:"name"`
	Stations []StationConfig `yaml:"stations" validate:"unique=Name,dive"`
	Lines    []LineConfig    `yaml:"lines" validate:"required,min=1,unique=Name,dive"`
}

// Default returns the embedded Mumbai suburban rail and metro network
func Default() (*Network, error) {
	return Parse(defaultNetwork)
}

// MustDefault is like Default but panics on error. The embedded file is
// covered by tests, so a failure here is a build defect.
func MustDefault() *Network {
	n, err := Default()
	if err != nil {
		panic(err)
	}
	return n
}

// Load reads a network file from disk
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML network description
func Parse(data []byte) (*Network, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode network: %w", err)
	}
	return FromFile(f)
}

// FromFile validates f and builds a Network from it
func FromFile(f File) (*Network, error) {
	v := validator.New()
	if err := v.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNetwork, err)
	}

	stations := make([]models.Station, len(f.Stations))
	for i, s := range f.Stations {
		stations[i] = models.Station{
			Name:        s.Name,
			Position:    models.Point{X: s.X, Y: s.Y},
			LabelAnchor: s.Label,
		}
	}

	lines := make([]models.Line, len(f.Lines))
	for i, l := range f.Lines {
		lines[i] = models.Line{
			Name:     l.Name,
			Color:    l.Color,
			Mode:     l.Mode,
			Stations: l.Stations,
		}
	}

	return newNetwork(f.Name, stations, lines), nil
}
