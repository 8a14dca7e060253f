package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Band is a normative RSI reference range drawn as a shaded strip behind
// the data points. Bands are external configuration, not computed here.
type Band struct {
	Label string  `yaml:"label"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

type bandsFile struct {
	Bands []Band `yaml:"bands"`
}

// LoadBands reads the normative bands yaml file
func LoadBands(path string) ([]Band, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bands file: %w", err)
	}

	var bf bandsFile
	if err = yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing bands file: %w", err)
	}

	for _, band := range bf.Bands {
		if band.Max <= band.Min {
			return nil, fmt.Errorf("band '%s': max must be greater than min", band.Label)
		}
	}

	return bf.Bands, nil
}
