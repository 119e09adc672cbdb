package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Brownie44l1/animal-classifier/internal/classifier"
)

// Metadata describes the exported graph. Any field left out of the
// metadata file falls back to DefaultMetadata.
type Metadata struct {
	InputName   string  `json:"input_name"`
	OutputName  string  `json:"output_name"`
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
}

func DefaultMetadata() Metadata {
	return Metadata{
		InputName:   "input",
		OutputName:  "output",
		InputShape:  []int64{1, classifier.ImageSize, classifier.ImageSize, classifier.Channels},
		OutputShape: []int64{1, 10},
	}
}

// NumClasses is the size of the last output dimension.
func (m Metadata) NumClasses() int {
	if len(m.OutputShape) == 0 {
		return 0
	}
	return int(m.OutputShape[len(m.OutputShape)-1])
}

func (m Metadata) validate() error {
	want := DefaultMetadata().InputShape
	if len(m.InputShape) != len(want) {
		return fmt.Errorf("input shape %v must be %v", m.InputShape, want)
	}
	for i := range want {
		if m.InputShape[i] != want[i] {
			return fmt.Errorf("input shape %v must be %v", m.InputShape, want)
		}
	}
	if len(m.OutputShape) != 2 || m.OutputShape[0] != 1 || m.OutputShape[1] < 1 {
		return fmt.Errorf("output shape %v must be [1 N]", m.OutputShape)
	}
	return nil
}

// LoadMetadata reads path if it exists. A missing file yields the defaults.
func LoadMetadata(path string) (Metadata, error) {
	metadata := DefaultMetadata()

	metaFile, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return metadata, nil
	}
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var fromFile Metadata
	if err := json.Unmarshal(metaFile, &fromFile); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if fromFile.InputName != "" {
		metadata.InputName = fromFile.InputName
	}
	if fromFile.OutputName != "" {
		metadata.OutputName = fromFile.OutputName
	}
	if len(fromFile.InputShape) > 0 {
		metadata.InputShape = fromFile.InputShape
	}
	if len(fromFile.OutputShape) > 0 {
		metadata.OutputShape = fromFile.OutputShape
	}

	if err := metadata.validate(); err != nil {
		return Metadata{}, fmt.Errorf("invalid metadata %s: %w", path, err)
	}
	return metadata, nil
}
