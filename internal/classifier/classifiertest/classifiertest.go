// Package classifiertest provides a fixed-output predictor and image
// fixtures for tests that need a classifier without a model on disk.
package classifiertest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/Brownie44l1/animal-classifier/internal/classifier"
)

// Scores is the canonical output used across the tests: index 3 wins at 0.6.
var Scores = []float32{0.1, 0.05, 0.05, 0.6, 0.05, 0.05, 0.03, 0.03, 0.02, 0.02}

// Predictor returns Scores (or Err) and records the last input it saw.
type Predictor struct {
	Scores []float32
	Err    error

	mu    sync.Mutex
	calls int
	last  *classifier.Tensor
}

func (p *Predictor) Predict(_ context.Context, input *classifier.Tensor) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.last = input
	if p.Err != nil {
		return nil, p.Err
	}
	return append([]float32(nil), p.Scores...), nil
}

func (p *Predictor) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *Predictor) LastInput() *classifier.Tensor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// SolidPNG encodes a w x h image filled with c.
func SolidPNG(w, h int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
