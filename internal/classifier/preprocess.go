package classifier

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	ImageSize = 224
	Channels  = 3
)

// Tensor is a single image batch in NHWC layout.
type Tensor struct {
	Data  []float32
	Shape [4]int64
}

// Preprocess decodes an image and turns it into a (1, 224, 224, 3)
// tensor with values in [0, 1].
func Preprocess(r io.Reader) (*Tensor, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}

// PreprocessFile is Preprocess for an image on disk.
func PreprocessFile(path string) (*Tensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Preprocess(f)
}

// FromImage resizes img to 224x224 without keeping the aspect ratio and
// scales each 8-bit channel into [0, 1]. Every output pixel is copied
// from the source pixel under its centre. Alpha is dropped.
func FromImage(img image.Image) *Tensor {
	resized := image.NewNRGBA(image.Rect(0, 0, ImageSize, ImageSize))
	draw.NearestNeighbor.Scale(resized, resized.Rect, img, img.Bounds(), draw.Src, nil)

	data := make([]float32, ImageSize*ImageSize*Channels)
	for y := 0; y < ImageSize; y++ {
		for x := 0; x < ImageSize; x++ {
			px := resized.NRGBAAt(x, y)

			idx := (y*ImageSize + x) * Channels
			data[idx] = float32(px.R) / 255.0
			data[idx+1] = float32(px.G) / 255.0
			data[idx+2] = float32(px.B) / 255.0
		}
	}

	return &Tensor{
		Data:  data,
		Shape: [4]int64{1, ImageSize, ImageSize, Channels},
	}
}
