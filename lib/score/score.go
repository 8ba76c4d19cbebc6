// Package score compares painted rasters against target images.
package score

import (
	"errors"
	"fmt"
	"math"

	"github.com/depp/blockpaint/lib/canvas"
)

// ErrDimensionMismatch indicates rasters with different sizes.
var ErrDimensionMismatch = errors.New("raster dimensions differ")

// SimilarityScale converts the summed pixel distance into cost units.
const SimilarityScale = 0.005

// Similarity returns the similarity penalty between two rasters: the sum of
// the color distance of each pixel, scaled by SimilarityScale.
func Similarity(a, b *canvas.Raster) (float64, error) {
	if a.Width != b.Width || a.Height != b.Height {
		return 0, fmt.Errorf("%w: %dx%d and %dx%d",
			ErrDimensionMismatch, a.Width, a.Height, b.Width, b.Height)
	}
	var sum float64
	for i, c := range a.Pix {
		sum += c.Dist(b.Pix[i])
	}
	return sum * SimilarityScale, nil
}

// Total returns the final score for a program: its execution cost plus the
// similarity penalty, rounded to an integer.
func Total(cost, similarity float64) int64 {
	return int64(math.Round(cost + similarity))
}
