package imageio

import (
	"fmt"

	"github.com/depp/blockpaint/lib/canvas"
)

// MaxScale is the largest scale factor accepted by Scale.
const MaxScale = 32

// Scale returns a raster enlarged by an integer factor, with each pixel
// becoming a factor×factor square.
func Scale(r *canvas.Raster, factor int) (*canvas.Raster, error) {
	if factor < 1 || MaxScale < factor {
		return nil, fmt.Errorf("invalid scale: %d", factor)
	}
	if factor == 1 {
		return r, nil
	}
	out := &canvas.Raster{
		Width:  r.Width * factor,
		Height: r.Height * factor,
		Pix:    make([]canvas.Color, r.Width*r.Height*factor*factor),
	}
	for y := 0; y < r.Height; y++ {
		src := r.Pix[y*r.Width : (y+1)*r.Width : (y+1)*r.Width]
		row := out.Pix[y*factor*out.Width : (y*factor+1)*out.Width]
		for x, c := range src {
			px := row[x*factor : (x+1)*factor : (x+1)*factor]
			for i := range px {
				px[i] = c
			}
		}
		for yy := 1; yy < factor; yy++ {
			copy(out.Pix[(y*factor+yy)*out.Width:], row)
		}
	}
	return out, nil
}
