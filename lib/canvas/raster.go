package canvas

import (
	"image"

	"golang.org/x/image/draw"
)

// A Raster is a dense grid of pixels. Row 0 is the bottom row of the canvas.
type Raster struct {
	Width  int
	Height int
	Pix    []Color
}

// NewRaster returns an opaque white raster with the given size.
func NewRaster(width, height int) *Raster {
	r := &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]Color, width*height),
	}
	for i := range r.Pix {
		r.Pix[i] = White
	}
	return r
}

// Bounds returns the rectangle covering the whole raster.
func (r *Raster) Bounds() Rect {
	return R(0, 0, r.Width, r.Height)
}

// At returns the color of the pixel at (x, y).
func (r *Raster) At(x, y int) Color {
	return r.Pix[y*r.Width+x]
}

// Set sets the color of the pixel at (x, y).
func (r *Raster) Set(x, y int, c Color) {
	r.Pix[y*r.Width+x] = c
}

// Fill sets every pixel inside rect to c. The rect is clipped to the raster.
func (r *Raster) Fill(rect Rect, c Color) {
	x0 := max(rect.Min.X, 0)
	x1 := min(rect.Max.X, r.Width)
	y0 := max(rect.Min.Y, 0)
	y1 := min(rect.Max.Y, r.Height)
	for y := y0; y < y1; y++ {
		row := r.Pix[y*r.Width : (y+1)*r.Width : (y+1)*r.Width]
		for x := x0; x < x1; x++ {
			row[x] = c
		}
	}
}

// Equal returns true if both rasters have the same size and pixels.
func (r *Raster) Equal(o *Raster) bool {
	if r.Width != o.Width || r.Height != o.Height {
		return false
	}
	for i, c := range r.Pix {
		if o.Pix[i] != c {
			return false
		}
	}
	return true
}

// Clone returns a copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]Color, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Pix: pix}
}

// ToImage converts the raster to an image. Image row 0 is the top of the
// canvas, so rows are flipped.
func (r *Raster) ToImage() *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for y := 0; y < r.Height; y++ {
		off := (r.Height - 1 - y) * im.Stride
		row := im.Pix[off : off+r.Width*4 : off+r.Width*4]
		for x := 0; x < r.Width; x++ {
			c := r.Pix[y*r.Width+x]
			copy(row[x*4:x*4+4], c[:])
		}
	}
	return im
}

// FromImage converts an image to a raster, flipping rows so that the bottom
// row of the image becomes raster row 0.
func FromImage(im image.Image) *Raster {
	b := im.Bounds()
	ni, ok := im.(*image.NRGBA)
	if !ok {
		ni = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(ni, ni.Rect, im, b.Min, draw.Src)
	} else if b.Min != (image.Point{}) {
		ni = ni.SubImage(b).(*image.NRGBA)
	}
	w := b.Dx()
	h := b.Dy()
	r := &Raster{Width: w, Height: h, Pix: make([]Color, w*h)}
	for y := 0; y < h; y++ {
		off := y * ni.Stride
		row := ni.Pix[off : off+w*4 : off+w*4]
		dst := r.Pix[(h-1-y)*w : (h-y)*w]
		for x := range dst {
			copy(dst[x][:], row[x*4:x*4+4])
		}
	}
	return r
}
