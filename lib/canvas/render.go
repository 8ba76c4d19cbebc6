package canvas

// A Paint is a rectangle filled with a flat color.
type Paint struct {
	Rect  Rect  `json:"rect"`
	Color Color `json:"color"`
}

// Render returns a white raster with each paint applied in order. Later paints
// cover earlier ones.
func Render(width, height int, paints []Paint) *Raster {
	r := NewRaster(width, height)
	for _, p := range paints {
		r.Fill(p.Rect, p.Color)
	}
	return r
}
