package canvas

import (
	"encoding/json"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
)

func TestRectUnion(t *testing.T) {
	cases := []struct {
		a, b Rect
		want Rect
		ok   bool
	}{
		{R(0, 0, 2, 1), R(0, 1, 2, 3), R(0, 0, 2, 3), true},
		{R(0, 1, 2, 3), R(0, 0, 2, 1), R(0, 0, 2, 3), true},
		{R(0, 0, 1, 2), R(1, 0, 4, 2), R(0, 0, 4, 2), true},
		{R(1, 0, 4, 2), R(0, 0, 1, 2), R(0, 0, 4, 2), true},
		{R(0, 0, 1, 2), R(1, 0, 4, 3), Rect{}, false},
		{R(0, 0, 1, 1), R(2, 0, 3, 1), Rect{}, false},
		{R(0, 0, 1, 1), R(1, 1, 2, 2), Rect{}, false},
	}
	for _, c := range cases {
		got, ok := c.a.Union(c.b)
		if ok != c.ok || got != c.want {
			t.Errorf("%v.Union(%v) = %v, %t; want %v, %t", c.a, c.b, got, ok, c.want, c.ok)
		}
	}
}

func TestRectRelations(t *testing.T) {
	a := R(0, 0, 4, 4)
	b := R(1, 1, 3, 3)
	c := R(4, 0, 5, 4)
	if !a.Contains(b) || b.Contains(a) {
		t.Error("containment wrong")
	}
	if !a.Intersects(b) || a.Intersects(c) {
		t.Error("intersection wrong")
	}
	if a.Area() != 16 {
		t.Errorf("area = %v, want 16", a.Area())
	}
	if !R(2, 0, 2, 5).Empty() {
		t.Error("zero width rect is not empty")
	}
}

func TestColorDist(t *testing.T) {
	if d := White.Dist(White); d != 0 {
		t.Errorf("dist to self = %v", d)
	}
	d := Color{0, 0, 0, 0}.Dist(Color{3, 4, 0, 0})
	if d != 5 {
		t.Errorf("dist = %v, want 5", d)
	}
	d = Color{0, 0, 0, 0}.Dist(White)
	if want := 510.0; math.Abs(d-want) > 1e-9 {
		t.Errorf("dist = %v, want %v", d, want)
	}
}

func TestColorJSON(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{`[1, 2, 3, 4]`, Color{1, 2, 3, 4}},
		{`"#ff0000"`, Color{255, 0, 0, 255}},
		{`"#00ff0080"`, Color{0, 255, 0, 128}},
	}
	for _, c := range cases {
		var got Color
		if err := json.Unmarshal([]byte(c.in), &got); err != nil {
			t.Errorf("unmarshal %s: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("unmarshal %s = %v, want %v", c.in, got, c.want)
		}
	}
	for _, in := range []string{`[1, 2, 3]`, `[0, 0, 0, 256]`, `"red"`, `7`} {
		var c Color
		if err := json.Unmarshal([]byte(in), &c); err == nil {
			t.Errorf("unmarshal %s: expected error", in)
		}
	}
}

func TestRasterImageFlip(t *testing.T) {
	r := NewRaster(3, 2)
	red := Color{255, 0, 0, 255}
	r.Set(0, 0, red)
	im := r.ToImage()
	if got := im.NRGBAAt(0, 1); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("bottom-left pixel in image = %v", got)
	}
	if got := im.NRGBAAt(0, 0); got != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("top-left pixel in image = %v", got)
	}
	back := FromImage(im)
	if !back.Equal(r) {
		t.Error("raster does not survive conversion to image and back")
	}
}

func TestFromImageConverts(t *testing.T) {
	im := image.NewRGBA(image.Rect(10, 10, 12, 11))
	im.Set(10, 10, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	r := FromImage(im)
	if r.Width != 2 || r.Height != 1 {
		t.Fatalf("size = %dx%d", r.Width, r.Height)
	}
	if got := r.At(0, 0); got != (Color{10, 20, 30, 255}) {
		t.Errorf("pixel = %v", got)
	}
}

func TestRenderIdempotent(t *testing.T) {
	rnd := rand.New(rand.NewSource(0x1234))
	var paints []Paint
	for i := 0; i < 50; i++ {
		x0, y0 := rnd.Intn(32), rnd.Intn(32)
		paints = append(paints, Paint{
			Rect:  R(x0, y0, x0+1+rnd.Intn(32-x0), y0+1+rnd.Intn(32-y0)),
			Color: Color{uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), 255},
		})
	}
	a := Render(32, 32, paints)
	b := Render(32, 32, paints)
	if !a.Equal(b) {
		t.Error("rendering twice gives different rasters")
	}
	last := paints[len(paints)-1]
	if got := a.At(last.Rect.Min.X, last.Rect.Min.Y); got != last.Color {
		t.Errorf("last paint not on top: got %v, want %v", got, last.Color)
	}
}
