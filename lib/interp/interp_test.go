package interp

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/depp/blockpaint/lib/block"
	"github.com/depp/blockpaint/lib/canvas"
	"github.com/depp/blockpaint/lib/isl"
)

var (
	black = canvas.Color{0, 0, 0, 255}
	red   = canvas.Color{255, 0, 0, 255}
)

func TestColorRoot(t *testing.T) {
	r, err := Run(&Config{Width: 2, Height: 2}, isl.Program{
		isl.Color{Block: block.Root, Color: black},
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Cost != 5 {
		t.Errorf("cost = %v, want 5", r.Cost)
	}
	for i, c := range r.Raster.Pix {
		if c != black {
			t.Errorf("pixel %d = %v", i, c)
		}
	}
}

func TestCutPointColor(t *testing.T) {
	r, err := Run(&Config{Width: 4, Height: 4}, isl.Program{
		isl.CutPoint{Block: block.Root, Point: canvas.Point{X: 2, Y: 2}},
		isl.Color{Block: "0.1", Color: red},
	})
	if err != nil {
		t.Fatal(err)
	}
	if r.Cost != 30 {
		t.Errorf("cost = %v, want 30", r.Cost)
	}
	quad := canvas.R(2, 0, 4, 2)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := canvas.White
			if quad.ContainsPoint(canvas.Point{X: x, Y: y}) {
				want = red
			}
			if got := r.Raster.At(x, y); got != want {
				t.Errorf("pixel (%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestMergeCost(t *testing.T) {
	// 10×10 canvas, cut at x=3: blocks of area 30 and 70.
	m, err := New(&Config{Width: 10, Height: 10})
	if err != nil {
		t.Fatal(err)
	}
	steps := []struct {
		ins  isl.Instruction
		cost float64
	}{
		{isl.CutAxis{Block: block.Root, Axis: block.X, Coord: 3}, 7},
		{isl.Color{Block: "0.0", Color: red}, math.Round(5 * 100.0 / 30)},
		{isl.Merge{A: "0.0", B: "0.1"}, math.Round(100.0 / 70)},
		{isl.Color{Block: "1", Color: black}, 5},
	}
	var total float64
	for _, s := range steps {
		c, err := m.Step(s.ins)
		if err != nil {
			t.Fatalf("%v: %v", s.ins, err)
		}
		if c != s.cost {
			t.Errorf("%v: cost = %v, want %v", s.ins, c, s.cost)
		}
		total += c
	}
	if m.Cost() != total {
		t.Errorf("total = %v, want %v", m.Cost(), total)
	}
	if len(m.Paints()) != 2 {
		t.Errorf("paints = %v", m.Paints())
	}
}

func TestCustomCosts(t *testing.T) {
	r, err := Run(&Config{
		Width:  4,
		Height: 4,
		Costs:  CostTable{CutPoint: 3, CutAxis: 2, Color: 5, Merge: 1},
	}, isl.Program{
		isl.CutAxis{Block: block.Root, Axis: block.Y, Coord: 2},
		isl.Color{Block: "0.1", Color: red},
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := 2.0 + 10; r.Cost != want {
		t.Errorf("cost = %v, want %v", r.Cost, want)
	}
}

func TestFatalErrors(t *testing.T) {
	cases := []struct {
		name string
		prog isl.Program
		err  error
	}{
		{"unknown", isl.Program{isl.Color{Block: "0.1", Color: red}}, block.ErrUnknownBlock},
		{"reuse parent", isl.Program{
			isl.CutAxis{Block: block.Root, Axis: block.X, Coord: 1},
			isl.CutAxis{Block: block.Root, Axis: block.X, Coord: 2},
		}, block.ErrUnknownBlock},
		{"incompatible", isl.Program{
			isl.CutPoint{Block: block.Root, Point: canvas.Point{X: 1, Y: 1}},
			isl.Merge{A: "0.0", B: "0.2"},
		}, block.ErrIncompatibleMerge},
		{"empty", isl.Program{
			isl.CutAxis{Block: block.Root, Axis: block.X, Coord: 0},
			isl.Color{Block: "0.0", Color: red},
		}, block.ErrEmptyBlock},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Run(&Config{Width: 3, Height: 3}, c.prog)
			if !errors.Is(err, c.err) {
				t.Fatalf("err = %v, want %v", err, c.err)
			}
			var ee *ExecError
			if !errors.As(err, &ee) || ee.Index != len(c.prog)-1 {
				t.Errorf("error does not identify last instruction: %v", err)
			}
			if !IsFatal(err) {
				t.Error("IsFatal = false")
			}
		})
	}
}

// TestInvariants runs random programs and checks the partition invariant,
// cost monotonicity, and that rendering the paint log reproduces the raster.
func TestInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(0x1234))
	const w, h = 40, 30
	for iter := 0; iter < 20; iter++ {
		m, err := New(&Config{Width: w, Height: h})
		if err != nil {
			t.Fatal(err)
		}
		for step := 0; step < 60; step++ {
			blocks := m.Partition().Blocks()
			b := blocks[rnd.Intn(len(blocks))]
			var ins isl.Instruction
			switch rnd.Intn(4) {
			case 0:
				if b.Rect.Dx() < 2 || b.Rect.Dy() < 2 {
					continue
				}
				ins = isl.CutPoint{Block: b.ID, Point: canvas.Point{
					X: b.Rect.Min.X + 1 + rnd.Intn(b.Rect.Dx()-1),
					Y: b.Rect.Min.Y + 1 + rnd.Intn(b.Rect.Dy()-1),
				}}
			case 1:
				if b.Rect.Dy() < 2 {
					continue
				}
				ins = isl.CutAxis{Block: b.ID, Axis: block.Y, Coord: b.Rect.Min.Y + 1 + rnd.Intn(b.Rect.Dy()-1)}
			case 2:
				ins = isl.Color{Block: b.ID, Color: canvas.Color{uint8(rnd.Intn(256)), uint8(rnd.Intn(256)), 0, 255}}
			case 3:
				for _, o := range blocks {
					if _, ok := b.Rect.Union(o.Rect); ok && o.ID != b.ID {
						ins = isl.Merge{A: b.ID, B: o.ID}
						break
					}
				}
				if ins == nil {
					continue
				}
			}
			before := m.Cost()
			c, err := m.Step(ins)
			if err != nil {
				t.Fatalf("%v: %v", ins, err)
			}
			if c < 0 || m.Cost() != before+c {
				t.Fatalf("%v: cost went from %v to %v (step %v)", ins, before, m.Cost(), c)
			}
			if err := m.Partition().Check(); err != nil {
				t.Fatalf("after %v: %v", ins, err)
			}
		}
		if !canvas.Render(w, h, m.Paints()).Equal(m.Raster()) {
			t.Fatal("rendering the paint log does not match the raster")
		}
	}
}

func TestInitial(t *testing.T) {
	const text = `{
  "width": 4, "height": 2,
  "blocks": [
    {"blockId": "0", "bottomLeft": [0, 0], "topRight": [2, 2], "color": [255, 0, 0, 255]},
    {"blockId": "1", "bottomLeft": [2, 0], "topRight": [4, 2], "color": "#000000"}
  ]
}`
	cfg, err := DecodeInitial(strings.NewReader(text))
	if err != nil {
		t.Fatal(err)
	}
	m, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Raster().At(0, 1); got != red {
		t.Errorf("left pixel = %v", got)
	}
	if got := m.Raster().At(3, 0); got != black {
		t.Errorf("right pixel = %v", got)
	}
	c, err := m.Step(isl.Merge{A: "0", B: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if c != 2 {
		t.Errorf("merge cost = %v, want 2", c)
	}
	if _, err := m.Partition().Get("2"); err != nil {
		t.Error(err)
	}
	if !canvas.Render(4, 2, m.Paints()).Equal(m.Raster()) {
		t.Error("rendering the paint log does not match the raster")
	}
	if _, err := m.Step(isl.Color{Block: "2", Color: black}); err != nil {
		t.Fatal(err)
	}
	if n := len(m.Paints()); n != 3 {
		t.Errorf("paint log has %d entries, want 3", n)
	}
	if !canvas.Render(4, 2, m.Paints()).Equal(m.Raster()) {
		t.Error("rendering the paint log after color does not match the raster")
	}
}
