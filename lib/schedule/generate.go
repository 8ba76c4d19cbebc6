package schedule

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/depp/blockpaint/lib/block"
	"github.com/depp/blockpaint/lib/canvas"
	"github.com/depp/blockpaint/lib/interp"
	"github.com/depp/blockpaint/lib/isl"
)

// ErrInvalidRect indicates a rectangle that is empty or outside the canvas.
var ErrInvalidRect = errors.New("invalid rectangle")

// A Start is the state a generated program continues from.
type Start struct {
	// Program is emitted before the generated instructions.
	Program isl.Program
	// Whole is the ID of the block covering the entire canvas after Program
	// runs.
	Whole block.ID
	// LastID is the last ID minted by a merge in Program, or the number of
	// initial blocks minus one.
	LastID int
}

// Fresh returns the start state for a fresh canvas.
func Fresh() Start {
	return Start{Whole: block.Root}
}

// Options control program generation.
type Options struct {
	Rule    Rule
	Workers int
	// Costs is used to choose the cheaper merge order. The zero value means
	// interp.DefaultCosts.
	Costs interp.CostTable
}

// Generate returns a program that paints each rectangle, in an order that
// satisfies the dependencies between them. Each rectangle is carved out of
// the whole canvas, colored, and merged back, so the program always ends with
// a single block covering the canvas.
func Generate(ctx context.Context, paints []canvas.Paint, width, height int, start Start, opts *Options) (isl.Program, error) {
	if opts == nil {
		opts = &Options{}
	}
	bounds := canvas.R(0, 0, width, height)
	rects := make([]canvas.Rect, len(paints))
	for i, p := range paints {
		if p.Rect.Empty() || !bounds.Contains(p.Rect) {
			return nil, fmt.Errorf("%w: rectangle %d is %v, canvas is %v", ErrInvalidRect, i, p.Rect, bounds)
		}
		rects[i] = p.Rect
	}
	g, err := BuildGraph(ctx, rects, opts.Rule, opts.Workers)
	if err != nil {
		return nil, err
	}
	order, err := Order(g)
	if err != nil {
		return nil, err
	}
	e := emitter{
		bounds: bounds,
		costs:  opts.Costs,
		whole:  start.Whole,
		lastID: start.LastID,
	}
	if e.costs == (interp.CostTable{}) {
		e.costs = interp.DefaultCosts
	}
	e.prog = append(e.prog, start.Program...)
	for _, i := range order {
		e.paint(paints[i])
	}
	return e.prog, nil
}

// An emitter writes the instructions for painting rectangles one at a time,
// tracking the ID of the whole-canvas block between them.
type emitter struct {
	bounds canvas.Rect
	costs  interp.CostTable
	prog   isl.Program
	whole  block.ID
	lastID int
}

// A cut records the children produced by cutting a block.
type cut struct {
	children []block.ID
	rects    []canvas.Rect
}

func (e *emitter) emit(ins isl.Instruction) {
	e.prog = append(e.prog, ins)
}

func (e *emitter) mint() block.ID {
	e.lastID++
	return block.ID(strconv.Itoa(e.lastID))
}

// cutAt cuts a block so that one of its children has a corner at pt. Lines
// through pt that lie on the block's edge are skipped.
func (e *emitter) cutAt(id block.ID, r canvas.Rect, pt canvas.Point) *cut {
	inX := r.Min.X < pt.X && pt.X < r.Max.X
	inY := r.Min.Y < pt.Y && pt.Y < r.Max.Y
	c := new(cut)
	switch {
	case inX && inY:
		e.emit(isl.CutPoint{Block: id, Point: pt})
		c.rects = []canvas.Rect{
			canvas.R(r.Min.X, r.Min.Y, pt.X, pt.Y),
			canvas.R(pt.X, r.Min.Y, r.Max.X, pt.Y),
			canvas.R(pt.X, pt.Y, r.Max.X, r.Max.Y),
			canvas.R(r.Min.X, pt.Y, pt.X, r.Max.Y),
		}
	case inX:
		e.emit(isl.CutAxis{Block: id, Axis: block.X, Coord: pt.X})
		c.rects = []canvas.Rect{
			canvas.R(r.Min.X, r.Min.Y, pt.X, r.Max.Y),
			canvas.R(pt.X, r.Min.Y, r.Max.X, r.Max.Y),
		}
	case inY:
		e.emit(isl.CutAxis{Block: id, Axis: block.Y, Coord: pt.Y})
		c.rects = []canvas.Rect{
			canvas.R(r.Min.X, r.Min.Y, r.Max.X, pt.Y),
			canvas.R(r.Min.X, pt.Y, r.Max.X, r.Max.Y),
		}
	default:
		c.children = []block.ID{id}
		c.rects = []canvas.Rect{r}
		return c
	}
	c.children = make([]block.ID, len(c.rects))
	for i := range c.rects {
		c.children[i] = id.Child(i)
	}
	return c
}

// find returns the index of the child containing the pixel at pt.
func (c *cut) find(pt canvas.Point) int {
	for i, r := range c.rects {
		if r.ContainsPoint(pt) {
			return i
		}
	}
	panic("schedule: point not in any child")
}

func (e *emitter) mergeCost(a, b canvas.Rect) float64 {
	return math.Round(e.costs.Merge * e.bounds.Area() / max(a.Area(), b.Area()))
}

// merge emits a merge of two blocks and returns the new block's ID.
func (e *emitter) merge(a, b block.ID) block.ID {
	e.emit(isl.Merge{A: a, B: b})
	return e.mint()
}

// undo merges the children of a cut back into a single block and returns its
// ID. Point cuts are merged as two rows or two columns, whichever is cheaper.
func (e *emitter) undo(c *cut) block.ID {
	switch len(c.children) {
	case 1:
		return c.children[0]
	case 2:
		return e.merge(c.children[0], c.children[1])
	}
	ids, rs := c.children, c.rects
	bottom, _ := rs[0].Union(rs[1])
	top, _ := rs[3].Union(rs[2])
	left, _ := rs[0].Union(rs[3])
	right, _ := rs[1].Union(rs[2])
	rows := e.mergeCost(rs[0], rs[1]) + e.mergeCost(rs[3], rs[2]) + e.mergeCost(bottom, top)
	cols := e.mergeCost(rs[0], rs[3]) + e.mergeCost(rs[1], rs[2]) + e.mergeCost(left, right)
	if rows <= cols {
		b := e.merge(ids[0], ids[1])
		t := e.merge(ids[3], ids[2])
		return e.merge(b, t)
	}
	l := e.merge(ids[0], ids[3])
	r := e.merge(ids[1], ids[2])
	return e.merge(l, r)
}

// paint emits instructions to color exactly the rectangle of p, starting and
// ending with a single block covering the canvas.
func (e *emitter) paint(p canvas.Paint) {
	outer := e.cutAt(e.whole, e.bounds, p.Rect.Min)
	oi := outer.find(p.Rect.Min)
	inner := e.cutAt(outer.children[oi], outer.rects[oi], p.Rect.Max)
	ii := inner.find(canvas.Point{X: p.Rect.Max.X - 1, Y: p.Rect.Max.Y - 1})
	e.emit(isl.Color{Block: inner.children[ii], Color: p.Color})
	outer.children[oi] = e.undo(inner)
	e.whole = e.undo(outer)
}
