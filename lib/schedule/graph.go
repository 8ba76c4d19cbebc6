// Package schedule turns a set of colored rectangles into a program that
// paints them.
//
// Rectangles may overlap while the picture is built up. When they do, the
// order they are painted in decides what is visible, so the scheduler builds
// a dependency graph between rectangles and paints them in topological order.
package schedule

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/depp/blockpaint/lib/canvas"
)

// A Rule decides when one rectangle must be painted before another.
type Rule uint32

const (
	// Containment requires a rectangle to be painted before every rectangle it
	// strictly contains. Rectangles that overlap without one containing the
	// other, or that are identical, depend on each other and cannot be
	// scheduled.
	Containment Rule = iota
	// SeparatingAxis requires rectangle a before b unless a starts at or past
	// b's upper-right corner on either axis.
	SeparatingAxis
)

var ruleNames = [...]string{
	Containment:    "containment",
	SeparatingAxis: "separating-axis",
}

// String implements the Stringer interface.
func (r Rule) String() (s string) {
	i := uint32(r)
	if i < uint32(len(ruleNames)) {
		s = ruleNames[i]
	}
	if s == "" {
		s = strconv.FormatUint(uint64(i), 10)
	}
	return
}

// Set sets the rule to a string value.
func (r *Rule) Set(s string) error {
	for i, n := range ruleNames {
		if strings.EqualFold(s, n) {
			*r = Rule(i)
			return nil
		}
	}
	return fmt.Errorf("unknown rule: %q", s)
}

// Type returns the flag type name.
func (*Rule) Type() string {
	return "rule"
}

// before returns true if a must be painted no later than b.
func (r Rule) before(a, b canvas.Rect) bool {
	switch r {
	case SeparatingAxis:
		return !(a.Min.X >= b.Max.X || a.Min.Y >= b.Max.Y)
	default:
		return a.Intersects(b) && (a.Contains(b) || !b.Contains(a))
	}
}

// A Graph is a dependency graph between rectangles. An edge i→j means that
// rectangle i must be painted before rectangle j.
type Graph struct {
	out [][]int
	in  []int
}

// minParallel is the number of rectangles below which the graph is built on
// the calling goroutine.
const minParallel = 256

// BuildGraph builds the dependency graph for the rectangles. Rows of the
// pairwise comparison are split between up to workers goroutines; zero means
// GOMAXPROCS. Building stops early if the context is canceled.
func BuildGraph(ctx context.Context, rects []canvas.Rect, rule Rule, workers int) (*Graph, error) {
	n := len(rects)
	g := &Graph{
		out: make([][]int, n),
		in:  make([]int, n),
	}
	rows := func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			var out []int
			for j := range rects {
				if i != j && rule.before(rects[i], rects[j]) {
					out = append(out, j)
				}
			}
			g.out[i] = out
		}
		return nil
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n < minParallel || workers == 1 {
		if err := rows(ctx, 0, n); err != nil {
			return nil, err
		}
	} else {
		chunk := (n + workers - 1) / workers
		eg, ectx := errgroup.WithContext(ctx)
		for start := 0; start < n; start += chunk {
			start, end := start, min(start+chunk, n)
			eg.Go(func() error {
				return rows(ectx, start, end)
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}
	for _, out := range g.out {
		for _, j := range out {
			g.in[j]++
		}
	}
	return g, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.in)
}

// NumEdges returns the number of edges.
func (g *Graph) NumEdges() int {
	var n int
	for _, out := range g.out {
		n += len(out)
	}
	return n
}

// HasEdge returns true if i must be painted before j.
func (g *Graph) HasEdge(i, j int) bool {
	for _, k := range g.out[i] {
		if k == j {
			return true
		}
	}
	return false
}
