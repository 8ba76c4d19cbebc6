package schedule

import (
	"container/heap"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsatisfiableOrder indicates a dependency cycle between rectangles.
var ErrUnsatisfiableOrder = errors.New("no paint order satisfies the dependencies")

// A CycleError lists the rectangles that could not be scheduled because they
// are part of, or depend on, a dependency cycle.
type CycleError struct {
	Unscheduled []int
}

func (e *CycleError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %d rectangles unscheduled:", ErrUnsatisfiableOrder, len(e.Unscheduled))
	for i, n := range e.Unscheduled {
		if i == 16 {
			b.WriteString(" ...")
			break
		}
		fmt.Fprintf(&b, " %d", n)
	}
	return b.String()
}

// Is makes errors.Is match ErrUnsatisfiableOrder.
func (e *CycleError) Is(target error) bool {
	return target == ErrUnsatisfiableOrder
}

// indexHeap is a min-heap of node indexes.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Order returns the nodes of the graph in topological order. Among nodes that
// are ready at the same time, the lowest index comes first. Returns a
// *CycleError if the graph has a cycle.
func Order(g *Graph) ([]int, error) {
	n := g.Len()
	in := make([]int, n)
	copy(in, g.in)
	var ready indexHeap
	for i, c := range in {
		if c == 0 {
			ready = append(ready, i)
		}
	}
	heap.Init(&ready)
	order := make([]int, 0, n)
	for ready.Len() > 0 {
		v := heap.Pop(&ready).(int)
		order = append(order, v)
		for _, j := range g.out[v] {
			in[j]--
			if in[j] == 0 {
				heap.Push(&ready, j)
			}
		}
	}
	if len(order) < n {
		var rest []int
		for i, c := range in {
			if c > 0 {
				rest = append(rest, i)
			}
		}
		return nil, &CycleError{Unscheduled: rest}
	}
	return order, nil
}
