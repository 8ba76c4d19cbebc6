package schedule

import (
	"fmt"

	"github.com/depp/blockpaint/lib/canvas"
	"github.com/depp/blockpaint/lib/interp"
	"github.com/depp/blockpaint/lib/isl"
)

// RectsFromProgram runs a program and returns the rectangle and color of
// every color instruction, in execution order. Initial blocks are not
// included. For a program produced by Generate, this recovers the input
// rectangles.
func RectsFromProgram(cfg *interp.Config, prog isl.Program) ([]canvas.Paint, error) {
	r, err := interp.Run(cfg, prog)
	if err != nil {
		return nil, err
	}
	return r.Paints[len(cfg.Initial):], nil
}

// StartAfter returns the start state for continuing an existing program. The
// program must leave a single block covering the canvas.
func StartAfter(cfg *interp.Config, prog isl.Program) (Start, error) {
	m, err := interp.New(cfg)
	if err != nil {
		return Start{}, err
	}
	if err := m.Exec(prog); err != nil {
		return Start{}, err
	}
	p := m.Partition()
	blocks := p.Blocks()
	if len(blocks) != 1 {
		return Start{}, fmt.Errorf("program leaves %d blocks, expected 1", len(blocks))
	}
	return Start{
		Program: prog,
		Whole:   blocks[0].ID,
		LastID:  p.LastID(),
	}, nil
}
