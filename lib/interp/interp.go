// Package interp executes block painting programs.
package interp

import (
	"errors"
	"fmt"
	"math"

	"github.com/depp/blockpaint/lib/block"
	"github.com/depp/blockpaint/lib/canvas"
	"github.com/depp/blockpaint/lib/isl"
)

// A CostTable holds the base cost of each instruction type. The charged cost
// is the base cost scaled by canvas area over block area, then rounded.
type CostTable struct {
	CutPoint float64
	CutAxis  float64
	Color    float64
	Merge    float64
}

// DefaultCosts is the standard cost table.
var DefaultCosts = CostTable{
	CutPoint: 10,
	CutAxis:  7,
	Color:    5,
	Merge:    1,
}

// A Config describes the canvas a program runs on.
type Config struct {
	Width  int
	Height int
	// Costs is the cost table. The zero value means DefaultCosts.
	Costs CostTable
	// Initial is the set of blocks present before the program runs. If empty,
	// the canvas starts as a single white root block.
	Initial []block.Initial
}

// A Machine executes instructions against one canvas.
type Machine struct {
	costs      CostTable
	canvasArea float64
	part       *block.Partition
	raster     *canvas.Raster
	paints     []canvas.Paint
	cost       float64
}

// New returns a machine with a fresh canvas.
func New(cfg *Config) (*Machine, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size: %dx%d", cfg.Width, cfg.Height)
	}
	m := &Machine{
		costs:      cfg.Costs,
		canvasArea: float64(cfg.Width) * float64(cfg.Height),
		raster:     canvas.NewRaster(cfg.Width, cfg.Height),
	}
	if m.costs == (CostTable{}) {
		m.costs = DefaultCosts
	}
	if len(cfg.Initial) == 0 {
		m.part = block.New(cfg.Width, cfg.Height)
		return m, nil
	}
	p, err := block.NewFromBlocks(cfg.Width, cfg.Height, cfg.Initial)
	if err != nil {
		return nil, err
	}
	m.part = p
	for _, b := range cfg.Initial {
		m.raster.Fill(b.Rect, b.Color)
		m.paints = append(m.paints, canvas.Paint{Rect: b.Rect, Color: b.Color})
	}
	return m, nil
}

// Cost returns the total cost of the instructions executed so far.
func (m *Machine) Cost() float64 {
	return m.cost
}

// Raster returns the current canvas pixels. The raster is owned by the
// machine and changes as instructions execute.
func (m *Machine) Raster() *canvas.Raster {
	return m.raster
}

// Partition returns the live blocks.
func (m *Machine) Partition() *block.Partition {
	return m.part
}

// Paints returns the paint log: each initial block, followed by every color
// instruction executed so far, as the rectangle it covered and its color.
func (m *Machine) Paints() []canvas.Paint {
	return m.paints
}

func (m *Machine) charge(base, area float64) (float64, error) {
	if area <= 0 {
		return 0, block.ErrEmptyBlock
	}
	return math.Round(base * m.canvasArea / area), nil
}

// Step executes one instruction and returns its cost. On error, the machine
// state is unchanged.
func (m *Machine) Step(ins isl.Instruction) (float64, error) {
	var cost float64
	switch ins := ins.(type) {
	case isl.CutPoint:
		r, err := m.part.Get(ins.Block)
		if err != nil {
			return 0, err
		}
		if cost, err = m.charge(m.costs.CutPoint, r.Area()); err != nil {
			return 0, err
		}
		if _, err := m.part.CutPoint(ins.Block, ins.Point); err != nil {
			return 0, err
		}
	case isl.CutAxis:
		r, err := m.part.Get(ins.Block)
		if err != nil {
			return 0, err
		}
		if cost, err = m.charge(m.costs.CutAxis, r.Area()); err != nil {
			return 0, err
		}
		if _, err := m.part.CutAxis(ins.Block, ins.Axis, ins.Coord); err != nil {
			return 0, err
		}
	case isl.Color:
		r, err := m.part.Get(ins.Block)
		if err != nil {
			return 0, err
		}
		if cost, err = m.charge(m.costs.Color, r.Area()); err != nil {
			return 0, err
		}
		m.raster.Fill(r, ins.Color)
		m.paints = append(m.paints, canvas.Paint{Rect: r, Color: ins.Color})
	case isl.Merge:
		ra, err := m.part.Get(ins.A)
		if err != nil {
			return 0, err
		}
		rb, err := m.part.Get(ins.B)
		if err != nil {
			return 0, err
		}
		if cost, err = m.charge(m.costs.Merge, max(ra.Area(), rb.Area())); err != nil {
			return 0, err
		}
		if _, err := m.part.Merge(ins.A, ins.B); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("unknown instruction type %T", ins)
	}
	m.cost += cost
	return cost, nil
}

// An ExecError is an error from a specific instruction.
type ExecError struct {
	Index       int
	Instruction isl.Instruction
	Err         error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("instruction %d (%s): %v", e.Index, e.Instruction, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Exec executes a program, stopping at the first instruction that fails.
func (m *Machine) Exec(prog isl.Program) error {
	for i, ins := range prog {
		if _, err := m.Step(ins); err != nil {
			return &ExecError{Index: i, Instruction: ins, Err: err}
		}
	}
	return nil
}

// A Result is the outcome of running a program.
type Result struct {
	Raster *canvas.Raster
	Cost   float64
	// Paints lists the initial blocks, then the colored rectangles in
	// execution order.
	Paints []canvas.Paint
	// LastID is the last block ID minted by a merge.
	LastID int
}

// Run executes a program on a fresh canvas.
func Run(cfg *Config, prog isl.Program) (*Result, error) {
	m, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := m.Exec(prog); err != nil {
		return nil, err
	}
	return &Result{
		Raster: m.raster,
		Cost:   m.cost,
		Paints: m.paints,
		LastID: m.part.LastID(),
	}, nil
}

// IsFatal returns true if the error came from executing an instruction, as
// opposed to setting up the canvas.
func IsFatal(err error) bool {
	var e *ExecError
	return errors.As(err, &e)
}
