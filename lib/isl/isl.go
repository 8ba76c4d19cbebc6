// Package isl defines the instructions of the block painting language and
// their text form.
package isl

import (
	"fmt"
	"strings"

	"github.com/depp/blockpaint/lib/block"
	"github.com/depp/blockpaint/lib/canvas"
)

// An Instruction is one step of a program.
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

// CutPoint splits a block into four at a point.
type CutPoint struct {
	Block block.ID
	Point canvas.Point
}

// CutAxis splits a block into two along a line.
type CutAxis struct {
	Block block.ID
	Axis  block.Axis
	Coord int
}

// Color fills a block with a color.
type Color struct {
	Block block.ID
	Color canvas.Color
}

// Merge joins two adjacent blocks.
type Merge struct {
	A block.ID
	B block.ID
}

func (CutPoint) isInstruction() {}
func (CutAxis) isInstruction()  {}
func (Color) isInstruction()    {}
func (Merge) isInstruction()    {}

func (i CutPoint) String() string {
	return fmt.Sprintf("cut [%s] [%d, %d]", i.Block, i.Point.X, i.Point.Y)
}

func (i CutAxis) String() string {
	return fmt.Sprintf("cut [%s] [%s] [%d]", i.Block, i.Axis, i.Coord)
}

func (i Color) String() string {
	return fmt.Sprintf("color [%s] %s", i.Block, i.Color)
}

func (i Merge) String() string {
	return fmt.Sprintf("merge [%s] [%s]", i.A, i.B)
}

// A Program is a sequence of instructions, executed in order.
type Program []Instruction

// String returns the program text, one instruction per line.
func (p Program) String() string {
	var b strings.Builder
	for _, i := range p {
		b.WriteString(i.String())
		b.WriteByte('\n')
	}
	return b.String()
}
