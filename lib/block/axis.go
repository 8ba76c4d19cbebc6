package block

import (
	"fmt"
	"strconv"
	"strings"
)

// An Axis selects the direction of a line cut.
type Axis uint32

const (
	// InvalidAxis is a missing or unknown axis.
	InvalidAxis Axis = iota
	// X cuts along a vertical line at an X coordinate.
	X
	// Y cuts along a horizontal line at a Y coordinate.
	Y
)

var axisNames = [...]string{
	X: "X",
	Y: "Y",
}

// String implements the Stringer interface.
func (a Axis) String() (s string) {
	i := uint32(a)
	if i < uint32(len(axisNames)) {
		s = axisNames[i]
	}
	if s == "" {
		s = "Axis(" + strconv.FormatUint(uint64(i), 10) + ")"
	}
	return
}

// Set sets the axis to a string value.
func (a *Axis) Set(s string) error {
	for i, n := range axisNames {
		if n != "" && strings.EqualFold(s, n) {
			*a = Axis(i)
			return nil
		}
	}
	return fmt.Errorf("unknown axis: %q", s)
}
