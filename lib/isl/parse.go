package isl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/depp/blockpaint/lib/block"
	"github.com/depp/blockpaint/lib/canvas"
)

// ErrUnsupported indicates an instruction that cannot be executed.
var ErrUnsupported = errors.New("unsupported instruction")

// maxCoord bounds coordinates so that area computations stay exact.
const maxCoord = 1 << 20

func parseNum[T constraints.Integer](s string, lo, hi T) (T, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if v < int64(lo) || int64(hi) < v {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", v, lo, hi)
	}
	return T(v), nil
}

// groups splits the arguments of an instruction into bracketed groups, such
// as "[0.1] [3, 4]".
func groups(s string) ([]string, error) {
	var gs []string
	for {
		s = strings.TrimSpace(s)
		if s == "" {
			return gs, nil
		}
		if s[0] != '[' {
			return nil, fmt.Errorf("expected '[', got %q", s)
		}
		end := strings.IndexByte(s, ']')
		if end == -1 {
			return nil, fmt.Errorf("missing ']' in %q", s)
		}
		gs = append(gs, strings.TrimSpace(s[1:end]))
		s = s[end+1:]
	}
}

func parseID(s string) (block.ID, error) {
	if s == "" {
		return "", errors.New("empty block id")
	}
	return block.ID(s), nil
}

func parseCut(gs []string) (Instruction, error) {
	if len(gs) < 2 {
		return nil, fmt.Errorf("cut has %d arguments, expected 2 or 3", len(gs))
	}
	id, err := parseID(gs[0])
	if err != nil {
		return nil, err
	}
	if len(gs) == 3 {
		var axis block.Axis
		if err := axis.Set(gs[1]); err != nil {
			return nil, err
		}
		c, err := parseNum[int](gs[2], 0, maxCoord)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate: %w", err)
		}
		return CutAxis{Block: id, Axis: axis, Coord: c}, nil
	}
	if len(gs) != 2 {
		return nil, fmt.Errorf("cut has %d arguments, expected 2 or 3", len(gs))
	}
	fs := strings.Split(gs[1], ",")
	if len(fs) != 2 {
		return nil, fmt.Errorf("cut point has %d coordinates, expected 2", len(fs))
	}
	x, err := parseNum[int](fs[0], 0, maxCoord)
	if err != nil {
		return nil, fmt.Errorf("invalid x: %w", err)
	}
	y, err := parseNum[int](fs[1], 0, maxCoord)
	if err != nil {
		return nil, fmt.Errorf("invalid y: %w", err)
	}
	return CutPoint{Block: id, Point: canvas.Point{X: x, Y: y}}, nil
}

func parseColor(gs []string) (Instruction, error) {
	if len(gs) != 2 {
		return nil, fmt.Errorf("color has %d arguments, expected 2", len(gs))
	}
	id, err := parseID(gs[0])
	if err != nil {
		return nil, err
	}
	fs := strings.Split(gs[1], ",")
	if len(fs) != 4 {
		return nil, fmt.Errorf("color has %d channels, expected 4", len(fs))
	}
	var c canvas.Color
	for i, f := range fs {
		v, err := parseNum[uint8](f, 0, 255)
		if err != nil {
			return nil, fmt.Errorf("invalid color channel: %w", err)
		}
		c[i] = v
	}
	return Color{Block: id, Color: c}, nil
}

func parseMerge(gs []string) (Instruction, error) {
	if len(gs) != 2 {
		return nil, fmt.Errorf("merge has %d arguments, expected 2", len(gs))
	}
	a, err := parseID(gs[0])
	if err != nil {
		return nil, err
	}
	b, err := parseID(gs[1])
	if err != nil {
		return nil, err
	}
	return Merge{A: a, B: b}, nil
}

// ParseLine parses a single instruction. Returns nil for blank lines and
// comments.
func ParseLine(line string) (Instruction, error) {
	if i := strings.IndexByte(line, '#'); i != -1 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	cmd, rest, _ := strings.Cut(line, " ")
	gs, err := groups(rest)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(cmd) {
	case "cut":
		return parseCut(gs)
	case "color":
		return parseColor(gs)
	case "merge":
		return parseMerge(gs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, cmd)
	}
}

// Parse reads a program. The name is used in error messages.
func Parse(r io.Reader, name string) (Program, error) {
	var p Program
	sc := bufio.NewScanner(r)
	for lineno := 1; sc.Scan(); lineno++ {
		ins, err := ParseLine(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineno, err)
		}
		if ins != nil {
			p = append(p, ins)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseString parses a program from a string.
func ParseString(s string) (Program, error) {
	return Parse(strings.NewReader(s), "<string>")
}

// ReadFile reads a program from a file.
func ReadFile(filename string) (Program, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return Parse(fp, filename)
}

// Write writes a program in text form.
func Write(w io.Writer, p Program) error {
	bw := bufio.NewWriter(w)
	for _, i := range p {
		if _, err := fmt.Fprintln(bw, i); err != nil {
			return err
		}
	}
	return bw.Flush()
}
