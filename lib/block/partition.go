// Package block tracks the set of live blocks on a canvas.
//
// Blocks exactly tile the canvas. Cuts replace one block with two or four
// children, and merges replace two adjacent blocks with their union.
package block

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/depp/blockpaint/lib/canvas"
)

var (
	// ErrUnknownBlock indicates that an ID does not name a live block.
	ErrUnknownBlock = errors.New("unknown block")
	// ErrIncompatibleMerge indicates that two blocks do not form a rectangle.
	ErrIncompatibleMerge = errors.New("blocks cannot be merged")
	// ErrInvalidCut indicates a cut position outside the block.
	ErrInvalidCut = errors.New("cut position outside block")
	// ErrEmptyBlock indicates an operation on a block with no area.
	ErrEmptyBlock = errors.New("block has zero area")
	// ErrBadInitial indicates an initial configuration that does not tile the
	// canvas.
	ErrBadInitial = errors.New("invalid initial blocks")
)

// An ID identifies a block. Cut children append ".N" to the parent ID, and
// merged blocks get a fresh numeric ID.
type ID string

// Root is the ID of the block covering a fresh canvas.
const Root ID = "0"

// Child returns the ID of the given child of this block.
func (id ID) Child(n int) ID {
	return id + ID("."+strconv.Itoa(n))
}

// An Initial is a block present before any instruction runs.
type Initial struct {
	ID    ID
	Rect  canvas.Rect
	Color canvas.Color
}

// A slot is an entry in the partition's arena. Dead slots are on the free
// list.
type slot struct {
	id   ID
	rect canvas.Rect
	live bool
}

// A Partition maps live block IDs to rectangles.
type Partition struct {
	bounds canvas.Rect
	slots  []slot
	free   []int
	index  map[ID]int
	lastID int
}

// New returns a partition of a width × height canvas containing only the root
// block.
func New(width, height int) *Partition {
	p := &Partition{
		bounds: canvas.R(0, 0, width, height),
		index:  make(map[ID]int),
	}
	p.insert(Root, p.bounds)
	return p
}

// NewFromBlocks returns a partition containing the given blocks. The blocks
// must exactly tile the canvas. IDs minted by merges continue after the
// number of initial blocks, so a canvas with N blocks mints N next.
func NewFromBlocks(width, height int, blocks []Initial) (*Partition, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: no blocks", ErrBadInitial)
	}
	p := &Partition{
		bounds: canvas.R(0, 0, width, height),
		index:  make(map[ID]int, len(blocks)),
		lastID: len(blocks) - 1,
	}
	for _, b := range blocks {
		if _, ok := p.index[b.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate block %q", ErrBadInitial, b.ID)
		}
		if b.Rect.Empty() || !p.bounds.Contains(b.Rect) {
			return nil, fmt.Errorf("%w: block %q has rect %v outside canvas %v",
				ErrBadInitial, b.ID, b.Rect, p.bounds)
		}
		p.insert(b.ID, b.Rect)
	}
	if err := p.Check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadInitial, err)
	}
	return p, nil
}

// Bounds returns the canvas rectangle.
func (p *Partition) Bounds() canvas.Rect {
	return p.bounds
}

// LastID returns the most recent numeric ID minted by a merge, or the number
// of initial blocks minus one if no merge has happened.
func (p *Partition) LastID() int {
	return p.lastID
}

// Len returns the number of live blocks.
func (p *Partition) Len() int {
	return len(p.index)
}

// Get returns the rectangle of a live block.
func (p *Partition) Get(id ID) (canvas.Rect, error) {
	i, ok := p.index[id]
	if !ok {
		return canvas.Rect{}, fmt.Errorf("%w: %q", ErrUnknownBlock, id)
	}
	return p.slots[i].rect, nil
}

// A Block is a live block and its rectangle.
type Block struct {
	ID   ID
	Rect canvas.Rect
}

// Blocks returns all live blocks, sorted by ID.
func (p *Partition) Blocks() []Block {
	r := make([]Block, 0, len(p.index))
	for _, s := range p.slots {
		if s.live {
			r = append(r, Block{ID: s.id, Rect: s.rect})
		}
	}
	sort.Slice(r, func(i, j int) bool { return r[i].ID < r[j].ID })
	return r
}

func (p *Partition) insert(id ID, r canvas.Rect) {
	s := slot{id: id, rect: r, live: true}
	var i int
	if n := len(p.free); n > 0 {
		i = p.free[n-1]
		p.free = p.free[:n-1]
		p.slots[i] = s
	} else {
		i = len(p.slots)
		p.slots = append(p.slots, s)
	}
	p.index[id] = i
}

func (p *Partition) remove(id ID) {
	i := p.index[id]
	delete(p.index, id)
	p.slots[i] = slot{}
	p.free = append(p.free, i)
}

// lookup returns the rectangle of a live, non-empty block.
func (p *Partition) lookup(id ID) (canvas.Rect, error) {
	r, err := p.Get(id)
	if err != nil {
		return r, err
	}
	if r.Empty() {
		return r, fmt.Errorf("%w: %q is %v", ErrEmptyBlock, id, r)
	}
	return r, nil
}

// CutPoint splits a block into four children at pt. Children are returned in
// the order bottom-left, bottom-right, top-right, top-left.
func (p *Partition) CutPoint(id ID, pt canvas.Point) ([4]ID, error) {
	var ids [4]ID
	r, err := p.lookup(id)
	if err != nil {
		return ids, err
	}
	if pt.X < r.Min.X || r.Max.X < pt.X || pt.Y < r.Min.Y || r.Max.Y < pt.Y {
		return ids, fmt.Errorf("%w: point %v, block %q is %v", ErrInvalidCut, pt, id, r)
	}
	x0, x1, x2 := r.Min.X, pt.X, r.Max.X
	y0, y1, y2 := r.Min.Y, pt.Y, r.Max.Y
	rects := [4]canvas.Rect{
		canvas.R(x0, y0, x1, y1),
		canvas.R(x1, y0, x2, y1),
		canvas.R(x1, y1, x2, y2),
		canvas.R(x0, y1, x1, y2),
	}
	p.remove(id)
	for i, cr := range rects {
		ids[i] = id.Child(i)
		p.insert(ids[i], cr)
	}
	return ids, nil
}

// CutAxis splits a block into two children along a line at coord. Children
// are returned in low, high order.
func (p *Partition) CutAxis(id ID, axis Axis, coord int) ([2]ID, error) {
	var ids [2]ID
	r, err := p.lookup(id)
	if err != nil {
		return ids, err
	}
	lo, hi := r, r
	switch axis {
	case X:
		if coord < r.Min.X || r.Max.X < coord {
			return ids, fmt.Errorf("%w: x=%d, block %q is %v", ErrInvalidCut, coord, id, r)
		}
		lo.Max.X = coord
		hi.Min.X = coord
	case Y:
		if coord < r.Min.Y || r.Max.Y < coord {
			return ids, fmt.Errorf("%w: y=%d, block %q is %v", ErrInvalidCut, coord, id, r)
		}
		lo.Max.Y = coord
		hi.Min.Y = coord
	default:
		return ids, fmt.Errorf("invalid axis: %v", axis)
	}
	p.remove(id)
	ids[0], ids[1] = id.Child(0), id.Child(1)
	p.insert(ids[0], lo)
	p.insert(ids[1], hi)
	return ids, nil
}

// Merge replaces two adjacent blocks with a single block covering both, and
// returns the new block's ID.
func (p *Partition) Merge(a, b ID) (ID, error) {
	ra, err := p.Get(a)
	if err != nil {
		return "", err
	}
	rb, err := p.Get(b)
	if err != nil {
		return "", err
	}
	if a == b {
		return "", fmt.Errorf("%w: %q with itself", ErrIncompatibleMerge, a)
	}
	u, ok := ra.Union(rb)
	if !ok {
		return "", fmt.Errorf("%w: %q is %v, %q is %v", ErrIncompatibleMerge, a, ra, b, rb)
	}
	p.remove(a)
	p.remove(b)
	p.lastID++
	id := ID(strconv.Itoa(p.lastID))
	p.insert(id, u)
	return id, nil
}

// Check verifies that the live blocks are pairwise disjoint and cover the
// canvas.
func (p *Partition) Check() error {
	blocks := p.Blocks()
	var area float64
	for i, a := range blocks {
		if !p.bounds.Contains(a.Rect) {
			return fmt.Errorf("block %q at %v is outside canvas %v", a.ID, a.Rect, p.bounds)
		}
		area += a.Rect.Area()
		for _, b := range blocks[i+1:] {
			if a.Rect.Intersects(b.Rect) {
				return fmt.Errorf("blocks %q and %q overlap", a.ID, b.ID)
			}
		}
	}
	if area != p.bounds.Area() {
		return fmt.Errorf("blocks cover area %v, canvas area is %v", area, p.bounds.Area())
	}
	return nil
}
