package interp

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/depp/blockpaint/lib/block"
	"github.com/depp/blockpaint/lib/canvas"
)

type jsonPoint [2]int

type jsonBlock struct {
	ID         string       `json:"blockId"`
	BottomLeft jsonPoint    `json:"bottomLeft"`
	TopRight   jsonPoint    `json:"topRight"`
	Color      canvas.Color `json:"color"`
}

type jsonInitial struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Blocks []jsonBlock `json:"blocks"`
}

// DecodeInitial reads an initial canvas configuration in JSON form. Block
// colors may be arrays or hex strings. Costs are left as the defaults.
func DecodeInitial(r io.Reader) (*Config, error) {
	var ji jsonInitial
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ji); err != nil {
		return nil, err
	}
	cfg := &Config{
		Width:   ji.Width,
		Height:  ji.Height,
		Initial: make([]block.Initial, len(ji.Blocks)),
	}
	for i, b := range ji.Blocks {
		cfg.Initial[i] = block.Initial{
			ID:    block.ID(b.ID),
			Rect:  canvas.R(b.BottomLeft[0], b.BottomLeft[1], b.TopRight[0], b.TopRight[1]),
			Color: b.Color,
		}
	}
	return cfg, nil
}

// ReadInitial reads an initial canvas configuration from a file.
func ReadInitial(filename string) (*Config, error) {
	fp, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	cfg, err := DecodeInitial(fp)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", filename, err)
	}
	return cfg, nil
}
