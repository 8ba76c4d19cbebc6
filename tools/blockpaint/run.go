package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/depp/blockpaint/lib/canvas"
	"github.com/depp/blockpaint/lib/imageio"
	"github.com/depp/blockpaint/lib/interp"
	"github.com/depp/blockpaint/lib/isl"
	"github.com/depp/blockpaint/lib/score"
)

var (
	flagSize    string
	flagInitial string
	flagOutput  string
	flagScale   int
)

// parseSize parses a canvas size written as WxH.
func parseSize(s string) (width, height int, err error) {
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &width, &height); err != nil {
		return 0, 0, fmt.Errorf("invalid size %q, expected WxH", s)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	return width, height, nil
}

// machineConfig returns the interpreter configuration from the flags. The
// fallback size is used when neither -size nor -initial is given.
func machineConfig(fallbackW, fallbackH int) (*interp.Config, error) {
	var c *interp.Config
	switch {
	case flagInitial != "":
		if flagSize != "" {
			return nil, errors.New("cannot use both -size and -initial")
		}
		ic, err := interp.ReadInitial(flagInitial)
		if err != nil {
			return nil, err
		}
		c = ic
	case flagSize != "":
		w, h, err := parseSize(flagSize)
		if err != nil {
			return nil, err
		}
		c = &interp.Config{Width: w, Height: h}
	case fallbackW > 0:
		c = &interp.Config{Width: fallbackW, Height: fallbackH}
	default:
		return nil, errors.New("canvas size is required, use -size or -initial")
	}
	c.Costs = cfg.Costs()
	return c, nil
}

func readProgram(filename string) (isl.Program, error) {
	if ext := filepath.Ext(filename); !strings.EqualFold(ext, ".isl") && !strings.EqualFold(ext, ".txt") {
		log.Warn("program file does not have .isl extension")
	}
	return isl.ReadFile(filename)
}

func writeCanvas(r *canvas.Raster) error {
	if flagOutput == "" {
		return nil
	}
	r, err := imageio.Scale(r, flagScale)
	if err != nil {
		return err
	}
	return imageio.WriteImage(flagOutput, r)
}

func execProgram(c *interp.Config, filename string) (*interp.Result, error) {
	prog, err := readProgram(filename)
	if err != nil {
		return nil, err
	}
	res, err := interp.Run(c, prog)
	if err != nil {
		return nil, &fileError{filename, err}
	}
	log.WithFields(logrus.Fields{
		"instructions": len(prog),
		"cost":         res.Cost,
	}).Debug("ran program")
	return res, nil
}

var cmdRun = cobra.Command{
	Use:   "run <program.isl>",
	Short: "Run a program and print its cost.",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := machineConfig(0, 0)
		if err != nil {
			return err
		}
		res, err := execProgram(c, args[0])
		if err != nil {
			return err
		}
		if err := writeCanvas(res.Raster); err != nil {
			return err
		}
		out.Printf("cost: %d\n", int64(res.Cost))
		return nil
	},
}

var cmdScore = cobra.Command{
	Use:   "score <program.isl> <target>",
	Short: "Run a program and score it against a target picture.",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		target, err := imageio.ReadTarget(args[1])
		if err != nil {
			return err
		}
		c, err := machineConfig(target.Width, target.Height)
		if err != nil {
			return err
		}
		res, err := execProgram(c, args[0])
		if err != nil {
			return err
		}
		sim, err := score.Similarity(res.Raster, target)
		if err != nil {
			return &fileError{args[1], err}
		}
		if err := writeCanvas(res.Raster); err != nil {
			return err
		}
		out.Printf("cost:       %d\n", int64(res.Cost))
		out.Printf("similarity: %.2f\n", sim)
		out.Printf("total:      %d\n", score.Total(res.Cost, sim))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{&cmdRun, &cmdScore} {
		fs := cmd.Flags()
		fs.StringVar(&flagSize, "size", "", "canvas size, WxH")
		fs.StringVar(&flagInitial, "initial", "", "initial canvas configuration (JSON)")
		fs.StringVarP(&flagOutput, "output", "o", "", "write the painted canvas to this image file")
		fs.IntVar(&flagScale, "scale", 1, "enlarge the written image by this factor")
	}
}
