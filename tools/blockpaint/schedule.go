package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/depp/blockpaint/lib/canvas"
	"github.com/depp/blockpaint/lib/interp"
	"github.com/depp/blockpaint/lib/isl"
	"github.com/depp/blockpaint/lib/schedule"
)

// A rectsFile is a list of colored rectangles on a canvas.
type rectsFile struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Rects  []canvas.Paint `json:"rects"`
}

func readRects(filename string) (*rectsFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var rf rectsFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, &fileError{filename, err}
	}
	if rf.Width <= 0 || rf.Height <= 0 {
		return nil, &fileError{filename, errors.New("missing canvas size")}
	}
	return &rf, nil
}

func writeOutput(filename string, write func(f *os.File) error) error {
	if filename == "" {
		return write(os.Stdout)
	}
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(fp); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

var (
	flagRule     = schedule.Containment
	flagContinue string
)

var cmdSchedule = cobra.Command{
	Use:   "schedule <rects.json>",
	Short: "Generate a program that paints a set of rectangles.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rf, err := readRects(args[0])
		if err != nil {
			return err
		}
		mc, err := machineConfig(rf.Width, rf.Height)
		if err != nil {
			return err
		}
		if mc.Width != rf.Width || mc.Height != rf.Height {
			return &fileError{flagInitial, fmt.Errorf("canvas is %dx%d, rectangles are for %dx%d",
				mc.Width, mc.Height, rf.Width, rf.Height)}
		}
		start := schedule.Fresh()
		switch {
		case flagContinue != "":
			prev, err := readProgram(flagContinue)
			if err != nil {
				return err
			}
			start, err = schedule.StartAfter(mc, prev)
			if err != nil {
				return &fileError{flagContinue, err}
			}
		case len(mc.Initial) != 0:
			return errors.New("-initial requires -continue with a program that merges the canvas into one block")
		}
		prog, err := schedule.Generate(cmd.Context(), rf.Rects, rf.Width, rf.Height, start, &schedule.Options{
			Rule:    flagRule,
			Workers: cfg.Workers,
			Costs:   cfg.Costs(),
		})
		if err != nil {
			return &fileError{args[0], err}
		}
		res, err := interp.Run(mc, prog)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"rects":        len(rf.Rects),
			"instructions": len(prog),
			"cost":         res.Cost,
		}).Info("generated program")
		return writeOutput(flagOutput, func(f *os.File) error {
			return isl.Write(f, prog)
		})
	},
}

var cmdRects = cobra.Command{
	Use:   "rects <program.isl>",
	Short: "List the rectangles a program colors.",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		mc, err := machineConfig(0, 0)
		if err != nil {
			return err
		}
		prog, err := readProgram(args[0])
		if err != nil {
			return err
		}
		paints, err := schedule.RectsFromProgram(mc, prog)
		if err != nil {
			return &fileError{args[0], err}
		}
		data, err := json.MarshalIndent(&rectsFile{Width: mc.Width, Height: mc.Height, Rects: paints}, "", "  ")
		if err != nil {
			return err
		}
		data = append(data, '\n')
		return writeOutput(flagOutput, func(f *os.File) error {
			_, err := f.Write(data)
			return err
		})
	},
}

func init() {
	fs := cmdSchedule.Flags()
	fs.Var(&flagRule, "rule", "dependency rule: containment or separating-axis")
	fs.StringVar(&flagContinue, "continue", "", "append to this program instead of starting fresh")
	fs.StringVarP(&flagOutput, "output", "o", "", "output program file (default stdout)")
	fs.StringVar(&flagInitial, "initial", "", "initial canvas configuration (JSON), used with -continue")

	fs = cmdRects.Flags()
	fs.StringVar(&flagSize, "size", "", "canvas size, WxH")
	fs.StringVar(&flagInitial, "initial", "", "initial canvas configuration (JSON)")
	fs.StringVarP(&flagOutput, "output", "o", "", "output JSON file (default stdout)")
}
