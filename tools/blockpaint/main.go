package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/depp/blockpaint/lib/config"
	"github.com/depp/blockpaint/lib/interp"
)

type fileError struct {
	name string
	err  error
}

func (e *fileError) Error() string {
	return fmt.Sprintf("%q: %v", e.name, e.err)
}

func (e *fileError) Unwrap() error {
	return e.err
}

var (
	cfg *config.Config
	log logrus.FieldLogger = logrus.StandardLogger()
	out                    = message.NewPrinter(language.English)

	flagLogLevel string
	flagWorkers  int
	flagCosts    interp.CostTable
)

var cmdRoot = cobra.Command{
	Use:           "blockpaint",
	Short:         "Blockpaint runs, scores, and generates block painting programs.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Read()
		if err != nil {
			return err
		}
		fs := cmd.Flags()
		if fs.Changed("log-level") {
			c.LogLevel = flagLogLevel
		}
		if fs.Changed("workers") {
			c.Workers = flagWorkers
		}
		for _, f := range []struct {
			name string
			src  float64
			dest *float64
		}{
			{"cost-cut-point", flagCosts.CutPoint, &c.CostCutPoint},
			{"cost-cut-axis", flagCosts.CutAxis, &c.CostCutAxis},
			{"cost-color", flagCosts.Color, &c.CostColor},
			{"cost-merge", flagCosts.Merge, &c.CostMerge},
		} {
			if fs.Changed(f.name) {
				*f.dest = f.src
			}
		}
		if err := c.Validate(); err != nil {
			return err
		}
		lv, _ := c.Level()
		logrus.SetLevel(lv)
		cfg = c
		log = logrus.WithField("run", uuid.NewString())
		log.WithField("command", cmd.Name()).Debug("start")
		return nil
	},
}

func init() {
	fs := cmdRoot.PersistentFlags()
	fs.StringVar(&flagLogLevel, "log-level", "info", "log level")
	fs.IntVar(&flagWorkers, "workers", 0, "number of worker goroutines, 0 for one per CPU")
	fs.Float64Var(&flagCosts.CutPoint, "cost-cut-point", interp.DefaultCosts.CutPoint, "base cost of a point cut")
	fs.Float64Var(&flagCosts.CutAxis, "cost-cut-axis", interp.DefaultCosts.CutAxis, "base cost of a line cut")
	fs.Float64Var(&flagCosts.Color, "cost-color", interp.DefaultCosts.Color, "base cost of a color")
	fs.Float64Var(&flagCosts.Merge, "cost-merge", interp.DefaultCosts.Merge, "base cost of a merge")
}

func main() {
	cmdRoot.AddCommand(&cmdRun, &cmdScore, &cmdSchedule, &cmdRects, &cmdServe)
	if err := cmdRoot.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
