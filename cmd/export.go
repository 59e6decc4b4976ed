package cmd

import (
	"github.com/jsphweid/staffdex/index"
	"github.com/jsphweid/staffdex/sample"
	"github.com/jsphweid/staffdex/source"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var exportFrom, exportTo int

func init() {
	exportCmd.Flags().IntVar(&exportFrom, "from", 0, "first measure of an excerpt")
	exportCmd.Flags().IntVar(&exportTo, "to", 0, "last measure of an excerpt")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <in> <out>",
	Short: "Copies a MIDI file, or an excerpt of whole measures, to another location",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := source.New()
		if err != nil {
			return err
		}
		dat, err := src.Read(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		x, err := index.Build(dat)
		if err != nil {
			return err
		}

		out := x.Bytes()
		if exportFrom > 0 || exportTo > 0 {
			if out, err = excerpt(x, exportFrom, exportTo); err != nil {
				return err
			}
		}
		logrus.WithFields(logrus.Fields{"in": args[0], "out": args[1], "bytes": len(out)}).Info("exporting")
		return src.Write(cmd.Context(), args[1], out)
	},
}

// excerpt cuts measures from..to (1-based, inclusive). Zero means the first or
// last measure.
func excerpt(x *index.Index, from, to int) ([]byte, error) {
	if from == 0 {
		from = 1
	}
	if to == 0 {
		to = x.MeasureCount()
	}
	first, ok := x.Measure(from)
	if !ok {
		return nil, errors.Errorf("no measure %d", from)
	}
	last, ok := x.Measure(to)
	if !ok || to < from {
		return nil, errors.Errorf("no measure range %d-%d", from, to)
	}
	return sample.Bytes(x.File().SMF(), uint64(first.StartTick), uint64(last.EndTick()))
}
