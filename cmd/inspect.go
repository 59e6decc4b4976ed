package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jsphweid/staffdex/index"
	"github.com/jsphweid/staffdex/source"
	"github.com/jsphweid/staffdex/stave"
	"github.com/jsphweid/staffdex/util"
	"github.com/spf13/cobra"
)

var inspectNotes bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectNotes, "notes", false, "list every note with its displayed accidental")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file or s3://bucket/key>",
	Short: "Prints the measures, keys and notes of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, err := load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		inspect(cmd.OutOrStdout(), x, inspectNotes)
		return nil
	},
}

func load(ctx context.Context, uri string) (*index.Index, error) {
	src, err := source.New()
	if err != nil {
		return nil, err
	}
	dat, err := src.Read(ctx, uri)
	if err != nil {
		return nil, err
	}
	return index.Build(dat)
}

func inspect(w io.Writer, x *index.Index, withNotes bool) {
	fmt.Fprintf(w, "tracks: %v, ticks per quarter: %v, notes: %v, measures: %v, length: %v\n",
		x.TrackCount(), x.TicksPerQuarter(), x.NoteCount(), x.MeasureCount(), x.LastTime())

	perTrack := make(map[int]int)
	var durations []int64
	for _, n := range x.Notes() {
		perTrack[n.Track]++
		durations = append(durations, n.DurationTicks)
	}
	for _, track := range util.GetKeys(perTrack) {
		fmt.Fprintf(w, "track %v: %v notes\n", track, perTrack[track])
	}
	fmt.Fprintf(w, "sounding ticks: %v\n", util.Sum(durations))

	for _, bp := range x.Tempo() {
		fmt.Fprintf(w, "tempo @%v: %v us/qn\n", bp.Tick, bp.MicrosPerQuarter)
	}
	for _, k := range x.Keys() {
		fmt.Fprintf(w, "key @%v: %v\n", k.Tick, k.Label())
	}

	notes := x.Notes()
	for _, m := range x.Measures() {
		fmt.Fprintf(w, "measure %v @%v: %v %v (key width %v, time width %v), %v notes\n",
			m.Number, m.StartTick, m.Time, m.Key.Label(), x.KeyWidth(m.Number), x.TimeWidth(m.Number), len(m.Notes))
		if !withNotes {
			continue
		}
		for _, d := range x.DisplayAccidentals(m.Number) {
			n := notes[d.Note]
			fmt.Fprintf(w, "  %5v %-4v track %v @%v +%v display %v\n",
				d.Note, stave.NoteName(n.Pitch, m.Key), n.Track, n.StartTick, n.DurationTicks, d.Display)
		}
	}
}
