package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/jsphweid/staffdex/constants"
	"github.com/jsphweid/staffdex/live"
	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/stave"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func init() {
	rootCmd.AddCommand(liveCmd)
}

var liveCmd = &cobra.Command{
	Use:   "live [port]",
	Short: "Prints the notes held on a MIDI input",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port := 0
		if len(args) == 1 {
			p, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrapf(err, "bad port %q", args[0])
			}
			port = p
		}
		defer midi.CloseDriver()

		stream := live.NewStream(constants.GetLiveDebounce(), func(sounding []model.Note) {
			fmt.Fprintln(cmd.OutOrStdout(), heldNames(sounding))
		})
		stop, err := listen(stream, port)
		if err != nil {
			return err
		}
		defer stop()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt
		return nil
	},
}

func listen(stream *live.Stream, port int) (func(), error) {
	in, err := midi.InPort(port)
	if err != nil {
		return nil, errors.Wrapf(err, "can't find midi input %d", port)
	}
	return stream.Listen(in)
}

func heldNames(notes []model.Note) string {
	if len(notes) == 0 {
		return "-"
	}
	var names []string
	for _, n := range notes {
		names = append(names, stave.NoteName(n.Pitch, model.KeySignature{Prev: model.NoRef}))
	}
	return strings.Join(names, " ")
}
