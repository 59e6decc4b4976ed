package sample

import (
	"bytes"
	"sort"

	"github.com/jsphweid/staffdex/util"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

type placed struct {
	tick uint64
	msg  smf.Message
}

type noteKey struct {
	channel uint8
	key     uint8
}

func isSetup(msg smf.Message) bool {
	return msg.Is(smf.MetaTempoMsg) ||
		msg.Is(smf.MetaTimeSigMsg) ||
		msg.Is(smf.MetaKeySigMsg) ||
		msg.Is(midi.ProgramChangeMsg) ||
		msg.Is(midi.ControlChangeMsg)
}

// Create cuts [startTick, endTick) out of mf. Setup events from before the
// range are collapsed onto its first tick, notes starting before it are
// dropped and notes still sounding at endTick are closed there.
func Create(mf *smf.SMF, startTick, endTick uint64) *smf.SMF {
	res := smf.New()
	res.TimeFormat = mf.TimeFormat
	endTick = util.Max(endTick, startTick)
	length := endTick - startTick

	for _, track := range mf.Tracks {
		var kept []placed
		open := make(map[noteKey]bool)
		var absTicks uint64

	TrackEventLoop:
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			msg := evt.Message
			if msg.Is(smf.MetaEndOfTrackMsg) {
				continue
			}
			if absTicks >= endTick {
				break TrackEventLoop
			}

			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				if absTicks >= startTick {
					open[noteKey{ch, key}] = true
					kept = append(kept, placed{absTicks - startTick, msg})
				}
			case msg.GetNoteEnd(&ch, &key):
				if open[noteKey{ch, key}] {
					delete(open, noteKey{ch, key})
					kept = append(kept, placed{absTicks - startTick, msg})
				}
			case absTicks < startTick:
				if isSetup(msg) {
					kept = append(kept, placed{0, msg})
				}
			default:
				kept = append(kept, placed{absTicks - startTick, msg})
			}
		}

		var closing []noteKey
		for k := range open {
			closing = append(closing, k)
		}
		sort.Slice(closing, func(i, j int) bool {
			if closing[i].channel != closing[j].channel {
				return closing[i].channel < closing[j].channel
			}
			return closing[i].key < closing[j].key
		})
		for _, k := range closing {
			kept = append(kept, placed{length, smf.Message(midi.NoteOff(k.channel, k.key))})
		}

		var newTrack smf.Track
		var last uint64
		for _, p := range kept {
			newTrack = append(newTrack, smf.Event{Delta: uint32(p.tick - last), Message: p.msg})
			last = p.tick
		}
		newTrack.Close(uint32(length - last))
		res.Add(newTrack)
	}

	return res
}

func Bytes(mf *smf.SMF, startTick, endTick uint64) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := Create(mf, startTick, endTick).WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "could not write excerpt")
	}
	return buf.Bytes(), nil
}
