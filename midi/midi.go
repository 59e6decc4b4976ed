package midi

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/staffdex/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2/smf"
)

// File is a decoded Standard MIDI File: every track merged into one event
// sequence ordered by absolute tick. The original bytes are kept so they can
// be handed back unchanged for persistence.
type File struct {
	TicksPerQuarter int
	TrackCount      int
	Events          []model.RawEvent
	LastTick        int64

	smf *smf.SMF
	raw []byte
}

func ReadMidiFile(filepath string) (*File, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "reading midi file")
	}
	return Parse(dat)
}

func Parse(dat []byte) (f *File, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			f = nil
			e = errors.Errorf("parsing midi file: %v", r)
		}
	}()

	if err := checkChunks(dat); err != nil {
		return nil, err
	}

	s, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, "parsing midi file")
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, errors.Errorf("unsupported time format %v", s.TimeFormat)
	}

	res := &File{
		TicksPerQuarter: int(ticks),
		TrackCount:      len(s.Tracks),
		smf:             s,
		raw:             append([]byte(nil), dat...),
	}

	for trackNum, events := range s.Tracks {
		var absTicks int64
		for _, event := range events {
			absTicks += int64(event.Delta)
			if absTicks > res.LastTick {
				res.LastTick = absTicks
			}
			if event.Message.Is(smf.MetaEndOfTrackMsg) {
				continue
			}
			res.Events = append(res.Events, model.RawEvent{
				Tick:    absTicks,
				Track:   trackNum,
				Payload: decode(event.Message),
			})
		}
	}

	// tracks were appended in order, so a stable sort leaves ties ordered by
	// track and then by position within the track
	sort.SliceStable(res.Events, func(i, j int) bool {
		return res.Events[i].Tick < res.Events[j].Tick
	})
	for i := range res.Events {
		res.Events[i].Seq = i
	}

	return res, nil
}

// Bytes returns a copy of the buffer the file was parsed from.
func (f *File) Bytes() []byte {
	return append([]byte(nil), f.raw...)
}

func (f *File) SMF() *smf.SMF {
	return f.smf
}

func decode(msg smf.Message) model.Payload {
	var channel, key, velocity uint8
	switch {
	case msg.GetNoteStart(&channel, &key, &velocity):
		return model.NoteEvent{Channel: channel, Key: key, Velocity: velocity, On: true}
	case msg.GetNoteEnd(&channel, &key):
		return model.NoteEvent{Channel: channel, Key: key}
	case msg.Is(smf.MetaTempoMsg):
		data := metaData(msg)
		if len(data) < 3 {
			logrus.Warnf("skipping tempo event with %d data bytes", len(data))
			break
		}
		mpq := uint32(data[0])<<16 | uint32(data[1])<<8 | uint32(data[2])
		return model.TempoEvent{MicrosPerQuarter: mpq}
	case msg.Is(smf.MetaTimeSigMsg):
		data := metaData(msg)
		if len(data) < 2 {
			logrus.Warnf("skipping time signature with %d data bytes", len(data))
			break
		}
		if data[1] > 30 {
			logrus.Warnf("skipping time signature with denominator 2^%d", data[1])
			break
		}
		return model.TimeSigEvent{Numerator: int(data[0]), Denominator: 1 << data[1]}
	case msg.Is(smf.MetaKeySigMsg):
		data := metaData(msg)
		if len(data) < 2 {
			logrus.Warnf("skipping key signature with %d data bytes", len(data))
			break
		}
		return model.KeySigEvent{Accidentals: int(int8(data[0])), Minor: data[1] == 1}
	}
	return model.OtherEvent{Data: msg}
}

// metaData strips the FF, type and length prefix from a meta message.
func metaData(msg []byte) []byte {
	if len(msg) < 3 || msg[0] != 0xff {
		return nil
	}
	length, n := readVariableInt(msg[2:])
	if n == 0 {
		return nil
	}
	start := 2 + n
	end := start + int(length)
	if end > len(msg) {
		return nil
	}
	return msg[start:end]
}

// readVariableInt decodes a MIDI variable-length quantity. The second result
// is the number of bytes consumed, 0 when the quantity is malformed.
func readVariableInt(b []byte) (uint32, int) {
	var res uint32
	for i := 0; i < 4 && i < len(b); i++ {
		res = res<<7 | uint32(b[i]&0x7f)
		if b[i]&0x80 == 0 {
			return res, i + 1
		}
	}
	return 0, 0
}

type chunkHeader struct {
	ChunkType [4]byte
	Length    uint32
}

// checkChunks walks the chunk headers so that truncated buffers are rejected
// before the decoder gets to guess at them.
func checkChunks(dat []byte) error {
	r := bytes.NewReader(dat)
	var header chunkHeader
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return errors.Wrap(err, "reading header chunk")
	}
	if string(header.ChunkType[:]) != "MThd" {
		return errors.Errorf("bad header chunk type %q", string(header.ChunkType[:]))
	}
	if header.Length < 6 || int64(header.Length) > int64(r.Len()) {
		return errors.Errorf("bad header chunk length %d", header.Length)
	}
	var format, trackCount uint16
	binary.Read(r, binary.BigEndian, &format)
	binary.Read(r, binary.BigEndian, &trackCount)
	r.Seek(int64(header.Length)-4, io.SeekCurrent)

	for i := 0; i < int(trackCount); i++ {
		if err := binary.Read(r, binary.BigEndian, &header); err != nil {
			return errors.Wrapf(err, "reading chunk %d of %d", i+1, trackCount)
		}
		if int64(header.Length) > int64(r.Len()) {
			return errors.Errorf("chunk %q %d is truncated: %d bytes declared, %d left",
				string(header.ChunkType[:]), i+1, header.Length, r.Len())
		}
		r.Seek(int64(header.Length), io.SeekCurrent)
	}
	return nil
}
