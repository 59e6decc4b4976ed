package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/staffdex/index"
	"github.com/jsphweid/staffdex/miditest"
	"github.com/stretchr/testify/assert"
)

func threeMeasures() []byte {
	return miditest.Bytes(480, miditest.Track(5760,
		miditest.NoteOn(0, 0, 60, 100), miditest.NoteOff(1920, 0, 60),
		miditest.NoteOn(1920, 0, 62, 100), miditest.NoteOff(3840, 0, 62),
		miditest.NoteOn(3840, 0, 64, 100), miditest.NoteOff(5760, 0, 64),
	))
}

func TestExcerptMeasures(t *testing.T) {
	x, err := index.Build(threeMeasures())
	assert := assert.New(t)
	assert.NoError(err)

	dat, err := excerpt(x, 2, 0)
	assert.NoError(err)
	cut, err := index.Build(dat)
	assert.NoError(err)
	assert.Equal(2, cut.MeasureCount())
	assert.Equal(2, cut.NoteCount())
	assert.Equal(uint8(62), cut.Notes()[0].Pitch)

	_, err = excerpt(x, 3, 2)
	assert.Error(err)
	_, err = excerpt(x, 4, 0)
	assert.Error(err)
}

func TestExportAndInspectCommands(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.mid")
	copied := filepath.Join(dir, "copy.mid")
	cut := filepath.Join(dir, "cut.mid")
	assert := assert.New(t)
	assert.NoError(os.WriteFile(in, threeMeasures(), 0644))

	rootCmd.SetArgs([]string{"export", in, copied})
	assert.NoError(rootCmd.Execute())
	dat, err := os.ReadFile(copied)
	assert.NoError(err)
	assert.Equal(threeMeasures(), dat)

	rootCmd.SetArgs([]string{"export", "--from", "1", "--to", "1", in, cut})
	assert.NoError(rootCmd.Execute())
	exportFrom, exportTo = 0, 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"inspect", "--notes", cut})
	assert.NoError(rootCmd.Execute())
	inspectNotes = false
	rootCmd.SetOut(nil)

	assert.Contains(out.String(), "notes: 1, measures: 1")
	assert.Contains(out.String(), "measure 1 @0: 4/4 C")
	assert.Contains(out.String(), "C4")
}
