package tune

import (
	"bytes"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-audio/wav"
)

func TestMelody(t *testing.T) {
	t.Parallel()

	notes := Melody(2, rand.New(rand.NewPCG(1, 2)))
	chordNotes := 0
	for _, n := range notes {
		if n.Freq == sparkHz {
			if n.Volume != sparkVol {
				t.Fatalf("sparkle volume %v", n.Volume)
			}
			continue
		}
		chordNotes++
	}
	if chordNotes != 2*2*4 {
		t.Fatalf("chord notes = %d, want 16", chordNotes)
	}
	if len(notes) > 20 {
		t.Fatalf("too many notes: %d", len(notes))
	}
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	n := Note{Freq: 440, Duration: 6, Volume: 0.05}
	if n.gain(0) != 0 || n.gain(-1) != 0 || n.gain(6) != 0 {
		t.Fatal("gain outside the note should be zero")
	}
	if math.Abs(n.gain(0.25)-0.025) > 1e-12 {
		t.Fatalf("mid-attack gain = %v", n.gain(0.25))
	}
	if math.Abs(n.gain(0.5)-0.05) > 1e-12 {
		t.Fatalf("peak gain = %v", n.gain(0.5))
	}
	if g := n.gain(5.9999); math.Abs(g-floorGain) > 1e-4 {
		t.Fatalf("tail gain = %v, want about %v", g, floorGain)
	}
}

func TestWAVHeader(t *testing.T) {
	t.Parallel()

	b, err := WAV(1, rand.New(rand.NewPCG(3, 4)))
	if err != nil {
		t.Fatalf("WAV: %v", err)
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" || string(b[36:40]) != "data" {
		t.Fatalf("bad header %q", b[:44])
	}
	if rate := binary.LittleEndian.Uint32(b[24:28]); rate != SampleRate {
		t.Fatalf("sample rate %d", rate)
	}
	dataLen := binary.LittleEndian.Uint32(b[40:44])
	if int(dataLen) != len(b)-44 {
		t.Fatalf("data length %d, payload %d", dataLen, len(b)-44)
	}
	// one loop: the second chord starts at 4s and rings for 6s
	if want := 10 * SampleRate * 2; int(dataLen) != want {
		t.Fatalf("data length %d, want %d", dataLen, want)
	}
}

func TestWAVDecodes(t *testing.T) {
	t.Parallel()

	b, err := WAV(1, rand.New(rand.NewPCG(5, 6)))
	if err != nil {
		t.Fatalf("WAV: %v", err)
	}
	d := wav.NewDecoder(bytes.NewReader(b))
	if !d.IsValidFile() {
		t.Fatal("decoder rejects the file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.NumChans != 1 || d.BitDepth != 16 || d.SampleRate != SampleRate {
		t.Fatalf("format = %d ch, %d bit, %d Hz", d.NumChans, d.BitDepth, d.SampleRate)
	}
	if len(buf.Data) != 10*SampleRate {
		t.Fatalf("samples = %d, want %d", len(buf.Data), 10*SampleRate)
	}
	peak := 0
	for _, v := range buf.Data {
		peak = max(peak, v, -v)
	}
	if peak == 0 || peak > math.MaxInt16 {
		t.Fatalf("peak sample %d", peak)
	}
}
