// Package tune renders the soft background loop as a WAV file. It has no
// dependency on the collage code.
package tune

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	SampleRate = 22050

	attack    = 0.5
	noteLen   = 6.0
	chordGap  = 4.0
	loopLen   = 8.0
	floorGain = 0.001
	chordVol  = 0.05
	sparkHz   = 880.0
	sparkVol  = 0.02
	sparkLen  = 2.0
)

// Cmaj7 then Fmaj7.
var chords = [][]float64{
	{261.63, 329.63, 392.00, 493.88},
	{174.61, 220.00, 261.63, 329.63},
}

// Note is a sine partial with a linear attack and exponential decay.
type Note struct {
	Freq, Start, Duration, Volume float64
}

// Melody schedules loops repetitions of the chord loop. Each chord has an
// even chance of a high sparkle note halfway through.
func Melody(loops int, r *rand.Rand) []Note {
	var out []Note
	for l := range loops {
		base := float64(l) * loopLen
		for i, chord := range chords {
			start := base + float64(i)*chordGap
			for _, f := range chord {
				out = append(out, Note{Freq: f, Start: start, Duration: noteLen, Volume: chordVol})
			}
			if r.Float64() > 0.5 {
				out = append(out, Note{Freq: sparkHz, Start: start + 2, Duration: sparkLen, Volume: sparkVol})
			}
		}
	}
	return out
}

// gain is the note envelope at t seconds after its start.
func (n Note) gain(t float64) float64 {
	switch {
	case t < 0 || t >= n.Duration:
		return 0
	case t < attack:
		return n.Volume * t / attack
	}
	// exponential ramp from Volume at the end of the attack to floorGain
	frac := (t - attack) / (n.Duration - attack)
	return n.Volume * math.Pow(floorGain/n.Volume, frac)
}

// Render mixes notes into mono samples in [-1, 1].
func Render(notes []Note, sampleRate int) []float64 {
	var end float64
	for _, n := range notes {
		end = math.Max(end, n.Start+n.Duration)
	}
	out := make([]float64, int(math.Ceil(end*float64(sampleRate))))
	for _, n := range notes {
		first := int(n.Start * float64(sampleRate))
		last := min(len(out), int((n.Start+n.Duration)*float64(sampleRate)))
		for i := first; i < last; i++ {
			t := float64(i)/float64(sampleRate) - n.Start
			out[i] += n.gain(t) * math.Sin(2*math.Pi*n.Freq*t)
		}
	}
	for i, s := range out {
		out[i] = math.Max(-1, math.Min(1, s))
	}
	return out
}

const bitDepth = 16

// EncodeWAV writes 16-bit mono PCM. The encoder seeks back to patch the
// chunk sizes once all samples are written.
func EncodeWAV(w io.WriteSeeker, samples []float64, sampleRate int) error {
	pcm := make([]int, len(samples))
	for i, s := range samples {
		pcm[i] = int(math.Round(s * math.MaxInt16))
	}
	enc := wav.NewEncoder(w, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           pcm,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return enc.Close()
}

// WAV renders loops repetitions of the tune.
func WAV(loops int, r *rand.Rand) ([]byte, error) {
	f, err := os.CreateTemp("", "galentine-tune-*.wav")
	if err != nil {
		return nil, err
	}
	defer os.Remove(f.Name())
	defer f.Close()

	if err := EncodeWAV(f, Render(Melody(loops, r), SampleRate), SampleRate); err != nil {
		return nil, err
	}
	return os.ReadFile(f.Name())
}
