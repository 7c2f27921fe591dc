package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
)

// sample returns the wave value at phase p in [0, 1).
func (w Wave) sample(p float64) float64 {
	switch w {
	case WaveSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case WaveTriangle:
		return 4*math.Abs(p-0.5) - 1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}

// Note frequencies in Hz.
const (
	noteA3 = 220.00
	noteC4 = 261.63
	noteE4 = 329.63
	noteA4 = 440.00
	noteB4 = 493.88
	noteC5 = 523.25
	noteD5 = 587.33
	noteE5 = 659.25
	noteG5 = 783.99
	noteA5 = 880.00
	rest   = 0
)

// step is one note of a tune, measured in beats.
type step struct {
	freq  float64
	beats float64
}

// theme is the looped background tune.
var theme = []step{
	{noteE5, 1}, {noteB4, 0.5}, {noteC5, 0.5}, {noteD5, 1}, {noteC5, 0.5}, {noteB4, 0.5},
	{noteA4, 1}, {noteA4, 0.5}, {noteC5, 0.5}, {noteE5, 1}, {noteD5, 0.5}, {noteC5, 0.5},
	{noteB4, 1.5}, {noteC5, 0.5}, {noteD5, 1}, {noteE5, 1},
	{noteC5, 1}, {noteA4, 1}, {noteA4, 1}, {rest, 1},
}

// tune plays steps forever. Each note decays so repeated pitches stay
// distinct.
type tune struct {
	rate    beep.SampleRate
	steps   []step
	beat    int // Samples per beat
	idx     int
	pos     int // Sample position within the current step
	phase   float64
	wave    Wave
	gain    float64
	noteLen int
}

// newTune returns an endless streamer for steps at bpm.
func newTune(rate beep.SampleRate, steps []step, bpm float64, wave Wave, gain float64) *tune {
	t := &tune{
		rate:  rate,
		steps: steps,
		beat:  rate.N(time.Duration(float64(time.Minute) / bpm)),
		wave:  wave,
		gain:  gain,
	}
	t.noteLen = t.stepLen()
	return t
}

func (t *tune) stepLen() int {
	return max(1, int(t.steps[t.idx].beats*float64(t.beat)))
}

func (t *tune) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		s := t.steps[t.idx]
		v := 0.0
		if s.freq > 0 {
			progress := float64(t.pos) / float64(t.noteLen)
			v = t.gain * math.Exp(-3*progress) * t.wave.sample(t.phase)
			t.phase += s.freq / float64(t.rate)
			t.phase -= math.Floor(t.phase)
		}
		samples[i][0] = v
		samples[i][1] = v

		t.pos++
		if t.pos >= t.noteLen {
			t.pos = 0
			t.phase = 0
			t.idx = (t.idx + 1) % len(t.steps)
			t.noteLen = t.stepLen()
		}
	}
	return len(samples), true
}

func (t *tune) Err() error { return nil }

// shaped applies a linear attack and release to a finite streamer.
type shaped struct {
	s       beep.Streamer
	pos     int
	total   int
	attack  int
	release int
}

func newShaped(s beep.Streamer, rate beep.SampleRate, d, attack, release time.Duration) beep.Streamer {
	return &shaped{
		s:       beep.Take(rate.N(d), s),
		total:   rate.N(d),
		attack:  rate.N(attack),
		release: rate.N(release),
	}
}

func (e *shaped) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.s.Stream(samples)
	for i := range n {
		g := 1.0
		if e.attack > 0 && e.pos < e.attack {
			g = float64(e.pos) / float64(e.attack)
		}
		if left := e.total - e.pos; e.release > 0 && left < e.release {
			g = math.Min(g, float64(left)/float64(e.release))
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *shaped) Err() error { return e.s.Err() }

// oscillator is a fixed-frequency wave of any shape.
type oscillator struct {
	rate  beep.SampleRate
	freq  float64
	phase float64
	wave  Wave
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		v := o.wave.sample(o.phase)
		samples[i][0] = v
		samples[i][1] = v
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// tone returns a shaped note of duration d.
func tone(rate beep.SampleRate, freq float64, d time.Duration, w Wave) beep.Streamer {
	var src beep.Streamer
	if w == WaveSine {
		if sine, err := generators.SineTone(rate, freq); err == nil {
			src = sine
		}
	}
	if src == nil {
		src = &oscillator{rate: rate, freq: freq, wave: w}
	}
	return newShaped(src, rate, d, 5*time.Millisecond, d/2)
}

// withVolume scales s by 2^vol. Volumes at or below MinVolume are silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   vol,
		Silent:   vol <= MinVolume,
	}
}

// LineClearSound is a rising arpeggio, one note per cleared line.
func LineClearSound(rate beep.SampleRate, lines int) beep.Streamer {
	notes := []float64{noteC5, noteE5, noteG5, noteA5}
	lines = min(max(lines, 1), len(notes))

	seq := make([]beep.Streamer, 0, lines)
	for _, f := range notes[:lines] {
		seq = append(seq, tone(rate, f, 90*time.Millisecond, WaveSine))
	}
	return beep.Seq(seq...)
}

// GameOverSound is a slow falling phrase.
func GameOverSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		tone(rate, noteE4, 220*time.Millisecond, WaveTriangle),
		tone(rate, noteC4, 220*time.Millisecond, WaveTriangle),
		tone(rate, noteA3, 480*time.Millisecond, WaveTriangle),
	)
}

// ThemeMusic returns the endless background tune.
func ThemeMusic(rate beep.SampleRate) beep.Streamer {
	return newTune(rate, theme, 144, WaveSquare, 0.12)
}
