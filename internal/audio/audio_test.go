package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
)

// streamAll reads s until it ends or limit samples have been produced.
func streamAll(s beep.Streamer, limit int) (total int, peak float64, ended bool) {
	buf := make([][2]float64, 512)
	for total < limit {
		n, ok := s.Stream(buf)
		for i := range n {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		total += n
		if !ok {
			return total, peak, true
		}
	}
	return total, peak, false
}

func TestWaveSampleRange(t *testing.T) {
	for _, w := range []Wave{WaveSine, WaveSquare, WaveTriangle} {
		for p := 0.0; p < 1; p += 0.01 {
			v := w.sample(p)
			if v < -1 || v > 1 {
				t.Fatalf("wave %d at %.2f = %f, out of range", w, p, v)
			}
		}
	}
}

func TestLineClearSoundLength(t *testing.T) {
	tests := []struct {
		lines int
		notes int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{4, 4},
		{20, 4},
	}

	for _, tc := range tests {
		s := LineClearSound(sampleRate, tc.lines)
		total, peak, ended := streamAll(s, sampleRate.N(5*time.Second))
		if !ended {
			t.Fatalf("lines=%d: effect never ended", tc.lines)
		}
		want := tc.notes * sampleRate.N(90*time.Millisecond)
		if total != want {
			t.Errorf("lines=%d: %d samples, expected %d", tc.lines, total, want)
		}
		if peak == 0 || peak > 1 {
			t.Errorf("lines=%d: peak %f", tc.lines, peak)
		}
	}
}

func TestGameOverSoundEnds(t *testing.T) {
	_, peak, ended := streamAll(GameOverSound(sampleRate), sampleRate.N(5*time.Second))
	if !ended || peak == 0 {
		t.Errorf("ended=%v peak=%f", ended, peak)
	}
}

func TestThemeMusicLoops(t *testing.T) {
	total, peak, ended := streamAll(ThemeMusic(sampleRate), sampleRate.N(30*time.Second))
	if ended {
		t.Fatalf("music stopped after %d samples", total)
	}
	if peak == 0 || peak > 0.2 {
		t.Errorf("music peak %f outside (0, 0.2]", peak)
	}
}

func TestWithVolumeMutes(t *testing.T) {
	_, peak, _ := streamAll(withVolume(LineClearSound(sampleRate, 1), MinVolume), sampleRate.N(time.Second))
	if peak != 0 {
		t.Errorf("muted volume produced peak %f", peak)
	}

	_, loud, _ := streamAll(withVolume(LineClearSound(sampleRate, 1), 0), sampleRate.N(time.Second))
	_, quiet, _ := streamAll(withVolume(LineClearSound(sampleRate, 1), -2), sampleRate.N(time.Second))
	if quiet >= loud {
		t.Errorf("volume -2 (%f) should be quieter than 0 (%f)", quiet, loud)
	}
}

func newTestManager(cfg config.AudioConfig) *SoundManager {
	sm := NewSoundManager(cfg, nil)
	sm.enabled = true
	return sm
}

func TestManagerEffects(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AudioConfig
		event   core.Event
		playing int
	}{
		{"line clear", config.AudioConfig{Effects: true}, core.Event{Kind: core.EventLinesCleared, Count: 2}, 1},
		{"game over", config.AudioConfig{Effects: true}, core.Event{Kind: core.EventGameOver}, 1},
		{"effects off", config.AudioConfig{Effects: false}, core.Event{Kind: core.EventGameOver}, 0},
		{"unknown event", config.AudioConfig{Effects: true}, core.Event{}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sm := newTestManager(tc.cfg)
			sm.HandleEvent(tc.event)
			if got := sm.Playing(); got != tc.playing {
				t.Errorf("Playing() = %d, expected %d", got, tc.playing)
			}
		})
	}
}

func TestManagerMusic(t *testing.T) {
	sm := newTestManager(config.AudioConfig{Music: true})

	sm.StartMusic()
	sm.StartMusic()
	if sm.music == nil {
		t.Fatal("music should be playing")
	}

	sm.SetPaused(true)
	if !sm.music.Paused {
		t.Error("SetPaused(true) should hold the music")
	}
	sm.SetPaused(false)
	if sm.music.Paused {
		t.Error("SetPaused(false) should resume the music")
	}

	// The replaced loop drains on the next mix.
	streamAll(sm.mixer, 512)
	if got := sm.Playing(); got != 1 {
		t.Errorf("restarting should leave one loop, got %d", got)
	}

	sm.StopMusic()
	streamAll(sm.mixer, 512)
	if got := sm.Playing(); got != 0 {
		t.Errorf("stopped music should drain, %d streamers left", got)
	}
}

func TestManagerMusicDisabled(t *testing.T) {
	sm := newTestManager(config.AudioConfig{Music: false})
	sm.StartMusic()
	sm.SetPaused(true)
	if sm.music != nil || sm.Playing() != 0 {
		t.Error("music disabled in config should not play")
	}
}

func TestManagerNotInitialized(t *testing.T) {
	sm := NewSoundManager(config.AudioConfig{Music: true, Effects: true}, nil)
	sm.StartMusic()
	sm.HandleEvent(core.Event{Kind: core.EventGameOver})
	if sm.Playing() != 0 {
		t.Error("a manager without a speaker should not queue sounds")
	}
}

func TestNilManagerIsSilent(t *testing.T) {
	var sm *SoundManager
	sm.StartMusic()
	sm.SetPaused(true)
	sm.HandleEvent(core.Event{Kind: core.EventGameOver})
	sm.StopMusic()
	sm.Cleanup()
	if sm.Playing() != 0 {
		t.Error("nil manager should report nothing playing")
	}
	if err := sm.Initialize(); err != nil {
		t.Errorf("nil Initialize() = %v", err)
	}
}
