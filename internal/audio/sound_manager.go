// Package audio plays blockfall's music and effects through the system
// speaker. Everything is synthesized; there are no sound files.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
)

const sampleRate = beep.SampleRate(44100)

// MinVolume is the log2 gain at or below which output is muted.
const MinVolume = -10.0

// SoundManager owns the speaker mixer. The zero value and a nil pointer
// are both silent no-ops, so callers never need to check whether audio
// is available.
type SoundManager struct {
	mu      sync.Mutex
	cfg     config.AudioConfig
	logger  *log.Logger
	mixer   *beep.Mixer
	music   *beep.Ctrl
	enabled bool // Streamers are accepted
	speaker bool // The mixer is attached to the speaker
}

// NewSoundManager creates a manager for cfg. Call Initialize to open
// the speaker.
func NewSoundManager(cfg config.AudioConfig, logger *log.Logger) *SoundManager {
	if logger == nil {
		logger = log.Default()
	}
	return &SoundManager{
		cfg:    cfg,
		logger: logger,
		mixer:  &beep.Mixer{},
	}
}

// Initialize opens the speaker and starts mixing.
func (sm *SoundManager) Initialize() error {
	if sm == nil {
		return nil
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.speaker {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("audio: cannot open speaker: %w", err)
	}
	speaker.Play(sm.mixer)

	sm.speaker = true
	sm.enabled = true
	sm.logger.Debug("audio started", "music", sm.cfg.Music, "effects", sm.cfg.Effects, "volume", sm.cfg.Volume)
	return nil
}

// Cleanup silences everything and detaches from the speaker.
func (sm *SoundManager) Cleanup() {
	if sm == nil {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.withSpeaker(func() {
		sm.mixer.Clear()
	})
	sm.music = nil
	sm.enabled = false
	if sm.speaker {
		speaker.Clear()
		speaker.Close()
		sm.speaker = false
	}
}

// withSpeaker runs f while the speaker is not reading the mixer.
// Callers hold sm.mu.
func (sm *SoundManager) withSpeaker(f func()) {
	if sm.speaker {
		speaker.Lock()
		defer speaker.Unlock()
	}
	f()
}

// play adds a one-shot effect.
func (sm *SoundManager) play(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.enabled || !sm.cfg.Effects {
		return
	}
	sm.withSpeaker(func() {
		sm.mixer.Add(withVolume(s, sm.cfg.Volume))
	})
}

// StartMusic starts the theme from the top, replacing any playing loop.
func (sm *SoundManager) StartMusic() {
	if sm == nil {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.enabled || !sm.cfg.Music {
		return
	}
	sm.withSpeaker(func() {
		if sm.music != nil {
			sm.music.Streamer = nil
		}
		sm.music = &beep.Ctrl{Streamer: withVolume(ThemeMusic(sampleRate), sm.cfg.Volume-1)}
		sm.mixer.Add(sm.music)
	})
}

// StopMusic ends the theme.
func (sm *SoundManager) StopMusic() {
	if sm == nil {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.music == nil {
		return
	}
	sm.withSpeaker(func() {
		// A Ctrl with no streamer drains out of the mixer.
		sm.music.Streamer = nil
	})
	sm.music = nil
}

// SetPaused holds or resumes the theme.
func (sm *SoundManager) SetPaused(paused bool) {
	if sm == nil {
		return
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.music == nil {
		return
	}
	sm.withSpeaker(func() {
		sm.music.Paused = paused
	})
}

// HandleEvent plays the effect for a game event.
func (sm *SoundManager) HandleEvent(e core.Event) {
	if sm == nil {
		return
	}
	switch e.Kind {
	case core.EventLinesCleared:
		sm.play(LineClearSound(sampleRate, e.Count))
	case core.EventGameOver:
		sm.play(GameOverSound(sampleRate))
	}
}

// Playing returns the number of active streamers.
func (sm *SoundManager) Playing() int {
	if sm == nil {
		return 0
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()

	n := 0
	sm.withSpeaker(func() {
		n = sm.mixer.Len()
	})
	return n
}
