// Package audio plays background music and sound effects through a beep mixer with
// separate volume controls for the two channels.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

// SampleRate is the rate of the output device. Clips are resampled to it on decode.
const SampleRate = beep.SampleRate(44100)

// MaxVolume is the top of the volume percent range.
const MaxVolume = 100

// Sink owns the output device and the two channels. It is safe for concurrent use; the
// logic worker plays and adjusts while the speaker goroutine streams.
type Sink struct {
	log    *zap.Logger
	rate   beep.SampleRate
	device bool

	mu         sync.Mutex
	background *beep.Mixer
	effect     *beep.Mixer
	bgVolume   *effects.Volume
	fxVolume   *effects.Volume
	master     *beep.Mixer
	bgPercent  int
	fxPercent  int
	closed     bool
}

// NewSink opens the default output device and starts streaming silence. When no
// device is available the sink stays silent and every call is still accepted.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Sink: the sink
func NewSink(options ...SinkBuilderOption) *Sink {
	s := &Sink{
		log:        zap.NewNop(),
		rate:       SampleRate,
		device:     true,
		background: &beep.Mixer{},
		effect:     &beep.Mixer{},
		bgPercent:  MaxVolume,
		fxPercent:  MaxVolume,
	}
	for _, opt := range options {
		opt(s)
	}
	s.bgVolume = &effects.Volume{Streamer: s.background, Base: 2}
	s.fxVolume = &effects.Volume{Streamer: s.effect, Base: 2}
	applyPercent(s.bgVolume, s.bgPercent)
	applyPercent(s.fxVolume, s.fxPercent)
	s.master = &beep.Mixer{}
	s.master.Add(s.bgVolume, s.fxVolume)

	if s.device {
		if err := speaker.Init(s.rate, s.rate.N(100*time.Millisecond)); err != nil {
			s.log.Warn("no audio device, sound disabled", zap.Error(err))
			s.device = false
		} else {
			speaker.Play(s.master)
			s.log.Info("audio started", zap.Int("sample_rate", int(s.rate)))
		}
	}
	return s
}

// lock guards mixer state. With a device the speaker goroutine reads the mixers under
// its own lock, so that lock is taken as well.
func (s *Sink) lock() {
	s.mu.Lock()
	if s.device {
		speaker.Lock()
	}
}

func (s *Sink) unlock() {
	if s.device {
		speaker.Unlock()
	}
	s.mu.Unlock()
}

// PlayBackground replaces the background track. Loop the streamer to repeat it.
func (s *Sink) PlayBackground(st beep.Streamer) {
	s.lock()
	defer s.unlock()
	if s.closed {
		return
	}
	s.background.Clear()
	if st != nil {
		s.background.Add(st)
	}
}

// StopBackground silences the background channel.
func (s *Sink) StopBackground() {
	s.PlayBackground(nil)
}

// PlayEffect mixes a one-shot effect over whatever is playing.
func (s *Sink) PlayEffect(st beep.Streamer) {
	if st == nil {
		return
	}
	s.lock()
	defer s.unlock()
	if s.closed {
		return
	}
	s.effect.Add(st)
}

// Beep plays a sine tone on the effect channel.
func (s *Sink) Beep(freq float64, d time.Duration) {
	st, err := Tone(s.rate, freq, d)
	if err != nil {
		s.log.Debug("tone rejected", zap.Error(err))
		return
	}
	s.PlayEffect(st)
}

// SetVolumes sets both channel volumes as percents, clamped to [0, MaxVolume].
// Zero mutes the channel.
//
// Parameters:
//   - background: background music volume
//   - effect: sound effect volume
func (s *Sink) SetVolumes(background, effect int) {
	s.lock()
	defer s.unlock()
	s.bgPercent = clampPercent(background)
	s.fxPercent = clampPercent(effect)
	applyPercent(s.bgVolume, s.bgPercent)
	applyPercent(s.fxVolume, s.fxPercent)
}

// Volumes returns the current channel volumes.
func (s *Sink) Volumes() (background, effect int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bgPercent, s.fxPercent
}

// HasDevice reports whether sound reaches an output device.
func (s *Sink) HasDevice() bool { return s.device }

// SampleRate is the output rate clips should be decoded at.
func (s *Sink) SampleRate() beep.SampleRate { return s.rate }

// BackgroundPlaying reports whether a background track is queued.
func (s *Sink) BackgroundPlaying() bool {
	s.lock()
	defer s.unlock()
	return s.background.Len() > 0
}

// Close stops playback and releases the device. Safe to call more than once.
func (s *Sink) Close() {
	s.lock()
	if s.closed {
		s.unlock()
		return
	}
	s.closed = true
	s.background.Clear()
	s.effect.Clear()
	s.unlock()

	if s.device {
		speaker.Clear()
		speaker.Close()
	}
	s.log.Info("audio stopped")
}

// applyPercent maps a percent onto a base-2 volume: 100 is unity, 50 is half
// amplitude, 0 is silent.
func applyPercent(v *effects.Volume, percent int) {
	if percent <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(float64(percent) / MaxVolume)
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > MaxVolume {
		return MaxVolume
	}
	return p
}
