package audio

import (
	"github.com/gopxl/beep"
	"go.uber.org/zap"
)

// SinkBuilderOption is a functional option for configuring a Sink.
type SinkBuilderOption func(*Sink)

// WithLogger sets the logger; the sink logs under the "audio" name.
//
// Parameters:
//   - log: the parent logger
//
// Returns:
//   - SinkBuilderOption: option function to apply
func WithLogger(log *zap.Logger) SinkBuilderOption {
	return func(s *Sink) {
		if log != nil {
			s.log = log.Named("audio")
		}
	}
}

// WithoutDevice keeps the sink silent without probing for an output device.
func WithoutDevice() SinkBuilderOption {
	return func(s *Sink) {
		s.device = false
	}
}

// WithSampleRate overrides the output sample rate.
func WithSampleRate(rate beep.SampleRate) SinkBuilderOption {
	return func(s *Sink) {
		if rate > 0 {
			s.rate = rate
		}
	}
}

// WithVolumes sets the initial channel volumes as percents.
//
// Parameters:
//   - background: background music volume
//   - effect: sound effect volume
//
// Returns:
//   - SinkBuilderOption: option function to apply
func WithVolumes(background, effect int) SinkBuilderOption {
	return func(s *Sink) {
		s.bgPercent = clampPercent(background)
		s.fxPercent = clampPercent(effect)
	}
}
