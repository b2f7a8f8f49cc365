package audio

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
)

// Clip is a fully decoded sound held in memory at the output sample rate.
type Clip struct {
	buf *beep.Buffer
}

// Len returns the clip length in samples.
func (c Clip) Len() int {
	if c.buf == nil {
		return 0
	}
	return c.buf.Len()
}

// Streamer returns a new streamer over the whole clip. Each call is independent, so
// the same clip can play on several channels at once.
func (c Clip) Streamer() beep.StreamSeeker {
	return c.buf.Streamer(0, c.buf.Len())
}

// Loop returns a streamer repeating the clip forever.
func (c Clip) Loop() beep.Streamer {
	return beep.Loop(-1, c.Streamer())
}

// WavDecoder decodes WAV asset bytes into a Clip. It satisfies assets.Decoder[Clip].
type WavDecoder struct {
	// Rate is the target sample rate; zero means SampleRate.
	Rate beep.SampleRate
}

// Decode reads the whole file, resampling it to the target rate.
//
// Parameters:
//   - data: the WAV file bytes
//
// Returns:
//   - Clip: the decoded clip
//   - error: an error if data is not a supported WAV stream
func (d WavDecoder) Decode(data []byte) (Clip, error) {
	rate := d.Rate
	if rate == 0 {
		rate = SampleRate
	}
	st, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return Clip{}, fmt.Errorf("audio: decode wav: %w", err)
	}
	defer st.Close()

	var src beep.Streamer = st
	if format.SampleRate != rate {
		src = beep.Resample(4, format.SampleRate, rate, st)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(src)
	if err := st.Err(); err != nil {
		return Clip{}, fmt.Errorf("audio: decode wav: %w", err)
	}
	return Clip{buf: buf}, nil
}

// Tone returns a sine beep of freq hertz lasting d, for interface feedback that needs
// no sound asset.
//
// Parameters:
//   - rate: the output sample rate
//   - freq: the pitch in hertz
//   - d: the duration
//
// Returns:
//   - beep.Streamer: the finite tone
//   - error: an error if freq is not below the Nyquist limit of rate
func Tone(rate beep.SampleRate, freq float64, d time.Duration) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, freq)
	if err != nil {
		return nil, fmt.Errorf("audio: tone %.0fHz: %w", freq, err)
	}
	return beep.Take(rate.N(d), sine), nil
}
