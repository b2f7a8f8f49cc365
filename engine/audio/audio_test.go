package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
)

// constant streams n samples of value v, then ends.
func constant(v float64, n int) beep.Streamer {
	left := n
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if left <= 0 {
			return 0, false
		}
		k := len(samples)
		if k > left {
			k = left
		}
		for i := 0; i < k; i++ {
			samples[i] = [2]float64{v, v}
		}
		left -= k
		return k, true
	})
}

func stream(s *Sink, n int) [][2]float64 {
	out := make([][2]float64, n)
	s.master.Stream(out)
	return out
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestVolumesScaleChannels(t *testing.T) {
	tests := []struct {
		name       string
		bg, fx     int
		wantSample float64
	}{
		{"full", 100, 100, 0.5 + 0.25},
		{"half background", 50, 100, 0.25 + 0.25},
		{"muted effect", 100, 0, 0.5},
		{"both muted", 0, 0, 0},
		{"clamped", 250, -3, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSink(WithoutDevice())
			defer s.Close()
			s.SetVolumes(tt.bg, tt.fx)
			s.PlayBackground(constant(0.5, 64))
			s.PlayEffect(constant(0.25, 64))

			got := stream(s, 8)
			if !near(got[0][0], tt.wantSample) || !near(got[7][1], tt.wantSample) {
				t.Errorf("sample = %v, want %v", got[0][0], tt.wantSample)
			}
		})
	}
}

func TestPlayBackgroundReplacesTrack(t *testing.T) {
	s := NewSink(WithoutDevice())
	defer s.Close()
	s.PlayBackground(constant(0.5, 64))
	s.PlayBackground(constant(0.125, 64))

	if got := stream(s, 4)[0][0]; !near(got, 0.125) {
		t.Errorf("sample = %v, want only the second track", got)
	}

	if !s.BackgroundPlaying() {
		t.Error("background track not reported as playing")
	}

	s.StopBackground()
	if got := stream(s, 4)[0][0]; got != 0 {
		t.Errorf("sample after stop = %v, want silence", got)
	}
	if s.BackgroundPlaying() {
		t.Error("background still reported after stop")
	}
}

func TestEffectsFinishAndMix(t *testing.T) {
	s := NewSink(WithoutDevice())
	defer s.Close()
	s.PlayEffect(constant(0.25, 4))
	s.PlayEffect(constant(0.25, 4))

	got := stream(s, 8)
	if !near(got[0][0], 0.5) {
		t.Errorf("mixed sample = %v, want 0.5", got[0][0])
	}
	if got[6][0] != 0 {
		t.Errorf("sample after effects ended = %v, want silence", got[6][0])
	}
}

func TestCloseIgnoresLaterPlays(t *testing.T) {
	s := NewSink(WithoutDevice(), WithVolumes(40, 60))
	if bg, fx := s.Volumes(); bg != 40 || fx != 60 {
		t.Errorf("Volumes = (%d, %d)", bg, fx)
	}
	s.Close()
	s.Close()
	s.PlayEffect(constant(1, 16))
	if got := stream(s, 4)[0][0]; got != 0 {
		t.Errorf("closed sink played %v", got)
	}
	if s.HasDevice() {
		t.Error("WithoutDevice sink reports a device")
	}
}

func TestWavDecoderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beep.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, constant(0.5, 441), format); err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	clip, err := WavDecoder{}.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if clip.Len() != 441 {
		t.Errorf("Len = %d, want 441", clip.Len())
	}

	samples := make([][2]float64, 4)
	clip.Streamer().Stream(samples)
	if math.Abs(samples[0][0]-0.5) > 1e-3 {
		t.Errorf("sample = %v, want about 0.5", samples[0][0])
	}

	if _, err := (WavDecoder{}).Decode([]byte("not a wav file")); err == nil {
		t.Error("garbage decoded without error")
	}
}

func TestToneLength(t *testing.T) {
	st, err := Tone(SampleRate, 440, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Tone: %v", err)
	}
	buf := make([][2]float64, 1000)
	n, _ := st.Stream(buf)
	if n != 441 {
		t.Errorf("streamed %d samples, want 441", n)
	}
	if _, err := Tone(SampleRate, float64(SampleRate), time.Millisecond); err == nil {
		t.Error("a tone at the sample rate should be rejected")
	}
}
