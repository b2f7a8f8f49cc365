package profiler

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestAverageFrameUsesLastWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(nil)
	p.now = clock.now
	p.lastTime, p.lastFrame = clock.t, clock.t
	p.updateInterval = time.Hour

	// 10 slow frames followed by a full window of fast ones
	for i := 0; i < 10; i++ {
		clock.t = clock.t.Add(100 * time.Millisecond)
		p.Tick()
	}
	for i := 0; i < FrameWindow; i++ {
		clock.t = clock.t.Add(10 * time.Millisecond)
		p.Tick()
	}
	if got := p.AverageFrame(); got != 10*time.Millisecond {
		t.Errorf("AverageFrame = %v, want 10ms", got)
	}
}

func TestTickReportsOncePerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(nil)
	p.now = clock.now
	p.lastTime, p.lastFrame = clock.t, clock.t

	reports := 0
	for i := 0; i < 130; i++ {
		clock.t = clock.t.Add(time.Second / 60)
		if s, ok := p.Tick(); ok {
			reports++
			if s.FPS < 59 || s.FPS > 61 {
				t.Errorf("FPS = %.2f, want about 60", s.FPS)
			}
		}
	}
	if reports != 2 {
		t.Errorf("got %d reports over about two seconds, want 2", reports)
	}
}
