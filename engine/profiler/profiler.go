// Package profiler measures frame timing and memory use of a worker loop.
package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// FrameWindow is the number of recent frames averaged into the frame time.
const FrameWindow = 50

// Stats is one reporting interval's snapshot.
type Stats struct {
	FPS          float64
	AvgFrame     time.Duration // mean of the last FrameWindow frame times
	HeapMB       float64
	AllocRateMBs float64
	NumGC        uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
}

// Profiler tracks frame rate and memory statistics and logs them at Debug level once
// per interval. A Profiler belongs to a single goroutine.
type Profiler struct {
	log            *zap.Logger
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	lastFrame      time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	frames [FrameWindow]time.Duration
	next   int
	filled int
}

// NewProfiler creates a Profiler reporting every second.
//
// Parameters:
//   - log: the logger stats are written to; nil discards them
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(log *zap.Logger) *Profiler {
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now()
	return &Profiler{
		log:            log,
		now:            time.Now,
		lastTime:       now,
		lastFrame:      now,
		updateInterval: time.Second,
	}
}

// AverageFrame returns the mean of the recorded frame times, up to FrameWindow frames.
func (p *Profiler) AverageFrame() time.Duration {
	if p.filled == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < p.filled; i++ {
		sum += p.frames[i]
	}
	return sum / time.Duration(p.filled)
}

func (p *Profiler) record(d time.Duration) {
	p.frames[p.next] = d
	p.next = (p.next + 1) % FrameWindow
	if p.filled < FrameWindow {
		p.filled++
	}
}

// Tick should be called once per frame. It logs and returns the stats when the
// interval has elapsed.
//
// Returns:
//   - Stats: the snapshot, valid when the second result is true
//   - bool: true if stats were produced this tick
func (p *Profiler) Tick() (Stats, bool) {
	current := p.now()
	p.record(current.Sub(p.lastFrame))
	p.lastFrame = current
	p.frameCount++

	elapsed := current.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:      float64(p.frameCount) / elapsed.Seconds(),
		AvgFrame: p.AverageFrame(),
		HeapMB:   float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:    float64(p.memStats.Sys) / 1024 / 1024,
		NumGC:    p.memStats.NumGC,
	}
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMBs = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	if s.NumGC > 0 {
		// PauseNs is a ring of the last 256 pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.NumGC-1)%256] / 1000
		start := p.lastGCCount
		if s.NumGC-start > 256 {
			start = s.NumGC - 256
		}
		for i := start; i < s.NumGC; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	p.log.Debug("frame stats",
		zap.Float64("fps", s.FPS),
		zap.Duration("avg_frame", s.AvgFrame),
		zap.Float64("heap_mb", s.HeapMB),
		zap.Float64("alloc_mb_s", s.AllocRateMBs),
		zap.Uint32("gc", s.NumGC),
		zap.Uint64("gc_last_us", s.LastPauseUs),
		zap.Uint64("gc_max_us", s.MaxPauseUs),
		zap.Float64("sys_mb", s.SysMB))

	p.frameCount = 0
	p.lastTime = current
	p.lastGCCount = s.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s, true
}
