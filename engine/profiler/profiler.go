package profiler

import (
	"log"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-uniforms/engine/uniform"
)

// Profiler tracks frame rate, memory statistics and uniform cache activity for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	uniformStats uniform.Stats
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
}

// SetUpdateInterval changes how often Tick logs.
//
// Parameters:
//   - interval: the logging interval
func (p *Profiler) SetUpdateInterval(interval time.Duration) {
	p.updateInterval = interval
}

// Record adds one frame's uniform cache counters to the current interval.
//
// Parameters:
//   - stats: the counters of a single frame
func (p *Profiler) Record(stats uniform.Stats) {
	p.uniformStats = p.uniformStats.Add(stats)
}

// UniformStats returns the uniform cache counters accumulated since the last log line.
//
// Returns:
//   - uniform.Stats: the accumulated counters
func (p *Profiler) UniformStats() uniform.Stats {
	return p.uniformStats
}

// busiestEntry returns the derived entry with the most recomputations in stats.
func busiestEntry(stats uniform.Stats) (uniform.Entry, uint64) {
	var busiest uniform.Entry
	var most uint64
	for e := range uniform.EntryCount {
		if n := stats.RecomputeCount(e); n > most {
			busiest, most = e, n
		}
	}
	return busiest, most
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

		frames := float64(p.frameCount)
		busiest, most := busiestEntry(p.uniformStats)
		log.Printf("[Profiler] Uniforms: %.1f recomputes/frame | %.1f invalidations/frame | busiest: %s (%d)",
			float64(p.uniformStats.TotalRecomputes())/frames,
			float64(p.uniformStats.TotalInvalidations())/frames,
			busiest, most)

		p.frameCount = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		p.uniformStats = uniform.Stats{}
		return true
	}

	return false
}
