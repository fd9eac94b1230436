package engine

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Stats tracks frame rate and memory statistics for the viewer and logs
// them at a fixed interval.
type Stats struct {
	log            *logrus.Entry
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	lastDrops      uint64
}

// NewStats creates a stats tracker logging through the given entry once per
// second.
func NewStats(log *logrus.Entry) *Stats {
	return &Stats{
		log:            log,
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Tick records one presented frame and logs a stats line when the update
// interval has elapsed. drops is the cumulative mailbox drop counter.
//
// Returns:
//   - bool: true if stats were logged this tick
func (s *Stats) Tick(drops uint64) bool {
	s.frameCount++
	now := time.Now()
	elapsed := now.Sub(s.lastTime)
	if elapsed < s.updateInterval {
		return false
	}

	fps := float64(s.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&s.memStats)
	allocDelta := s.memStats.TotalAlloc - s.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	s.log.WithFields(logrus.Fields{
		"fps":           fps,
		"heap_mb":       float64(s.memStats.Alloc) / 1024 / 1024,
		"alloc_mb_s":    allocRateMB,
		"gc_count":      s.memStats.NumGC,
		"dropped_total": drops,
		"dropped":       drops - s.lastDrops,
	}).Info("frame stats")

	s.frameCount = 0
	s.lastTime = now
	s.lastTotalAlloc = s.memStats.TotalAlloc
	s.lastDrops = drops
	return true
}
