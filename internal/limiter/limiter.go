package limiter

import (
	"runtime"
	"time"
)

// CPULimiter throttles CPU usage to a maximum percentage during long scans
type CPULimiter struct {
	maxPercent float64
	lastSleep  time.Time
}

// NewCPULimiter creates a new CPU limiter
func NewCPULimiter(maxPercent float64) *CPULimiter {
	return &CPULimiter{
		maxPercent: maxPercent,
		lastSleep:  time.Now(),
	}
}

// Throttle sleeps to keep CPU usage near maxPercent. Called between files;
// for hard guarantees use cgroups or systemd limits instead.
func (l *CPULimiter) Throttle() {
	if l.maxPercent <= 0 || l.maxPercent >= 100 {
		return // No limit or invalid
	}

	// To use maxPercent of the CPU, sleep in proportion to the work window
	sleepPercent := 100.0 - l.maxPercent
	workTime := 10 * time.Millisecond
	sleepTime := time.Duration(float64(workTime) * (sleepPercent / l.maxPercent))

	if time.Since(l.lastSleep) > workTime {
		time.Sleep(sleepTime)
		l.lastSleep = time.Now()
	}

	runtime.Gosched()
}
