package funnel

import "time"

// Timer is a pending delayed callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d. Implementations must call f on another
// goroutine, never from inside AfterFunc.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct{}

func (clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc.
var RealScheduler Scheduler = clockScheduler{}
