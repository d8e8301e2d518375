package chart

import "time"

// Setting keys read by the engine.
const (
	KeyTimeWindow     = "timeWindow"
	KeyUpdatingPeriod = "updatingPeriod"
)

// Settings is the persisted key-value store the engine reads its window and
// update period from.
type Settings interface {
	Get(key string) string
	Set(key, value string) error
	// Subscribe registers fn for changes of key and returns a token for
	// Unsubscribe.
	Subscribe(key string, fn func(value string)) string
	Unsubscribe(token string)
}

// Timer is a pending scheduled call.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn after d. Implementations must invoke fn on the same
// event loop that drives the engine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}
