package search

// EventLevel classifies diagnostic events emitted by the core.
type EventLevel string

const (
	EventInfo EventLevel = "info"
	EventWarn EventLevel = "warn"
)

// Event is a diagnostic emitted by an optimizer: value clamping,
// strategy fallbacks, overrides taking effect, convergence. The core
// never prints; presentation belongs to the caller.
type Event struct {
	Level     EventLevel
	Optimizer string
	BatchNo   int
	Message   string
}

// EventFunc receives diagnostic events. A nil EventFunc drops them.
type EventFunc func(Event)

func (f EventFunc) emit(level EventLevel, optimizer string, batchNo int, msg string) {
	if f == nil {
		return
	}
	f(Event{Level: level, Optimizer: optimizer, BatchNo: batchNo, Message: msg})
}
