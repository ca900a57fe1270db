package graph

// Event is a notification raised by a Task to its engine.
type Event int

const (
	// EventReady fires once, when every dependency of a task has completed.
	EventReady Event = iota
	// EventComplete fires once, when a task completes with or without error.
	EventComplete
)

func (e Event) String() string {
	switch e {
	case EventReady:
		return "ready"
	case EventComplete:
		return "complete"
	default:
		return "unknown"
	}
}
