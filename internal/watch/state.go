package watch

// State is the Controller lifecycle position.
type State int32

const (
	StateIdle State = iota
	StateBootstrapping
	StateWatching
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBootstrapping:
		return "bootstrapping"
	case StateWatching:
		return "watching"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
