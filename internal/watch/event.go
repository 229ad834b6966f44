package watch

// Event reports that an entry was created in the watched directory.
type Event struct {
	Path  string
	IsDir bool
}

// Subscription delivers events until closed. Events is closed once the
// subscription ends. Close is safe to call more than once.
type Subscription interface {
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// Source opens subscriptions on a directory.
type Source interface {
	Subscribe(dir string) (Subscription, error)
}
