package graph

// TransitionEventKind identifies a state-machine transition lifecycle event.
type TransitionEventKind uint8

const (
	TransitionStarted TransitionEventKind = iota
	TransitionReversed
	TransitionCompleted
)

func (k TransitionEventKind) String() string {
	switch k {
	case TransitionStarted:
		return "started"
	case TransitionReversed:
		return "reversed"
	case TransitionCompleted:
		return "completed"
	}
	return "unknown"
}

// TransitionEvent describes one transition lifecycle event.
type TransitionEvent struct {
	Kind    TransitionEventKind
	Machine string
	From    string
	To      string
	// Reversed is set on completion when the machine returned to the source state.
	Reversed bool
}

// Observer receives state-machine events during evaluation. Implementations must be cheap
// and safe for concurrent use when graphs of several entities are evaluated in parallel.
type Observer interface {
	OnTransition(e TransitionEvent)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) OnTransition(TransitionEvent) {}

// ObserverFunc adapts a function into an Observer.
type ObserverFunc func(TransitionEvent)

func (f ObserverFunc) OnTransition(e TransitionEvent) { f(e) }

// MultiObserver fans every event out to each non-nil observer in order.
func MultiObserver(observers ...Observer) Observer {
	out := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) OnTransition(e TransitionEvent) {
	for _, o := range m {
		o.OnTransition(e)
	}
}
