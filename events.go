package statelogic

import (
	"slices"
)

// Event is a change notification fired by a Signal or an Expression.
//
// EventStructureChanged and EventValueChanged are distinct channels: the first
// reports a static configuration change (operator, operands, name, size), the
// second a change of the current value only.
type Event int

const (
	EventValueChanged Event = iota
	EventResized
	EventStructureChanged
	EventRenamed
	EventDeleted
)

func (e Event) String() string {
	switch e {
	case EventValueChanged:
		return "value changed"
	case EventResized:
		return "resized"
	case EventStructureChanged:
		return "structure changed"
	case EventRenamed:
		return "renamed"
	case EventDeleted:
		return "deleted"
	}
	return "unknown"
}

// Value is the read side shared by signals and expressions.
type Value interface {
	Name() string
	Size() uint
	CurrentValue() BitVector
	Subscribe(fn Listener) *Subscription
}

// A Listener is called synchronously for every event fired by src. Listeners
// must not mutate src before returning.
type Listener func(src Value, ev Event)

// Subscription is returned by Subscribe.
type Subscription struct {
	entry *listenerEntry
	list  *listeners
}

// Cancel stops further notifications. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	if s == nil || s.list == nil {
		return
	}
	s.list.remove(s.entry)
	s.list = nil
}

type listenerEntry struct {
	fn   Listener
	dead bool
}

type listeners struct {
	entries []*listenerEntry
}

func (l *listeners) add(fn Listener) *Subscription {
	e := &listenerEntry{fn: fn}
	l.entries = append(l.entries, e)
	return &Subscription{entry: e, list: l}
}

func (l *listeners) remove(e *listenerEntry) {
	e.dead = true
	l.entries = slices.DeleteFunc(l.entries, func(x *listenerEntry) bool { return x == e })
}

func (l *listeners) len() int {
	return len(l.entries)
}

// emit dispatches evs in order. Listeners cancelled while dispatching are
// skipped, listeners added while dispatching only see later emits.
func (l *listeners) emit(src Value, evs ...Event) {
	if len(l.entries) == 0 {
		return
	}
	snapshot := slices.Clone(l.entries)
	for _, ev := range evs {
		for _, e := range snapshot {
			if !e.dead {
				e.fn(src, ev)
			}
		}
	}
}
