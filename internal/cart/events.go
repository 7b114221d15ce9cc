package cart

type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
	OpQty    Op = "qty"
	OpClear  Op = "clear"
)

// Event is published after every successful write of a session's cart.
type Event struct {
	Session string
	Op      Op
	Count   int
}

type Listener func(Event)

// Subscribe registers l for cart change events. The returned func removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = l

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) publish(e Event) {
	s.subsMu.RLock()
	ls := make([]Listener, 0, len(s.subs))
	for _, l := range s.subs {
		ls = append(ls, l)
	}
	s.subsMu.RUnlock()

	for _, l := range ls {
		l(e)
	}
}
