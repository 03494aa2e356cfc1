package status

import "sync"

// Observer receives published statuses.
type Observer func(s Status)

// Subscription is an active observer registration.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the observer.
func (s *Subscription) Unsubscribe() {
	if s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

// Notifier delivers statuses synchronously to every observer.
type Notifier struct {
	mu        sync.RWMutex
	observers map[uint64]Observer
	nextID    uint64
	last      Status
	hasLast   bool
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{observers: make(map[uint64]Observer)}
}

// Subscribe registers an observer for all statuses.
func (n *Notifier) Subscribe(o Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.observers[id] = o
	return &Subscription{id: id, notifier: n}
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// Publish records s as the latest status and delivers it. A panicking
// observer does not stop delivery to the rest.
func (n *Notifier) Publish(s Status) {
	n.mu.Lock()
	n.last = s
	n.hasLast = true
	observers := make([]Observer, 0, len(n.observers))
	for _, o := range n.observers {
		observers = append(observers, o)
	}
	n.mu.Unlock()

	for _, o := range observers {
		safeCall(o, s)
	}
}

func safeCall(o Observer, s Status) {
	defer func() {
		_ = recover()
	}()
	o(s)
}

// Last returns the most recent status.
func (n *Notifier) Last() (Status, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.last, n.hasLast
}

// ObserverCount returns the number of subscribed observers.
func (n *Notifier) ObserverCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.observers)
}
