package i18n

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Change describes a dictionary change that may alter rendered messages.
// Previous equals Locale when the active locale stayed the same but the
// dictionary content was reloaded.
type Change struct {
	Locale   string
	Previous string
}

// Subscription receives dictionary changes. Consumers that hold validation
// results call their regenerate functions when a Change arrives.
type Subscription struct {
	ID string

	ch     chan Change
	closed bool
	mu     sync.RWMutex
}

func newSubscription(bufferSize int) *Subscription {
	return &Subscription{
		ID: uuid.NewString(),
		ch: make(chan Change, bufferSize),
	}
}

// Changes returns the channel delivering changes. It is closed on Close.
func (s *Subscription) Changes() <-chan Change {
	return s.ch
}

// Close stops delivery. It is idempotent.
func (s *Subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

// send reports whether c was delivered and whether the subscription is
// still open. A full buffer drops c but keeps the subscription.
func (s *Subscription) send(c Change) (delivered, open bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, false
	}

	select {
	case s.ch <- c:
		return true, true
	default:
		return false, true
	}
}

// notifier fans changes out to subscriptions without blocking the publisher.
// A subscription whose buffer is full misses the change; the next change
// still reaches it.
type notifier struct {
	subs       map[*Subscription]struct{}
	bufferSize int
	closed     bool
	done       chan struct{}
	mu         sync.RWMutex
	cleanupWg  sync.WaitGroup
}

func newNotifier(bufferSize int) *notifier {
	return &notifier{
		subs:       make(map[*Subscription]struct{}),
		bufferSize: max(bufferSize, 1),
		done:       make(chan struct{}),
	}
}

func (n *notifier) subscribe(ctx context.Context) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	sub := newSubscription(n.bufferSize)
	if n.closed {
		_ = sub.Close()
		return sub
	}
	n.subs[sub] = struct{}{}

	if ctx.Done() != nil {
		n.cleanupWg.Add(1)
		go func() {
			defer n.cleanupWg.Done()
			select {
			case <-ctx.Done():
				n.unsubscribe(sub)
			case <-n.done:
			}
		}()
	}

	return sub
}

// publish returns the number of subscriptions that received the change.
// Subscriptions closed by their owner are dropped.
func (n *notifier) publish(c Change) int {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return 0
	}

	delivered := 0
	var dead []*Subscription
	for sub := range n.subs {
		ok, open := sub.send(c)
		if ok {
			delivered++
		}
		if !open {
			dead = append(dead, sub)
		}
	}
	n.mu.RUnlock()

	if len(dead) > 0 {
		n.mu.Lock()
		for _, sub := range dead {
			delete(n.subs, sub)
		}
		n.mu.Unlock()
	}
	return delivered
}

func (n *notifier) count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}

func (n *notifier) unsubscribe(sub *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()

	delete(n.subs, sub)
	_ = sub.Close()
}

func (n *notifier) close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.done)
	for sub := range n.subs {
		_ = sub.Close()
	}
	clear(n.subs)
	n.mu.Unlock()

	n.cleanupWg.Wait()
}
