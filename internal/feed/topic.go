package feed

import (
	"sync"

	"github.com/jusunglee/railmap-go/internal/models"
)

// Topic fans route results out to subscribers. Each map session owns one,
// so results never leak between sessions.
type Topic struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
	last   *models.RouteResult
}

type subscriber struct {
	id int
	fn func(models.RouteResult)
}

// NewTopic creates an empty topic
func NewTopic() *Topic {
	return &Topic{}
}

// Subscribe registers fn for every published result and returns a function
// that removes it. Subscribers run synchronously in subscription order.
func (t *Topic) Subscribe(fn func(models.RouteResult)) (cancel func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.subs = append(t.subs, subscriber{id: id, fn: fn})

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers result to every subscriber before returning
func (t *Topic) Publish(result models.RouteResult) {
	t.mu.Lock()
	r := result
	t.last = &r
	subs := make([]subscriber, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, s := range subs {
		s.fn(result)
	}
}

// Last returns the most recently published result
func (t *Topic) Last() (models.RouteResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return models.RouteResult{}, false
	}
	return *t.last, true
}
