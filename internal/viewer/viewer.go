// Package viewer holds the state of one map session: the viewport transform
// and the highlight derived from the latest itinerary.
package viewer

import (
	"sync"

	"github.com/jusunglee/railmap-go/internal/feed"
	"github.com/jusunglee/railmap-go/internal/highlight"
	"github.com/jusunglee/railmap-go/internal/itinerary"
	"github.com/jusunglee/railmap-go/internal/models"
	"github.com/jusunglee/railmap-go/internal/network"
	"github.com/jusunglee/railmap-go/internal/render"
	"github.com/jusunglee/railmap-go/internal/viewport"
)

// Viewer is a single-user map session.
// The highlight is recomputed from scratch whenever its topic publishes a
// result; the transform survives itinerary changes.
type Viewer struct {
	mu        sync.RWMutex
	network   *network.Network
	transform *viewport.Transform
	path      highlight.Path
	route     *models.RouteResult
	alts      map[string]models.AlternativeRoute

	topic       *feed.Topic
	unsubscribe func()
}

// New creates a viewer over n, subscribed to its own topic
func New(n *network.Network) *Viewer {
	v := &Viewer{
		network:   n,
		transform: viewport.New(),
		topic:     feed.NewTopic(),
	}
	v.unsubscribe = v.topic.Subscribe(v.apply)
	return v
}

// Topic returns the topic the viewer listens on
func (v *Viewer) Topic() *feed.Topic {
	return v.topic
}

// Publish sends a route result through the viewer's topic
func (v *Viewer) Publish(result models.RouteResult) {
	v.topic.Publish(result)
}

// PublishJourney records the journey's alternatives and publishes its result
func (v *Viewer) PublishJourney(j models.Journey) {
	v.mu.Lock()
	v.alts = j.Alternatives
	v.mu.Unlock()

	v.topic.Publish(j.Result)
}

// Clear removes the highlight
func (v *Viewer) Clear() {
	v.mu.Lock()
	v.alts = nil
	v.mu.Unlock()

	v.topic.Publish(models.RouteResult{})
}

// apply replaces the highlight with one computed from result.
// The new path is built before the lock is taken, so readers see either the
// old state or the new one.
func (v *Viewer) apply(result models.RouteResult) {
	path := highlight.Resolve(itinerary.Parse(result.Route, v.network))

	var route *models.RouteResult
	if !isEmpty(result) {
		r := result
		r.Route = append([]string(nil), result.Route...)
		route = &r
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.path = path
	v.route = route
}

// Handle applies a viewport input event
func (v *Viewer) Handle(e viewport.Event) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.transform.Handle(e)
}

// Transform returns the current viewport state
func (v *Viewer) Transform() viewport.State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.transform.State()
}

// Path returns the highlighted stations in order
func (v *Viewer) Path() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.path.Stations()
}

// Route returns the route result currently highlighted
func (v *Viewer) Route() (models.RouteResult, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.route == nil {
		return models.RouteResult{}, false
	}
	return *v.route, true
}

// Alternatives returns the alternatives fetched with the current journey
func (v *Viewer) Alternatives() map[string]models.AlternativeRoute {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make(map[string]models.AlternativeRoute, len(v.alts))
	for k, a := range v.alts {
		out[k] = a
	}
	return out
}

// Scene renders the current state
func (v *Viewer) Scene() render.Scene {
	v.mu.RLock()
	defer v.mu.RUnlock()

	scene := render.Build(v.network, v.path, v.transform.State())
	if v.route != nil {
		r := *v.route
		scene.Route = &r
	}
	return scene
}

// Close detaches the viewer from its topic
func (v *Viewer) Close() {
	v.unsubscribe()
}

func isEmpty(r models.RouteResult) bool {
	return len(r.Route) == 0 && r.Time == "" && r.Cost == "" && r.Distance == ""
}
