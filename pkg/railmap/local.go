package railmap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jusunglee/railmap-go/internal/feed"
	"github.com/jusunglee/railmap-go/internal/models"
	"github.com/jusunglee/railmap-go/internal/network"
	"github.com/jusunglee/railmap-go/internal/render"
	"github.com/jusunglee/railmap-go/internal/store"
	"github.com/jusunglee/railmap-go/internal/viewer"
	"github.com/jusunglee/railmap-go/internal/viewport"
)

// MaxSuggestions caps autosuggest results
const MaxSuggestions = 8

// LocalClient implements the Client interface in-process
// Owns the network, the session store and the route service client
type LocalClient struct {
	network *network.Network
	store   *store.Store
	planner *feed.Manager
	logger  *slog.Logger
}

// NewLocal creates a new local client
// Starts the session janitor when config.SessionTTL is set
func NewLocal(config Config) (*LocalClient, error) {
	var (
		n   *network.Network
		err error
	)
	if config.NetworkFile != "" {
		n, err = network.Load(config.NetworkFile)
	} else {
		n, err = network.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}

	return NewLocalWithNetwork(n, config), nil
}

// NewLocalWithNetwork creates a local client over an already loaded network
func NewLocalWithNetwork(n *network.Network, config Config) *LocalClient {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	planner := feed.NewManager(feed.Config{
		BaseURL:   config.RouteServiceURL,
		Timeout:   config.RequestTimeout,
		CacheSize: config.CacheSize,
		CacheTTL:  config.CacheTTL,
	}, logger)

	s := store.NewStore()
	if config.SessionTTL > 0 {
		interval := config.SweepInterval
		if interval <= 0 {
			interval = time.Minute
		}
		s.StartJanitor(interval, config.SessionTTL)
	}

	logger.Info("Network loaded", "name", n.Name(), "stations", len(n.StationNames()), "edges", n.EdgeCount())

	return &LocalClient{
		network: n,
		store:   s,
		planner: planner,
		logger:  logger,
	}
}

// Close gracefully shuts down the local client
// Must be called to stop the session janitor
func (c *LocalClient) Close() {
	c.store.Stop()
	for _, sess := range c.store.List() {
		_ = c.store.Delete(sess.ID)
	}
}

func (c *LocalClient) GetNetworkInfo() NetworkInfo {
	return NetworkInfo{
		Name:     c.network.Name(),
		Stations: len(c.network.StationNames()),
		Lines:    len(c.network.Lines()),
		Edges:    c.network.EdgeCount(),
		Sessions: c.store.Count(),
	}
}

// GetStations returns all station names, or up to limit suggestions for query
func (c *LocalClient) GetStations(query string, limit int) []string {
	if query == "" {
		names := c.network.StationNames()
		if limit > 0 && limit < len(names) {
			names = names[:limit]
		}
		return names
	}
	if limit <= 0 || limit > MaxSuggestions {
		limit = MaxSuggestions
	}
	return c.network.Suggest(query, limit)
}

func (c *LocalClient) GetStationsNear(p models.Point, limit int) []models.Station {
	return c.network.StationsNear(p, limit)
}

func (c *LocalClient) GetLines() []models.Line {
	return c.network.Lines()
}

func (c *LocalClient) GetLine(name string) (models.Line, error) {
	line, ok := c.network.Line(name)
	if !ok {
		return models.Line{}, fmt.Errorf("%w: %s", ErrLineNotFound, name)
	}
	return line, nil
}

func (c *LocalClient) CreateSession() store.Session {
	sess := c.store.Create(viewer.New(c.network))
	c.logger.Debug("Session created", "id", sess.ID)
	return sess
}

func (c *LocalClient) DeleteSession(id string) error {
	return c.store.Delete(id)
}

func (c *LocalClient) GetSessions() []store.Session {
	return c.store.List()
}

func (c *LocalClient) GetScene(id string) (render.Scene, error) {
	v, err := c.viewer(id)
	if err != nil {
		return render.Scene{}, err
	}
	return v.Scene(), nil
}

func (c *LocalClient) GetTransform(id string) (viewport.State, error) {
	v, err := c.viewer(id)
	if err != nil {
		return viewport.State{}, err
	}
	return v.Transform(), nil
}

// GetStationsAt returns the stations nearest a point on the session's
// viewport, undoing the current zoom and pan first
func (c *LocalClient) GetStationsAt(id string, p models.Point, limit int) ([]models.Station, error) {
	v, err := c.viewer(id)
	if err != nil {
		return nil, err
	}
	return c.network.StationsNear(v.Transform().Invert(p), limit), nil
}

// ApplyItinerary replaces the session's highlight with the one described by result
func (c *LocalClient) ApplyItinerary(id string, result models.RouteResult) (render.Scene, error) {
	v, err := c.viewer(id)
	if err != nil {
		return render.Scene{}, err
	}
	v.Publish(result)
	return v.Scene(), nil
}

func (c *LocalClient) ClearItinerary(id string) error {
	v, err := c.viewer(id)
	if err != nil {
		return err
	}
	v.Clear()
	return nil
}

// PlanJourney asks the route service for a journey and highlights it.
// Station names are matched against the network first, so "churchgate"
// is sent as "Churchgate".
func (c *LocalClient) PlanJourney(ctx context.Context, id string, req models.JourneyRequest) (models.Journey, error) {
	v, err := c.viewer(id)
	if err != nil {
		return models.Journey{}, err
	}

	req.From = c.network.Normalize(req.From)
	req.To = c.network.Normalize(req.To)

	journey, err := c.planner.Plan(ctx, req)
	if err != nil {
		return models.Journey{}, err
	}

	v.PublishJourney(journey)
	c.logger.Info("Journey planned", "session", id, "from", journey.Request.From, "to", journey.Request.To,
		"type", journey.Request.RouteType, "stations", len(v.Path()))

	return journey, nil
}

// HandleEvents applies events in order and stops at the first unknown one.
// Events before it stay applied.
func (c *LocalClient) HandleEvents(id string, events []viewport.Event) (viewport.State, error) {
	v, err := c.viewer(id)
	if err != nil {
		return viewport.State{}, err
	}
	for i, e := range events {
		if err := v.Handle(e); err != nil {
			return v.Transform(), fmt.Errorf("event %d: %w", i, err)
		}
	}
	return v.Transform(), nil
}

func (c *LocalClient) GetLastUpdate() time.Time {
	return c.store.GetLastUpdate()
}

func (c *LocalClient) viewer(id string) (*viewer.Viewer, error) {
	sess, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}
	return sess.Viewer, nil
}
