package railmap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jusunglee/railmap-go/internal/config"
	"github.com/jusunglee/railmap-go/internal/models"
	"github.com/jusunglee/railmap-go/internal/render"
	"github.com/jusunglee/railmap-go/internal/store"
	"github.com/jusunglee/railmap-go/internal/viewport"
)

// ErrLineNotFound is returned for a line name the network does not declare
var ErrLineNotFound = errors.New("line not found")

// Client defines the interface for driving transit map sessions.
// Abstracts the in-process implementation from the HTTP transport.
type Client interface {
	GetNetworkInfo() NetworkInfo
	GetStations(query string, limit int) []string
	GetStationsNear(p models.Point, limit int) []models.Station
	GetLines() []models.Line
	GetLine(name string) (models.Line, error)

	CreateSession() store.Session
	DeleteSession(id string) error
	GetSessions() []store.Session

	GetScene(id string) (render.Scene, error)
	GetTransform(id string) (viewport.State, error)
	GetStationsAt(id string, p models.Point, limit int) ([]models.Station, error)

	ApplyItinerary(id string, result models.RouteResult) (render.Scene, error)
	ClearItinerary(id string) error
	PlanJourney(ctx context.Context, id string, req models.JourneyRequest) (models.Journey, error)
	HandleEvents(id string, events []viewport.Event) (viewport.State, error)

	GetLastUpdate() time.Time
}

// NetworkInfo summarises the loaded network
type NetworkInfo struct {
	Name     string `json:"name"`
	Stations int    `json:"stations"`
	Lines    int    `json:"lines"`
	Edges    int    `json:"edges"`
	Sessions int    `json:"sessions"`
}

// Config holds configuration for the railmap client
type Config struct {
	// NetworkFile is a YAML network definition; empty selects the built-in map
	NetworkFile string

	RouteServiceURL string
	RequestTimeout  time.Duration
	CacheSize       int
	CacheTTL        time.Duration

	// SessionTTL of zero keeps idle sessions forever
	SessionTTL    time.Duration
	SweepInterval time.Duration

	Logger *slog.Logger
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		RouteServiceURL: config.DefaultRouteServiceURL,
		RequestTimeout:  30 * time.Second,
		CacheSize:       256,
		CacheTTL:        5 * time.Minute,
		SessionTTL:      30 * time.Minute,
		SweepInterval:   time.Minute,
	}
}

// ConfigFromApp maps the application configuration onto a client Config
func ConfigFromApp(app config.AppConfig) Config {
	return Config{
		NetworkFile:     app.Network.File,
		RouteServiceURL: app.RouteService.URL,
		RequestTimeout:  app.RouteServiceTimeout(),
		CacheSize:       app.RouteService.CacheSize,
		CacheTTL:        app.CacheTTL(),
		SessionTTL:      app.SessionTTL(),
		SweepInterval:   app.SweepInterval(),
	}
}
