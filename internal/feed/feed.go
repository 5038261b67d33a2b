package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jusunglee/railmap-go/internal/models"
)

// Route service endpoints
const (
	journeyPath      = "/api/journey"
	alternativesPath = "/api/journey/all"
	stationsPath     = "/api/stations"
)

// ErrSameStation is returned when a journey starts and ends at one station
var ErrSameStation = errors.New("source and destination cannot be the same")

// ErrMissingStation is returned when a journey request lacks an endpoint
var ErrMissingStation = errors.New("both stations are required")

// ErrUnknownRouteType is returned for a route type the service does not offer
var ErrUnknownRouteType = errors.New("unknown route type")

// ServiceError is a non-2xx answer from the route service
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("route service: HTTP %d", e.Status)
	}
	return fmt.Sprintf("route service: HTTP %d: %s", e.Status, e.Message)
}

// Config configures the route service client
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	CacheSize int
	CacheTTL  time.Duration
}

// Manager fetches journeys from the external route service.
// Route computation itself happens there; Manager only transports results.
type Manager struct {
	baseURL    string
	httpClient *http.Client
	cache      gcache.Cache
	group      singleflight.Group
	logger     *slog.Logger
}

// NewManager creates a new route service client
func NewManager(cfg Config, logger *slog.Logger) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}

	builder := gcache.New(cfg.CacheSize).LRU()
	if cfg.CacheTTL > 0 {
		builder = builder.Expiration(cfg.CacheTTL)
	}

	return &Manager{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  builder.Build(),
		logger: logger,
	}
}

// FetchJourney asks the route service for one journey. Identical concurrent
// requests share a single call and successful results are cached.
func (m *Manager) FetchJourney(ctx context.Context, req models.JourneyRequest) (models.RouteResult, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return models.RouteResult{}, err
	}

	key := cacheKey(req)
	if cached, err := m.cache.Get(key); err == nil {
		return cached.(models.RouteResult), nil
	}

	v, err, shared := m.group.Do(key, func() (interface{}, error) {
		var result models.RouteResult
		if err := m.fetch(ctx, http.MethodPost, journeyPath, req, &result); err != nil {
			return nil, err
		}
		if err := m.cache.Set(key, result); err != nil {
			m.logger.Warn("Failed to cache journey", "key", key, "error", err)
		}
		return result, nil
	})
	if err != nil {
		return models.RouteResult{}, fmt.Errorf("fetch journey %s → %s: %w", req.From, req.To, err)
	}
	if shared {
		m.logger.Debug("Journey request shared", "key", key)
	}

	return v.(models.RouteResult), nil
}

// FetchAlternatives asks the route service for every route type at once
func (m *Manager) FetchAlternatives(ctx context.Context, from, to string) (map[string]models.AlternativeRoute, error) {
	req, err := normalizeRequest(models.JourneyRequest{From: from, To: to})
	if err != nil {
		return nil, err
	}

	result := make(map[string]models.AlternativeRoute)
	body := models.JourneyRequest{From: req.From, To: req.To}
	if err := m.fetch(ctx, http.MethodPost, alternativesPath, body, &result); err != nil {
		return nil, fmt.Errorf("fetch alternatives %s → %s: %w", from, to, err)
	}
	return result, nil
}

// FetchStations returns the station names known to the route service
func (m *Manager) FetchStations(ctx context.Context) ([]string, error) {
	var stations []string
	if err := m.fetch(ctx, http.MethodGet, stationsPath, nil, &stations); err != nil {
		return nil, fmt.Errorf("fetch stations: %w", err)
	}
	return stations, nil
}

// Plan fetches the requested journey and the alternatives concurrently.
// Alternatives are best effort: their failure is logged, not returned.
func (m *Manager) Plan(ctx context.Context, req models.JourneyRequest) (models.Journey, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return models.Journey{}, err
	}

	journey := models.Journey{Request: req}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		result, err := m.FetchJourney(gctx, req)
		if err != nil {
			return err
		}
		journey.Result = result
		return nil
	})

	var alternatives map[string]models.AlternativeRoute
	g.Go(func() error {
		alts, err := m.FetchAlternatives(gctx, req.From, req.To)
		if err != nil {
			m.logger.Warn("Failed to load alternatives", "from", req.From, "to", req.To, "error", err)
			return nil
		}
		alternatives = alts
		return nil
	})

	if err := g.Wait(); err != nil {
		return models.Journey{}, err
	}
	journey.Alternatives = alternatives

	return journey, nil
}

// Purge drops every cached journey
func (m *Manager) Purge() {
	m.cache.Purge()
}

func (m *Manager) fetch(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	m.logger.Debug("Route service call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &apiErr)
		return &ServiceError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func normalizeRequest(req models.JourneyRequest) (models.JourneyRequest, error) {
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	if req.RouteType == "" {
		req.RouteType = models.RouteFastest
	}

	if req.From == "" || req.To == "" {
		return req, ErrMissingStation
	}
	if strings.EqualFold(req.From, req.To) {
		return req, ErrSameStation
	}

	switch req.RouteType {
	case models.RouteFastest, models.RouteCheapest, models.RouteComfortable:
	default:
		return req, fmt.Errorf("%w %q", ErrUnknownRouteType, req.RouteType)
	}
	return req, nil
}

func cacheKey(req models.JourneyRequest) string {
	return strings.ToLower(req.From) + "|" + strings.ToLower(req.To) + "|" + req.RouteType
}
