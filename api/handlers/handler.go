package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/jusunglee/railmap-go/internal/feed"
	"github.com/jusunglee/railmap-go/internal/models"
	"github.com/jusunglee/railmap-go/internal/render"
	"github.com/jusunglee/railmap-go/internal/store"
	"github.com/jusunglee/railmap-go/internal/viewport"
	"github.com/jusunglee/railmap-go/pkg/railmap"
)

const (
	defaultNearLimit = 5
	maxBodyBytes     = 1 << 20
)

// Handler handles HTTP requests
type Handler struct {
	client railmap.Client
	svg    render.SVGOptions
}

// NewHandler creates a new HTTP handler
func NewHandler(client railmap.Client) *Handler {
	return &Handler{client: client, svg: render.DefaultSVGOptions()}
}

// RegisterRoutes registers all routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleIndex).Methods("GET")
	r.HandleFunc("/health", h.handleHealth).Methods("GET")

	r.HandleFunc("/stations", h.handleStations).Methods("GET")
	r.HandleFunc("/stations/near", h.handleStationsNear).Methods("GET")
	r.HandleFunc("/lines", h.handleLines).Methods("GET")
	r.HandleFunc("/lines/{name}", h.handleLine).Methods("GET")

	r.HandleFunc("/sessions", h.handleCreateSession).Methods("POST")
	r.HandleFunc("/sessions", h.handleListSessions).Methods("GET")
	r.HandleFunc("/sessions/{id}", h.handleDeleteSession).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/scene", h.handleScene).Methods("GET")
	r.HandleFunc("/sessions/{id}/transform", h.handleTransform).Methods("GET")
	r.HandleFunc("/sessions/{id}/stations/near", h.handleSessionStationsNear).Methods("GET")
	r.HandleFunc("/sessions/{id}/itinerary", h.handleApplyItinerary).Methods("PUT")
	r.HandleFunc("/sessions/{id}/itinerary", h.handleClearItinerary).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/journey", h.handleJourney).Methods("POST")
	r.HandleFunc("/sessions/{id}/events", h.handleEvents).Methods("POST")
}

// Response wraps API responses
type Response struct {
	Data    interface{} `json:"data"`
	Updated string      `json:"updated,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"title":  "railmap-go",
		"readme": "Visit https://github.com/jusunglee/railmap-go for more info",
	}
	h.writeJSON(w, response)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"status":  "ok",
		"network": h.client.GetNetworkInfo(),
	})
}

func (h *Handler) handleStations(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, Response{Data: h.client.GetStations(r.URL.Query().Get("q"), limit)})
}

func (h *Handler) handleStationsNear(w http.ResponseWriter, r *http.Request) {
	p, limit, ok := h.pointParams(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, Response{Data: h.client.GetStationsNear(p, limit)})
}

func (h *Handler) handleLines(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, Response{Data: h.client.GetLines()})
}

func (h *Handler) handleLine(w http.ResponseWriter, r *http.Request) {
	line, err := h.client.GetLine(mux.Vars(r)["name"])
	if err != nil {
		h.writeClientError(w, err)
		return
	}

	h.writeJSON(w, Response{Data: line})
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.client.CreateSession()

	w.Header().Set("Location", "/sessions/"+sess.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(Response{Data: sess})
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, Response{
		Data:    h.client.GetSessions(),
		Updated: h.updated(),
	})
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DeleteSession(mux.Vars(r)["id"]); err != nil {
		h.writeClientError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleScene(w http.ResponseWriter, r *http.Request) {
	scene, err := h.client.GetScene(mux.Vars(r)["id"])
	if err != nil {
		h.writeClientError(w, err)
		return
	}

	h.writeScene(w, r, scene)
}

func (h *Handler) handleTransform(w http.ResponseWriter, r *http.Request) {
	state, err := h.client.GetTransform(mux.Vars(r)["id"])
	if err != nil {
		h.writeClientError(w, err)
		return
	}

	h.writeJSON(w, Response{Data: state})
}

func (h *Handler) handleSessionStationsNear(w http.ResponseWriter, r *http.Request) {
	p, limit, ok := h.pointParams(w, r)
	if !ok {
		return
	}

	stations, err := h.client.GetStationsAt(mux.Vars(r)["id"], p, limit)
	if err != nil {
		h.writeClientError(w, err)
		return
	}

	h.writeJSON(w, Response{Data: stations})
}

func (h *Handler) handleApplyItinerary(w http.ResponseWriter, r *http.Request) {
	var result models.RouteResult
	if err := decodeBody(r, &result); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	scene, err := h.client.ApplyItinerary(mux.Vars(r)["id"], result)
	if err != nil {
		h.writeClientError(w, err)
		return
	}

	h.writeScene(w, r, scene)
}

func (h *Handler) handleClearItinerary(w http.ResponseWriter, r *http.Request) {
	if err := h.client.ClearItinerary(mux.Vars(r)["id"]); err != nil {
		h.writeClientError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleJourney(w http.ResponseWriter, r *http.Request) {
	var req models.JourneyRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	journey, err := h.client.PlanJourney(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		h.writeClientError(w, err)
		return
	}

	h.writeJSON(w, Response{Data: journey})
}

// handleEvents accepts a single event object or an array of events
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeBody(r, &raw); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var events []viewport.Event
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &events); err != nil {
			h.writeError(w, "Invalid events: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		var e viewport.Event
		if err := json.Unmarshal(trimmed, &e); err != nil {
			h.writeError(w, "Invalid event: "+err.Error(), http.StatusBadRequest)
			return
		}
		events = []viewport.Event{e}
	}

	state, err := h.client.HandleEvents(mux.Vars(r)["id"], events)
	if err != nil {
		h.writeClientError(w, err)
		return
	}

	h.writeJSON(w, Response{Data: state})
}

func (h *Handler) writeScene(w http.ResponseWriter, r *http.Request, scene render.Scene) {
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		h.writeJSON(w, Response{Data: scene})
	case "svg":
		var buf bytes.Buffer
		if err := render.WriteSVG(&buf, scene, h.svg); err != nil {
			h.writeError(w, "Failed to render scene", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(buf.Bytes())
	case "proto":
		data, err := render.MarshalProto(scene)
		if err != nil {
			h.writeError(w, "Failed to encode scene", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", render.ProtoContentType)
		w.Write(data)
	default:
		h.writeError(w, fmt.Sprintf("Unknown format %q", format), http.StatusBadRequest)
	}
}

func (h *Handler) pointParams(w http.ResponseWriter, r *http.Request) (models.Point, int, bool) {
	xStr := r.URL.Query().Get("x")
	yStr := r.URL.Query().Get("y")

	if xStr == "" || yStr == "" {
		h.writeError(w, "Missing x/y parameter", http.StatusBadRequest)
		return models.Point{}, 0, false
	}

	x, err := strconv.ParseFloat(xStr, 64)
	if err != nil {
		h.writeError(w, "Invalid x parameter", http.StatusBadRequest)
		return models.Point{}, 0, false
	}

	y, err := strconv.ParseFloat(yStr, 64)
	if err != nil {
		h.writeError(w, "Invalid y parameter", http.StatusBadRequest)
		return models.Point{}, 0, false
	}

	limit, err := intParam(r, "limit", defaultNearLimit)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return models.Point{}, 0, false
	}

	return models.Point{X: x, Y: y}, limit, true
}

func (h *Handler) updated() string {
	last := h.client.GetLastUpdate()
	if last.IsZero() {
		return ""
	}
	return last.Format(time.RFC3339)
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.writeError(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func (h *Handler) writeClientError(w http.ResponseWriter, err error) {
	h.writeError(w, err.Error(), statusFor(err))
}

// statusFor maps client errors to HTTP status codes
func statusFor(err error) int {
	var svcErr *feed.ServiceError
	switch {
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, railmap.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, viewport.ErrUnknownEvent),
		errors.Is(err, feed.ErrMissingStation),
		errors.Is(err, feed.ErrSameStation),
		errors.Is(err, feed.ErrUnknownRouteType):
		return http.StatusBadRequest
	case errors.As(err, &svcErr):
		if svcErr.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("Invalid %s parameter", name)
	}
	return n, nil
}

func decodeBody(r *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("Failed to read body: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("Empty request body")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("Invalid JSON body: %w", err)
	}
	return nil
}
