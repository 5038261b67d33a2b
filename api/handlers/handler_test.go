package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/jusunglee/railmap-go/internal/feed"
	"github.com/jusunglee/railmap-go/internal/network"
	"github.com/jusunglee/railmap-go/internal/render"
	"github.com/jusunglee/railmap-go/pkg/railmap"
)

type testServer struct {
	router *mux.Router
}

func newTestServer(t *testing.T, n *network.Network) *testServer {
	t.Helper()

	planner := http.NewServeMux()
	planner.HandleFunc("/api/journey", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["to"] == "Nowhere" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "No route found"})
			return
		}
		json.NewEncoder(w).Encode(feed.CreateMockRouteResult())
	})
	planner.HandleFunc("/api/journey/all", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(feed.CreateMockAlternatives())
	})
	srv := httptest.NewServer(planner)
	t.Cleanup(srv.Close)

	cfg := railmap.DefaultConfig()
	cfg.RouteServiceURL = srv.URL
	cfg.SessionTTL = 0
	client := railmap.NewLocalWithNetwork(n, cfg)
	t.Cleanup(client.Close)

	r := mux.NewRouter()
	NewHandler(client).RegisterRoutes(r)
	return &testServer{router: r}
}

func (s *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.ID)
	assert.Equal(t, "/sessions/"+resp.Data.ID, rec.Header().Get("Location"))
	return resp.Data.ID
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	resp := struct {
		Data interface{} `json:"data"`
	}{Data: v}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
}

func TestIndexAndHealth(t *testing.T) {
	s := newTestServer(t, network.CreateTestNetwork())

	rec := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "railmap-go")

	rec = s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health struct {
		Status  string              `json:"status"`
		Network railmap.NetworkInfo `json:"network"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "Test Network", health.Network.Name)
	assert.Equal(t, 7, health.Network.Edges)
}

func TestStationEndpoints(t *testing.T) {
	s := newTestServer(t, network.MustDefault())

	tests := []struct {
		name   string
		target string
		status int
		check  func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:   "suggestions",
			target: "/stations?q=and",
			status: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var names []string
				decodeData(t, rec, &names)
				assert.Contains(t, names, "Andheri")
				assert.LessOrEqual(t, len(names), railmap.MaxSuggestions)
			},
		},
		{
			name:   "all stations",
			target: "/stations",
			status: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var names []string
				decodeData(t, rec, &names)
				assert.Greater(t, len(names), 100)
			},
		},
		{name: "bad limit", target: "/stations?limit=many", status: http.StatusBadRequest},
		{
			name:   "near",
			target: "/stations/near?x=160&y=1550&limit=1",
			status: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var stations []struct {
					Name string `json:"name"`
				}
				decodeData(t, rec, &stations)
				require.Len(t, stations, 1)
				assert.Equal(t, "Churchgate", stations[0].Name)
			},
		},
		{name: "near missing y", target: "/stations/near?x=1", status: http.StatusBadRequest},
		{name: "near bad x", target: "/stations/near?x=a&y=1", status: http.StatusBadRequest},
		{
			name:   "lines",
			target: "/lines",
			status: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var lines []struct {
					Name string `json:"name"`
				}
				decodeData(t, rec, &lines)
				require.Len(t, lines, 9)
				assert.Equal(t, "Western Line", lines[0].Name)
			},
		},
		{name: "line", target: "/lines/Metro%20Line%201", status: http.StatusOK},
		{name: "unknown line", target: "/lines/Monorail", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.check != nil {
				tt.check(t, rec)
			}
		})
	}
}

func TestSessionScene(t *testing.T) {
	s := newTestServer(t, network.CreateTestNetwork())
	id := s.createSession(t)

	rec := s.do(t, http.MethodPut, "/sessions/"+id+"/itinerary",
		`{"time":"6 min","route":["🚆 Take Local Train - Red\n   From: A → To: D"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var scene render.Scene
	decodeData(t, rec, &scene)
	assert.True(t, scene.Active)
	assert.Equal(t, []string{"A", "B", "C", "D"}, scene.Path)

	t.Run("svg", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/sessions/"+id+"/scene?format=svg", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "<svg")
		assert.Contains(t, rec.Body.String(), render.RouteColor)
	})

	t.Run("proto", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/sessions/"+id+"/scene?format=proto", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, render.ProtoContentType, rec.Header().Get("Content-Type"))

		var msg structpb.Struct
		require.NoError(t, proto.Unmarshal(rec.Body.Bytes(), &msg))
		assert.True(t, msg.GetFields()["active"].GetBoolValue())
	})

	t.Run("unknown format", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/sessions/"+id+"/scene?format=png", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("clear", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, "/sessions/"+id+"/itinerary", "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(t, http.MethodGet, "/sessions/"+id+"/scene", "")
		var scene render.Scene
		decodeData(t, rec, &scene)
		assert.False(t, scene.Active)
		assert.Empty(t, scene.Path)
	})

	t.Run("bad body", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/sessions/"+id+"/itinerary", `{"route": 5}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(t, http.MethodPut, "/sessions/"+id+"/itinerary", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessionEvents(t *testing.T) {
	s := newTestServer(t, network.CreateTestNetwork())
	id := s.createSession(t)

	rec := s.do(t, http.MethodPost, "/sessions/"+id+"/events", `{"kind":"zoom-in"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/sessions/"+id+"/events", `[
		{"kind":"pointer-down","point":{"x":0,"y":0}},
		{"kind":"pointer-move","point":{"x":50,"y":50}},
		{"kind":"pointer-up"}
	]`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var state struct {
		Zoom float64 `json:"zoom"`
		Pan  struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"pan"`
		Dragging bool `json:"dragging"`
	}
	decodeData(t, rec, &state)
	assert.InDelta(t, 1.0, state.Zoom, 1e-9)
	assert.Equal(t, 150.0, state.Pan.X)
	assert.Equal(t, -650.0, state.Pan.Y)
	assert.False(t, state.Dragging)

	rec = s.do(t, http.MethodGet, "/sessions/"+id+"/transform", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/sessions/"+id+"/events", `{"kind":"spin"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/sessions/"+id+"/events", `[{"kind":1}]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	t.Run("stations under pointer", func(t *testing.T) {
		// zoom 1, pan (150,-650): graph B (10,0) sits at (160,-650)
		rec := s.do(t, http.MethodGet, "/sessions/"+id+"/stations/near?x=160&y=-650&limit=1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var stations []struct {
			Name string `json:"name"`
		}
		decodeData(t, rec, &stations)
		require.Len(t, stations, 1)
		assert.Equal(t, "B", stations[0].Name)
	})
}

func TestSessionJourney(t *testing.T) {
	s := newTestServer(t, network.MustDefault())
	id := s.createSession(t)

	rec := s.do(t, http.MethodPost, "/sessions/"+id+"/journey", `{"from":"churchgate","to":"Ghatkopar"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var journey struct {
		Result struct {
			Time string `json:"time"`
		} `json:"result"`
		Alternatives map[string]interface{} `json:"alternatives"`
	}
	decodeData(t, rec, &journey)
	assert.Equal(t, "31 min", journey.Result.Time)
	assert.Len(t, journey.Alternatives, 2)

	rec = s.do(t, http.MethodGet, "/sessions/"+id+"/scene", "")
	var scene render.Scene
	decodeData(t, rec, &scene)
	assert.Len(t, scene.Path, 14)
	require.NotNil(t, scene.Route)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"same station", `{"from":"Dadar","to":"Dadar"}`, http.StatusBadRequest},
		{"missing station", `{"from":"Dadar"}`, http.StatusBadRequest},
		{"bad route type", `{"from":"Dadar","to":"Kurla","routeType":"scenic"}`, http.StatusBadRequest},
		{"no route", `{"from":"Dadar","to":"Nowhere"}`, http.StatusNotFound},
		{"malformed", `{"from":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/sessions/"+id+"/journey", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.NotEmpty(t, errResp.Error)
		})
	}
}

func TestSessionNotFound(t *testing.T) {
	s := newTestServer(t, network.CreateTestNetwork())
	id := s.createSession(t)

	rec := s.do(t, http.MethodGet, "/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)

	rec = s.do(t, http.MethodDelete, "/sessions/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	for _, c := range []struct{ method, path, body string }{
		{http.MethodDelete, "/sessions/" + id, ""},
		{http.MethodGet, "/sessions/" + id + "/scene", ""},
		{http.MethodGet, "/sessions/" + id + "/transform", ""},
		{http.MethodGet, "/sessions/" + id + "/stations/near?x=0&y=0", ""},
		{http.MethodPut, "/sessions/" + id + "/itinerary", `{"route":[]}`},
		{http.MethodDelete, "/sessions/" + id + "/itinerary", ""},
		{http.MethodPost, "/sessions/" + id + "/journey", `{"from":"A","to":"D"}`},
		{http.MethodPost, "/sessions/" + id + "/events", `{"kind":"reset"}`},
	} {
		rec := s.do(t, c.method, c.path, c.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", c.method, c.path)
	}
}
