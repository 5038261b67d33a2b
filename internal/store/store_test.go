package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jusunglee/railmap-go/internal/feed"
	"github.com/jusunglee/railmap-go/internal/models"
	"github.com/jusunglee/railmap-go/internal/network"
	"github.com/jusunglee/railmap-go/internal/viewer"
)

func newViewer() *viewer.Viewer {
	return viewer.New(network.CreateTestNetwork())
}

func routeAtoD() models.RouteResult {
	return models.RouteResult{
		Time:  "6 min",
		Route: []string{"🚆 Take Local Train - Red\n   From: A → To: D"},
	}
}

func TestStore(t *testing.T) {
	s := NewStore()

	first := s.Create(newViewer())
	second := s.Create(newViewer())

	t.Run("Create", func(t *testing.T) {
		if first.ID == "" || first.ID == second.ID {
			t.Errorf("Expected distinct IDs, got %q and %q", first.ID, second.ID)
		}
		if s.Count() != 2 {
			t.Errorf("Expected 2 sessions, got %d", s.Count())
		}
		if s.GetLastUpdate().IsZero() {
			t.Error("Expected last update to be set")
		}
	})

	t.Run("Get", func(t *testing.T) {
		sess, err := s.Get(first.ID)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if sess.Viewer != first.Viewer {
			t.Error("Expected the registered viewer")
		}

		_, err = s.Get("missing")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		sessions := s.List()
		if len(sessions) != 2 {
			t.Fatalf("Expected 2 sessions, got %d", len(sessions))
		}
		if sessions[0].CreatedAt.After(sessions[1].CreatedAt) {
			t.Error("Expected sessions oldest first")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := s.Delete(second.ID); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if err := s.Delete(second.ID); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
		}
		if s.Count() != 1 {
			t.Errorf("Expected 1 session, got %d", s.Count())
		}

		// A deleted viewer no longer follows its topic
		second.Viewer.Topic().Publish(feed.CreateMockRouteResult())
		if len(second.Viewer.Path()) != 0 {
			t.Error("Expected deleted viewer to be detached")
		}
	})
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewStore()
	n := network.CreateTestNetwork()

	a := s.Create(viewer.New(n))
	b := s.Create(viewer.New(n))

	a.Viewer.Publish(feed.CreateMockRouteResult())
	a.Viewer.Clear()
	a.Viewer.Publish(routeAtoD())

	if got := len(a.Viewer.Path()); got != 4 {
		t.Errorf("Expected 4 stations in session a, got %d", got)
	}
	if got := len(b.Viewer.Path()); got != 0 {
		t.Errorf("Expected session b untouched, got %d stations", got)
	}
}

func TestExpire(t *testing.T) {
	s := NewStore()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	idle := s.Create(newViewer())
	clock = clock.Add(10 * time.Minute)
	active := s.Create(newViewer())

	clock = clock.Add(10 * time.Minute)
	if _, err := s.Get(active.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if n := s.Expire(15 * time.Minute); n != 1 {
		t.Errorf("Expected 1 expired session, got %d", n)
	}
	if _, err := s.Get(idle.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected idle session to be gone, got %v", err)
	}
	if _, err := s.Get(active.ID); err != nil {
		t.Errorf("Expected active session to survive, got %v", err)
	}
}

func TestJanitor(t *testing.T) {
	s := NewStore()
	s.Create(newViewer())

	s.StartJanitor(10*time.Millisecond, 0)
	s.StartJanitor(10*time.Millisecond, 0)

	deadline := time.Now().Add(2 * time.Second)
	for s.Count() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	s.Stop()

	if s.Count() != 0 {
		t.Errorf("Expected janitor to expire all sessions, %d left", s.Count())
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := s.Create(newViewer())
			if _, err := s.Get(sess.ID); err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			_ = s.List()
			if err := s.Delete(sess.ID); err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if s.Count() != 0 {
		t.Errorf("Expected empty store, got %d sessions", s.Count())
	}
}
