package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avlund/tend/internal/engine"
	"github.com/avlund/tend/internal/health"
	"github.com/avlund/tend/internal/store"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// testServer returns a server over an in-memory store with a pinned clock
// and a decay rate of 5/day for round numbers.
func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tn := health.DefaultTuning()
	tn.DecayPerDay = 5

	eng := engine.New(db, tn)
	eng.Now = func() time.Time { return baseTime }
	return New(db, eng, "test")
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v; body: %s", err, w.Body.String())
	}
	return resp
}

func createFriend(t *testing.T, srv *Server, body string) string {
	t.Helper()
	w := do(t, srv, "POST", "/api/friends", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create friend status = %d; body: %s", w.Code, w.Body.String())
	}
	return decode(t, w)["id"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decode(t, w)
	if resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if resp["db"] != true {
		t.Errorf("db = %v, want true", resp["db"])
	}
}
