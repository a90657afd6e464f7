package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bingo-battle/internal/config"
	"bingo-battle/internal/store"
	"bingo-battle/internal/testutil"

	"github.com/go-chi/chi/v5"
)

func memoryConfig(t *testing.T) config.ServerConfig {
	t.Helper()
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STATIC_DIR", "")
	cfg, err := config.LoadServer()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestNewAppRegistersRoutes(t *testing.T) {
	a, err := newApp(context.Background(), memoryConfig(t))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()

	want := map[string]bool{
		"GET /healthz":         false,
		"POST /create-room":    false,
		"GET /rooms/{room_id}": false,
		"GET /ws":              false,
		"POST /mcp":            false,
		"GET /debug/vars":      false,
	}
	err = chi.Walk(a.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if _, ok := want[method+" "+route]; ok {
			want[method+" "+route] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	for route, seen := range want {
		if !seen {
			t.Fatalf("route %s not registered", route)
		}
	}
}

func TestNewAppCreatesRooms(t *testing.T) {
	a, err := newApp(context.Background(), memoryConfig(t))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()
	ts := httptest.NewServer(a.router)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/create-room", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		RoomID string `json:"roomId"`
		Link   string `json:"link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Link != "http://localhost:8080/?room="+body.RoomID {
		t.Fatalf("unexpected link %q", body.Link)
	}
}

func TestNewAppWithPostgres(t *testing.T) {
	dsn, cleanup := testutil.OpenTestDSN(t)
	defer cleanup()
	st, err := store.New(dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	cfg := memoryConfig(t)
	cfg.StoreBackend = config.StoreBackendPostgres
	cfg.PostgresDSN = dsn

	a, err := newApp(context.Background(), cfg)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.Close()
	ts := httptest.NewServer(a.router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	created, err := a.rooms.Create(context.Background())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.GetRoom(context.Background(), created.RoomID); err != nil {
		t.Fatalf("room not stored in postgres: %v", err)
	}
}
