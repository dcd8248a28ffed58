package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/juststeveking/lodestone/internal/status"
	"github.com/juststeveking/lodestone/internal/store"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPage() Page {
	return Page{
		Name:           "ProxyCraft",
		Host:           "mc.example.org",
		Port:           25565,
		PollInterval:   10 * time.Second,
		CopiedDuration: 2 * time.Second,
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleIndex_Loading(t *testing.T) {
	st := store.New("mc.example.org")
	srv := NewServer(st, testPage(), ":0", testLogger())

	rec := get(t, srv.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{"ProxyCraft", "mc.example.org", "Loading server status", `class="card loading"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestHandleIndex_Online(t *testing.T) {
	st := store.New("mc.example.org")
	st.Apply(1, status.Success(status.ServerStatus{
		Online:  true,
		Players: status.Players{Online: 42, Max: 100},
		Version: "1.20.1",
		MOTD:    "Welcome <b>friends</b>",
	}))
	srv := NewServer(st, testPage(), ":0", testLogger())

	body := get(t, srv.Handler(), "/").Body.String()

	for _, want := range []string{`class="card online"`, "1.20.1", "Players 42 / 100 (42%)", "width: 42.0%", "Welcome &lt;b&gt;friends&lt;/b&gt;"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
	if strings.Contains(body, "<b>friends</b>") {
		t.Error("expected MOTD to be HTML escaped")
	}
}

func TestHandleIndex_OverCapacityNotClamped(t *testing.T) {
	st := store.New("mc.example.org")
	st.Apply(1, status.Success(status.ServerStatus{
		Online:  true,
		Players: status.Players{Online: 150, Max: 100},
	}))
	srv := NewServer(st, testPage(), ":0", testLogger())

	body := get(t, srv.Handler(), "/").Body.String()
	if !strings.Contains(body, "width: 150.0%") {
		t.Error("expected unclamped bar width")
	}
}

func TestHandleIndex_Offline(t *testing.T) {
	st := store.New("mc.example.org")
	st.Apply(1, status.Failure(status.KindHTTPStatus, &status.HTTPStatusError{Code: 502}))
	srv := NewServer(st, testPage(), ":0", testLogger())

	body := get(t, srv.Handler(), "/").Body.String()
	for _, want := range []string{`class="card offline"`, "Offline", "Unavailable", "width: 0.0%"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestHandleIndex_UnknownPath(t *testing.T) {
	srv := NewServer(store.New("h"), testPage(), ":0", testLogger())

	if rec := get(t, srv.Handler(), "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	st := store.New("mc.example.org")
	srv := NewServer(st, testPage(), ":0", testLogger())

	var resp statusResponse
	rec := get(t, srv.Handler(), "/api/status")
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if !resp.Loading || resp.UpdatedAt != nil {
		t.Errorf("expected loading snapshot, got %+v", resp)
	}

	st.Apply(1, status.Failure(status.KindTimeout, status.ErrTimeout))

	rec = get(t, srv.Handler(), "/api/status")
	resp = statusResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Loading {
		t.Error("expected loading to be false")
	}
	if resp.ErrorKind != status.KindTimeout {
		t.Errorf("expected timeout kind, got %q", resp.ErrorKind)
	}
	if resp.Status != status.Sentinel("mc.example.org") {
		t.Errorf("expected sentinel, got %+v", resp.Status)
	}
	if resp.UpdatedAt == nil {
		t.Error("expected updated_at to be set")
	}
}

func TestHandleStatus_MethodNotAllowed(t *testing.T) {
	srv := NewServer(store.New("h"), testPage(), ":0", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/status", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(store.New("h"), testPage(), ":0", testLogger())

	rec := get(t, srv.Handler(), "/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	// find a free port
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(store.New("h"), testPage(), addr, testLogger())
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	cancel()

	waited := make(chan struct{})
	go func() {
		srv.Wait()
		close(waited)
	}()

	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down after context cancel")
	}

	if _, err := http.Get("http://" + addr + "/healthz"); err == nil {
		t.Error("server still serving after shutdown")
	}
}

func TestServer_StartBindError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	srv := NewServer(store.New("h"), testPage(), ln.Addr().String(), testLogger())
	if err := srv.Start(context.Background()); err == nil {
		t.Error("expected bind error on a used port")
	}
}
