// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/history/memory"
)

func newTestServer(t *testing.T) (*climateServer, *httptest.Server) {
	t.Helper()
	srv := newClimateServer(memory.NewRepository(), true, zerolog.Nop())
	ts := httptest.NewServer(srv.routes(nil))
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestLatestBeforeFirstSample(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/climate")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestLatestAfterSample(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.handleSample(sampleAt(23.4, 55.5, time.Now()))

	resp, err := http.Get(ts.URL + "/api/climate")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got climate.Sample
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.TempC != 23.4 || got.Humidity != 55.5 {
		t.Errorf("got %+v", got)
	}
}

func TestHistory(t *testing.T) {
	srv, ts := newTestServer(t)
	now := time.Now()
	srv.handleSample(sampleAt(20, 50, now.Add(-2*time.Hour)))
	srv.handleSample(sampleAt(21, 51, now.Add(-30*time.Minute)))
	srv.handleSample(sampleAt(22, 52, now.Add(-time.Minute)))

	tests := []struct {
		query      string
		wantStatus int
		wantCount  int
	}{
		{"", http.StatusOK, 2},
		{"?minutes=5", http.StatusOK, 1},
		{"?minutes=180", http.StatusOK, 3},
		{"?minutes=0", http.StatusBadRequest, 0},
		{"?minutes=abc", http.StatusBadRequest, 0},
		{"?minutes=99999999", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/history" + tt.query)
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got []climate.Sample
			if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("got %d samples, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestHistoryEmptyIsArray(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/history")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if string(raw) != "[]" {
		t.Errorf("body = %s, want []", raw)
	}
}

func TestServerDoesNotRecordSharedHistory(t *testing.T) {
	repo := memory.NewRepository()
	srv := newClimateServer(repo, false, zerolog.Nop())
	srv.handleSample(sampleAt(20, 50, time.Now()))

	if _, err := repo.Latest(context.Background()); err == nil {
		t.Error("server wrote to a history it does not own")
	}
}

func dialLive(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSample(t *testing.T, conn *websocket.Conn) climate.Sample {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var s climate.Sample
	if err := conn.ReadJSON(&s); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	return s
}

func TestLiveStream(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.handleSample(sampleAt(20, 50, time.Now()))

	conn := dialLive(t, ts)

	// the current sample arrives first
	if s := readSample(t, conn); s.TempC != 20 {
		t.Errorf("initial sample = %+v", s)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.count() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	srv.handleSample(sampleAt(21, 51, time.Now()))

	if s := readSample(t, conn); s.TempC != 21 {
		t.Errorf("pushed sample = %+v", s)
	}
}

func TestLiveClientRemovedOnClose(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dialLive(t, ts)

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.count() != 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	for srv.hub.count() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if n := srv.hub.count(); n != 0 {
		t.Errorf("%d clients still registered", n)
	}
}
