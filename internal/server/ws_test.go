package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"kanbanflow/internal/model"
)

func TestWS_PushesSnapshots(t *testing.T) {
	t.Parallel()

	s, eng := newTestServer(t, &fakeAssistant{})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer resp.Body.Close()
	defer conn.Close()

	next := func() model.Board {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		var b model.Board
		if err := conn.ReadJSON(&b); err != nil {
			t.Fatalf("read snapshot: %v", err)
		}
		return b
	}

	if b := next(); len(b.Lists["l1"].CardIDs) != 2 {
		t.Fatalf("initial snapshot: %v", b.Lists["l1"].CardIDs)
	}
	if _, err := eng.MoveCard("c1", "l1", 0, "l4", 0); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	b := next()
	if got := b.Lists["l4"].CardIDs; len(got) != 2 || got[0] != "c1" {
		t.Fatalf("after move: %v", got)
	}
}

func TestWS_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeAssistant{})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	if err == nil {
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403; got %v", resp)
	}
}

func TestRequireToken(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, &fakeAssistant{})
	s = New(s.eng, s.ai, nil, nil, WithToken(" sekret "))
	h := s.Handler()

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "health is open", path: "/api/health", want: http.StatusOK},
		{name: "missing token", path: "/api/board", want: http.StatusUnauthorized},
		{name: "wrong token", path: "/api/board", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "bearer", path: "/api/board", header: "Bearer sekret", want: http.StatusOK},
		{name: "query", path: "/api/cards/c1?token=sekret", want: http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}
