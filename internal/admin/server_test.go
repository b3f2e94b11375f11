package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danmuck/stashctl/internal/host/sim"
	"github.com/danmuck/stashctl/internal/saveload"
	"github.com/danmuck/stashctl/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	host := sim.New(sim.Config{Root: t.TempDir(), Prefix: "backup", CommitBias: 1})
	m, err := saveload.New(host, saveload.DefaultConfig("admin"))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	host.OnCycleStart(m.OnCycleStart)
	return New("stash-admin", ":0", nil, m, host)
}

func do(t *testing.T, s *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	out := map[string]any{}
	if rr.Body.Len() > 0 && rr.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rr.Body.Bytes(), &out)
	}
	return rr, out
}

func TestHealthAndMetrics(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t)
	rr, body := do(t, s, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK || body["status"] != "ok" || body["service"] != "stash-admin" {
		t.Fatalf("unexpected health: code=%d body=%v", rr.Code, body)
	}
	rr, _ = do(t, s, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK || !bytes.Contains(rr.Body.Bytes(), []byte("stashctl_http_requests_total")) {
		t.Fatalf("metrics missing request counter: code=%d", rr.Code)
	}
}

func TestSaveLoadOverHTTP(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t)

	rr, body := do(t, s, http.MethodPost, "/save", map[string]string{"payload": "hello"})
	if rr.Code != http.StatusAccepted || body["state"] != "saving" {
		t.Fatalf("unexpected save response: code=%d body=%v", rr.Code, body)
	}
	rr, body = do(t, s, http.MethodPost, "/save", map[string]string{"payload": "again"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected conflict for concurrent save, got %d body=%v", rr.Code, body)
	}

	rr, body = do(t, s, http.MethodPost, "/cycle", nil)
	if rr.Code != http.StatusOK || body["advanced"] != true {
		t.Fatalf("unexpected cycle response: code=%d body=%v", rr.Code, body)
	}

	rr, body = do(t, s, http.MethodPost, "/cycle/run", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected run response: code=%d body=%v", rr.Code, body)
	}
	session := body["session"].(map[string]any)
	if session["state"] != "idle" || session["save_done"] != true {
		t.Fatalf("save should be finished: %v", session)
	}

	rr, _ = do(t, s, http.MethodGet, "/load/result", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any load, got %d", rr.Code)
	}

	rr, body = do(t, s, http.MethodPost, "/load", nil)
	if rr.Code != http.StatusAccepted || body["state"] != "loading" {
		t.Fatalf("unexpected load response: code=%d body=%v", rr.Code, body)
	}
	rr, body = do(t, s, http.MethodGet, "/load/result", nil)
	if rr.Code != http.StatusOK || body["ready"] != false {
		t.Fatalf("load should be pending: code=%d body=%v", rr.Code, body)
	}

	do(t, s, http.MethodPost, "/cycle/run?max=50", nil)
	rr, body = do(t, s, http.MethodGet, "/load/result", nil)
	if rr.Code != http.StatusOK || body["ready"] != true || body["payload"] != "hello" {
		t.Fatalf("unexpected load result: code=%d body=%v", rr.Code, body)
	}
}

func TestCycleRunRejectsBadLimit(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t)
	rr, _ := do(t, s, http.MethodPost, "/cycle/run?max=zero", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSaveRejectsMalformedBody(t *testing.T) {
	testlog.Start(t)
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/save", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
