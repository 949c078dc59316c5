package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/danmuck/padctl/internal/padctl"
	"github.com/danmuck/padctl/internal/testutil/fakerunner"
	"github.com/danmuck/padctl/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

func newTestBridge(t *testing.T, runner *fakerunner.Runner, opts Options) *Bridge {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b, err := New(padctl.NewClient(runner, "vpad"), opts)
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	return b
}

func do(t *testing.T, b *Bridge, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	b.HTTPRouter().ServeHTTP(rr, req)

	var decoded map[string]any
	if rr.Body.Len() > 0 && strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s: %v body=%s", method, path, err, rr.Body.String())
		}
	}
	return rr, decoded
}

func TestBridgeOperationRoutes(t *testing.T) {
	testlog.Start(t)

	steps := []struct {
		method string
		path   string
		body   string
		args   []string
	}{
		{method: http.MethodPost, path: "/server/start", args: []string{"server", "start"}},
		{method: http.MethodPost, path: "/server/stop", args: []string{"server", "stop"}},
		{method: http.MethodGet, path: "/server/check", args: []string{"server", "check"}},
		{method: http.MethodGet, path: "/pads/status", args: []string{"pad", "status"}},
		{method: http.MethodPost, path: "/pads/5/clear", args: []string{"pad", "clear", "5"}},
		{method: http.MethodPost, path: "/pads/all/clear", args: []string{"pad", "clear-all"}},
		{method: http.MethodPost, path: "/pads/reset-passwords", body: `{"pads":[3,1,99,2]}`, args: []string{"pad", "reset-passwords", "3", "1", "2"}},
		{method: http.MethodPost, path: "/pads/reset-passwords", body: `{"pads":"all"}`, args: []string{"pad", "reset-passwords", "0", "1", "2", "3", "4", "5", "6", "7"}},
	}

	for _, step := range steps {
		t.Run(step.method+" "+step.path, func(t *testing.T) {
			runner := fakerunner.Completed(`{"type":"response","code":"server:running"}`, "", 0)
			b := newTestBridge(t, runner, Options{})

			rr, body := do(t, b, step.method, step.path, step.body, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
			}
			if body["code"] != float64(0) {
				t.Fatalf("unexpected result code: %#v", body["code"])
			}
			if _, ok := body["details"]; !ok {
				t.Fatalf("expected details in %#v", body)
			}
			call, ok := runner.Last()
			if !ok || !slices.Equal(call.Args, step.args) {
				t.Fatalf("unexpected invocation: %+v", runner.Calls())
			}
		})
	}
}

func TestBridgeInvalidPadAndNoOpReset(t *testing.T) {
	testlog.Start(t)

	runner := fakerunner.Completed("{}", "", 0)
	b := newTestBridge(t, runner, Options{})

	rr, body := do(t, b, http.MethodPost, "/pads/x/clear", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	details, _ := body["details"].(map[string]any)
	if body["code"] != float64(1) || details["hint"] != padctl.HintInvalidIndex || details["index"] != "x" {
		t.Fatalf("unexpected invalid-index body: %#v", body)
	}
	if _, hasDump := details["dump"]; hasDump {
		t.Fatalf("invalid-index envelope must not carry dump: %#v", details)
	}

	for _, payload := range []string{"", `{}`, `{"pads":[9,10]}`} {
		rr, body = do(t, b, http.MethodPost, "/pads/reset-passwords", payload, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200 for %q, got %d", payload, rr.Code)
		}
		if body["code"] != float64(0) {
			t.Fatalf("unexpected code for %q: %#v", payload, body)
		}
		if _, ok := body["details"]; ok {
			t.Fatalf("no-op reset must omit details for %q: %#v", payload, body)
		}
	}

	if n := len(runner.Calls()); n != 0 {
		t.Fatalf("expected no admin invocations, got %d", n)
	}
}

func TestBridgeRejectsMalformedResetBody(t *testing.T) {
	testlog.Start(t)

	runner := fakerunner.Completed("{}", "", 0)
	b := newTestBridge(t, runner, Options{})
	rr, _ := do(t, b, http.MethodPost, "/pads/reset-passwords", `{"pads":`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestBridgeFailureStillAnswers200(t *testing.T) {
	testlog.Start(t)

	runner := fakerunner.Completed("", "boom", 2)
	b := newTestBridge(t, runner, Options{})
	rr, body := do(t, b, http.MethodGet, "/server/check", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	details, _ := body["details"].(map[string]any)
	if body["code"] != float64(2) || details["dump"] != "boom" || details["hint"] != padctl.HintUnknown {
		t.Fatalf("unexpected failure body: %#v", body)
	}
}

func TestBridgeAuthToken(t *testing.T) {
	testlog.Start(t)

	runner := fakerunner.Completed(`{"type":"response"}`, "", 0)
	b := newTestBridge(t, runner, Options{AuthToken: "s3cret"})

	rr, _ := do(t, b, http.MethodGet, "/pads/status", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	rr, _ = do(t, b, http.MethodGet, "/pads/status", "", map[string]string{"Authorization": "Bearer s3cret"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rr.Code)
	}
	rr, _ = do(t, b, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("health must stay open, got %d", rr.Code)
	}
	if n := len(runner.Calls()); n != 1 {
		t.Fatalf("expected one admin invocation, got %d", n)
	}
}

func TestBridgeRateLimit(t *testing.T) {
	testlog.Start(t)

	runner := fakerunner.Completed(`{"type":"response"}`, "", 0)
	b := newTestBridge(t, runner, Options{RateLimit: 0.001, RateBurst: 2})

	for i := 0; i < 2; i++ {
		rr, _ := do(t, b, http.MethodGet, "/server/check", "", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	rr, _ := do(t, b, http.MethodGet, "/server/check", "", nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if n := len(runner.Calls()); n != 2 {
		t.Fatalf("rate-limited request must not invoke admin tool, got %d calls", n)
	}
}

func TestBridgeHealthAndMetrics(t *testing.T) {
	testlog.Start(t)

	b := newTestBridge(t, fakerunner.Completed("{}", "", 0), Options{ID: "padctl-test"})

	rr, body := do(t, b, http.MethodGet, "/health", "", nil)
	if rr.Code != http.StatusOK || body["status"] != "ok" || body["service"] != "padctl-test" {
		t.Fatalf("unexpected health: %d %#v", rr.Code, body)
	}
	rr, body = do(t, b, http.MethodGet, "/ready", "", nil)
	if rr.Code != http.StatusOK || body["ready"] != true {
		t.Fatalf("unexpected ready: %d %#v", rr.Code, body)
	}
	rr, _ = do(t, b, http.MethodGet, "/metrics", "", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "padctl_http_requests_total") {
		t.Fatalf("expected prometheus metrics, got %d", rr.Code)
	}
}

func TestBridgeRejectsMalformedCorsOrigin(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)

	b, err := New(padctl.NewClient(fakerunner.Completed("{}", "", 0), "vpad"), Options{
		CorsOrigins: []string{"localhost:3000"},
	})
	if err == nil {
		t.Fatalf("expected cors origin error")
	}
	if b != nil {
		t.Fatalf("expected no bridge on error")
	}

	if _, err := New(padctl.NewClient(fakerunner.Completed("{}", "", 0), "vpad"), Options{
		CorsOrigins: []string{"http://localhost:5173", "https://pads.example"},
	}); err != nil {
		t.Fatalf("valid origins rejected: %v", err)
	}
}
