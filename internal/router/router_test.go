package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-join-import/internal/importer"
)

type fakeStatus struct {
	status  importer.Status
	running bool
}

func (f fakeStatus) Status() importer.Status { return f.status }
func (f fakeStatus) Running() bool           { return f.running }

var secret = []byte("test-secret")

func newHandler(st fakeStatus, triggered *atomic.Int32) http.Handler {
	return RegisterRoutes(zap.NewNop().Sugar(), Options{
		Status:    st,
		Trigger:   func() { triggered.Add(1) },
		JWTSecret: secret,
	})
}

func signed(t *testing.T, method jwt.SigningMethod, key any) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestHealthAndStatus(t *testing.T) {
	var n atomic.Int32
	h := newHandler(fakeStatus{status: importer.Status{
		Runs:       3,
		RunID:      "run-1",
		FinishedAt: time.Date(2018, 7, 1, 12, 0, 0, 0, time.UTC),
		Last:       importer.Result{Imported: 5},
	}}, &n)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	body := rec.Body.String()
	if !strings.Contains(body, "Import runs: 3") || !strings.Contains(body, "imported: 5") {
		t.Errorf("status page = %q", body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	if !strings.Contains(rec.Body.String(), `"RunID":"run-1"`) {
		t.Errorf("status json = %q", rec.Body.String())
	}
}

func TestImportTrigger(t *testing.T) {
	cases := []struct {
		name    string
		auth    string
		running bool
		code    int
	}{
		{"no token", "", false, http.StatusUnauthorized},
		{"wrong key", "Bearer " + signed(t, jwt.SigningMethodHS256, []byte("other")), false, http.StatusUnauthorized},
		{"valid", "Bearer " + signed(t, jwt.SigningMethodHS256, secret), false, http.StatusAccepted},
		{"running", "bearer " + signed(t, jwt.SigningMethodHS256, secret), true, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n atomic.Int32
			h := newHandler(fakeStatus{running: tc.running}, &n)
			req := httptest.NewRequest(http.MethodPost, "/import", nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.code {
				t.Fatalf("code = %d, want %d", rec.Code, tc.code)
			}
			if tc.code == http.StatusAccepted {
				deadline := time.Now().Add(time.Second)
				for n.Load() == 0 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				if n.Load() != 1 {
					t.Error("import not triggered")
				}
			}
		})
	}
}

func TestImportTriggerDisabledWithoutSecret(t *testing.T) {
	h := RegisterRoutes(zap.NewNop().Sugar(), Options{Status: fakeStatus{}, Trigger: func() {}})
	req := httptest.NewRequest(http.MethodPost, "/import", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d", rec.Code)
	}
}
