package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_NoCheckers(t *testing.T) {
	h := NewHandler("1.2.3")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", resp.Status)
	}
	if resp.Version != "1.2.3" {
		t.Fatalf("unexpected version: %s", resp.Version)
	}
}

func TestHandler_UnhealthyChecker(t *testing.T) {
	h := NewHandler("dev")
	h.RegisterChecker("external-api", NewSimpleChecker("external-api", func() error {
		return errors.New("connection refused")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", resp.Status)
	}
	check, ok := resp.Checks["external-api"]
	if !ok {
		t.Fatal("expected external-api check in response")
	}
	if check.Message != "connection refused" {
		t.Fatalf("unexpected message: %s", check.Message)
	}
}

func TestSimpleChecker_Healthy(t *testing.T) {
	checker := NewSimpleChecker("ok", func() error { return nil })

	check := checker.Check()
	if check.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", check.Status)
	}
	if check.Name != "ok" {
		t.Fatalf("unexpected name: %s", check.Name)
	}
}
