package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ozziework/internal/domain/auth"
)

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	userCtx := withTestUser(httptest.NewRequest(http.MethodGet, "/", nil).Context(), auth.UserContext{UserID: "user-1", Role: auth.RoleEmployer})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/applications/a1/payslip", nil).WithContext(userCtx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/applications/a1/payslip", nil).WithContext(userCtx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", secondRec.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	first.Header.Set("Content-Type", "application/json")
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"b@example.com"}`))
	second.Header.Set("Content-Type", "application/json")
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request from same IP to be throttled, got %d", secondRec.Code)
	}
}

func TestSensitiveScopeThrottlesSettlement(t *testing.T) {
	limited := SensitiveMutationRateLimit(2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	userCtx := withTestUser(httptest.NewRequest(http.MethodGet, "/", nil).Context(), auth.UserContext{UserID: "emp-1", Role: auth.RoleEmployer})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/applications/a1/payslip", nil).WithContext(userCtx)
		req.RemoteAddr = "198.51.100.20:1000"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if i == 0 && rec.Code != http.StatusNoContent {
			t.Fatalf("expected first settlement to pass, got %d", rec.Code)
		}
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected second settlement to be throttled, got %d", rec.Code)
		}
	}

	read := httptest.NewRequest(http.MethodGet, "/api/v1/applications/a1/payslip", nil).WithContext(userCtx)
	read.RemoteAddr = "198.51.100.20:1000"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, read)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected read to bypass sensitive scope, got %d", rec.Code)
	}
}

func TestSensitiveScopeClassification(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   sensitiveScope
	}{
		{http.MethodPost, "/api/v1/auth/login", sensitiveScopeAuth},
		{http.MethodPost, "/api/v1/auth/register", sensitiveScopeAuth},
		{http.MethodPost, "/api/v1/applications/a1/payslip", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/applications/a1/payslip/confirm", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/applications/a1/timesheet/approve", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/admin/payslips/overdue-sweep", sensitiveScopeActor},
		{http.MethodGet, "/api/v1/applications/a1/payslip", sensitiveScopeNone},
		{http.MethodPut, "/api/v1/applications/a1/timesheet", sensitiveScopeNone},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if got := sensitiveRateScope(req); got != tc.want {
			t.Fatalf("%s %s: expected scope %q, got %q", tc.method, tc.path, tc.want, got)
		}
	}
}
