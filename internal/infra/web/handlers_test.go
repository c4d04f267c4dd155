//go:build !integration

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"account-activation/internal/domain"
	"account-activation/internal/domain/model"
)

type testServer struct {
	flow    *mockFlowUC
	captcha *mockVerifier
	flash   *Flasher
	handler http.Handler
}

func newTestServer(info model.SentPageInfo) *testServer {
	ts := &testServer{
		flow:    &mockFlowUC{CompleteOK: map[string]bool{}},
		captcha: &mockVerifier{Accept: "human"},
		flash:   NewFlasher("test-secret", "", false, time.Hour),
	}
	srv := NewServer(ts.flow, mockSettingsUC{info: info}, ts.flash, ts.captcha, "https://app.example.org", time.Second, newTestLogger())
	ts.handler = srv.Routes()
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

type envelopeResponse struct {
	Status        string               `json:"status"`
	Data          json.RawMessage      `json:"data"`
	Notifications []model.Notification `json:"notifications"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeResponse {
	t.Helper()
	var env envelopeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func repeatRequestWith(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/activation/repeat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandleSent(t *testing.T) {
	key := "site-key"
	ts := newTestServer(model.SentPageInfo{AccessModeAny: true, CaptchaKey: &key})

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/activation/sent", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Status != "success" {
		t.Errorf("expected success, got %q", env.Status)
	}
	var info model.SentPageInfo
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatalf("bad data: %v", err)
	}
	if !info.AccessModeAny || info.AccessModeAuth || info.CaptchaKey == nil || *info.CaptchaKey != key {
		t.Errorf("unexpected sent page info %+v", info)
	}
	if !strings.Contains(string(env.Data), `"captchaKey":"site-key"`) {
		t.Errorf("expected camelCase keys, got %s", env.Data)
	}
}

func TestHandleRepeat(t *testing.T) {
	t.Run("success with captcha in body", func(t *testing.T) {
		ts := newTestServer(model.SentPageInfo{})
		rec := ts.do(repeatRequestWith(`{"email":"a@example.org","captcha":"human"}`))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
		}
		env := decodeEnvelope(t, rec)
		if env.Status != "success" || len(env.Notifications) != 1 || env.Notifications[0].Type != model.NotificationSuccess {
			t.Errorf("unexpected envelope %+v", env)
		}
		if len(ts.flow.RepeatCalls) != 1 || ts.flow.RepeatCalls[0] != "a@example.org" {
			t.Errorf("unexpected Repeat calls %v", ts.flow.RepeatCalls)
		}
	})

	t.Run("captcha from header", func(t *testing.T) {
		ts := newTestServer(model.SentPageInfo{})
		req := repeatRequestWith(`{"email":"a@example.org"}`)
		req.Header.Set("X-Captcha-Token", "human")
		req.Header.Set("X-Real-IP", "203.0.113.9")

		rec := ts.do(req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ts.captcha.RemoteIPs[0] != "203.0.113.9" {
			t.Errorf("expected client ip to be forwarded, got %q", ts.captcha.RemoteIPs[0])
		}
	})

	t.Run("captcha rejected", func(t *testing.T) {
		ts := newTestServer(model.SentPageInfo{})
		rec := ts.do(repeatRequestWith(`{"email":"a@example.org","captcha":"bot"}`))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Status != "captcha_failed" {
			t.Errorf("expected captcha_failed, got %q", env.Status)
		}
		if len(ts.flow.RepeatCalls) != 0 {
			t.Error("Repeat must not run when captcha fails")
		}
	})

	t.Run("captcha verifier error", func(t *testing.T) {
		ts := newTestServer(model.SentPageInfo{})
		ts.captcha.Err = errors.New("upstream down")
		rec := ts.do(repeatRequestWith(`{"email":"a@example.org","captcha":"human"}`))
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		ts := newTestServer(model.SentPageInfo{})
		req := repeatRequestWith(`{not json`)
		req.Header.Set("X-Captcha-Token", "human")
		rec := ts.do(req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	cases := []struct {
		err    error
		code   int
		status string
	}{
		{domain.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
		{domain.ErrAlreadyActivated, http.StatusConflict, "already_activated"},
		{domain.ErrInvalidArgument, http.StatusUnprocessableEntity, "invalid_argument"},
		{domain.ErrTooManyRequests, http.StatusTooManyRequests, "too_many_requests"},
		{domain.ErrActivationInProgress, http.StatusConflict, "in_progress"},
		{fmt.Errorf("send activation mail: %w", errors.New("smtp")), http.StatusInternalServerError, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			ts := newTestServer(model.SentPageInfo{})
			ts.flow.RepeatFunc = func(ctx context.Context, email string) (*model.Activation, error) {
				return nil, tc.err
			}
			rec := ts.do(repeatRequestWith(`{"email":"a@example.org","captcha":"human"}`))
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if env.Status != tc.status {
				t.Errorf("expected status %q, got %q", tc.status, env.Status)
			}
			if len(env.Notifications) != 1 {
				t.Errorf("expected one notification, got %v", env.Notifications)
			}
		})
	}
}

func TestHandleComplete(t *testing.T) {
	t.Run("valid code flashes success", func(t *testing.T) {
		ts := newTestServer(model.SentPageInfo{})
		ts.flow.CompleteOK["GOOD"] = true

		rec := ts.do(httptest.NewRequest(http.MethodGet, "/activation/complete/GOOD", nil))
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "https://app.example.org" {
			t.Errorf("unexpected redirect %q", loc)
		}
		n := popFromRecorder(t, ts.flash, rec)
		if n.Type != model.NotificationSuccess {
			t.Errorf("expected success notification, got %+v", n)
		}
	})

	t.Run("invalid code flashes danger", func(t *testing.T) {
		ts := newTestServer(model.SentPageInfo{})
		rec := ts.do(httptest.NewRequest(http.MethodGet, "/activation/complete/BAD", nil))
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("expected 303, got %d", rec.Code)
		}
		if n := popFromRecorder(t, ts.flash, rec); n.Type != model.NotificationDanger {
			t.Errorf("expected danger notification, got %+v", n)
		}
		if len(ts.flow.Completed) != 1 || ts.flow.Completed[0] != "BAD" {
			t.Errorf("unexpected Complete calls %v", ts.flow.Completed)
		}
	})
}

func TestHandleFlash(t *testing.T) {
	ts := newTestServer(model.SentPageInfo{})

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/flash", nil))
	if env := decodeEnvelope(t, rec); env.Status != "success" || len(env.Data) != 0 {
		t.Errorf("expected empty flash, got %+v", env)
	}

	set := httptest.NewRecorder()
	if err := ts.flash.Set(set, model.Info("hello")); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/flash", nil)
	for _, c := range set.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = ts.do(req)
	env := decodeEnvelope(t, rec)
	var n model.Notification
	if err := json.Unmarshal(env.Data, &n); err != nil {
		t.Fatalf("bad data: %v", err)
	}
	if n.Type != model.NotificationInfo || n.Message != "hello" {
		t.Errorf("unexpected notification %+v", n)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(model.SentPageInfo{})

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func popFromRecorder(t *testing.T, f *Flasher, rec *httptest.ResponseRecorder) model.Notification {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	n, ok := f.Pop(httptest.NewRecorder(), req)
	if !ok {
		t.Fatal("expected a flash notification")
	}
	return n
}
