package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"elite-gym/internal/catalog"
	"elite-gym/internal/funnel"
	"elite-gym/internal/leads"
	"elite-gym/internal/models"
	"elite-gym/internal/registration"
	"elite-gym/internal/ws"
	"elite-gym/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queuedTimer struct {
	f       func()
	stopped bool
}

func (t *queuedTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// queueScheduler holds timers until drain runs them in order.
type queueScheduler struct {
	mu     sync.Mutex
	timers []*queuedTimer
}

func (s *queueScheduler) AfterFunc(_ time.Duration, f func()) funnel.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &queuedTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *queueScheduler) drain() {
	for {
		s.mu.Lock()
		if len(s.timers) == 0 {
			s.mu.Unlock()
			return
		}
		t := s.timers[0]
		s.timers = s.timers[1:]
		s.mu.Unlock()
		if !t.stopped {
			t.f()
		}
	}
}

type captureDispatcher struct {
	mu   sync.Mutex
	envs []leads.Envelope
}

func (d *captureDispatcher) Dispatch(_ context.Context, env leads.Envelope) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.envs = append(d.envs, env)
}

type testServer struct {
	router     *gin.Engine
	sched      *queueScheduler
	dispatcher *captureDispatcher
}

var fixedNow = time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logging.New("error")
	sched := &queueScheduler{}
	disp := &captureDispatcher{}
	hub := ws.NewHub(nil, logger)
	cat := catalog.Default()

	sessions := funnel.NewRegistry(100, time.Minute, funnel.Options{
		Destination: "573116248414",
		Scheduler:   sched,
		Dispatcher:  disp,
	})
	flows := registration.NewRegistry(100, time.Minute, cat, registration.Options{
		Destination: "573116248414",
		Dispatcher:  disp,
		Now:         func() time.Time { return fixedNow },
	}, nil)

	router := NewRouter(Handlers{
		Funnel:       NewFunnelHandler(sessions, hub),
		Plans:        NewPlanHandler(cat),
		Registration: NewRegistrationHandler(flows),
	}, RouterOptions{Gatherer: prometheus.NewRegistry(), Logger: logger})

	return &testServer{router: router, sched: sched, dispatcher: disp}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetPlans(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[struct {
		Plans    []PlanView `json:"plans"`
		Featured string     `json:"featured"`
	}](t, w)
	require.Len(t, resp.Plans, 4)
	assert.Equal(t, "mes", resp.Featured)
	assert.Equal(t, "mes", resp.Plans[0].ID)
	assert.Equal(t, "$\u00a082.000", resp.Plans[0].PriceFormatted)
	assert.Equal(t, "$\u00a082.000/mes", resp.Plans[0].PriceLabel)
}

func TestChatFunnelOverHTTP(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/chat/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	snap := decode[funnel.Snapshot](t, w)
	assert.True(t, snap.Composing)
	base := "/api/chat/sessions/" + snap.ID

	w = s.do(t, http.MethodPost, base+"/messages", SubmitTextRequest{Text: "Ana"})
	assert.Equal(t, http.StatusConflict, w.Code)

	s.sched.drain()
	snap = decode[funnel.Snapshot](t, s.do(t, http.MethodGet, base, nil))
	assert.Equal(t, funnel.StateCollectingName, snap.State)
	require.NotNil(t, snap.Input)

	w = s.do(t, http.MethodPost, base+"/messages", SubmitTextRequest{Text: "   "})
	require.Equal(t, http.StatusOK, w.Code)
	step := decode[StepResponse](t, w)
	assert.False(t, step.Accepted)
	assert.Equal(t, funnel.StateCollectingName, step.Session.State)

	w = s.do(t, http.MethodPost, base+"/messages", SubmitTextRequest{Text: "Ana María"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[StepResponse](t, w).Accepted)
	s.sched.drain()

	w = s.do(t, http.MethodPost, base+"/messages", SubmitTextRequest{Text: "3001234567"})
	require.Equal(t, http.StatusOK, w.Code)
	s.sched.drain()

	w = s.do(t, http.MethodPost, base+"/interest", SelectInterestRequest{Option: "Yoga"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, base+"/interest", SelectInterestRequest{Option: funnel.InterestGroupClasses})
	require.Equal(t, http.StatusOK, w.Code)
	s.sched.drain()

	snap = decode[funnel.Snapshot](t, s.do(t, http.MethodGet, base, nil))
	assert.Equal(t, funnel.StateComplete, snap.State)
	assert.True(t, strings.HasPrefix(snap.HandoffURL, "https://wa.me/573116248414?text="))
	require.Len(t, s.dispatcher.envs, 1)
	assert.Equal(t, models.DispatchKindLead, s.dispatcher.envs[0].Kind)
	assert.Contains(t, s.dispatcher.envs[0].Text, "Ana María")

	w = s.do(t, http.MethodPost, base+"/resend", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.dispatcher.envs, 2)

	w = s.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistrationOverHTTP(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/registration", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	view := decode[registration.View](t, w)
	assert.Equal(t, registration.StepSelecting, view.Step)
	assert.Equal(t, "mes", view.SelectedID)
	base := "/api/registration/" + view.ID

	w = s.do(t, http.MethodPost, base+"/plan", SelectPlanRequest{PlanID: "anual"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, base+"/plan", SelectPlanRequest{PlanID: "semana"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "semana", decode[registration.View](t, w).SelectedID)

	w = s.do(t, http.MethodPost, base+"/continue", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[registration.View](t, w)
	require.NotNil(t, view.Plan)
	assert.Equal(t, 25000, view.Plan.Price)

	w = s.do(t, http.MethodPatch, base+"/form", map[string]string{"birth_date": "2006-10-18", "first_name": "Laura"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20 años", decode[registration.View](t, w).Age)

	w = s.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "last_name")
	assert.Empty(t, s.dispatcher.envs)

	w = s.do(t, http.MethodPatch, base+"/form", map[string]string{
		"last_name":   "Gómez",
		"email":       "laura@example.com",
		"phone":       "3001234567",
		"national_id": "1020304050",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[registration.View](t, w)
	assert.Equal(t, registration.StepClosed, view.Step)
	assert.NotEmpty(t, view.HandoffURL)

	require.Len(t, s.dispatcher.envs, 1)
	assert.Equal(t, models.DispatchKindRegistration, s.dispatcher.envs[0].Kind)
	assert.Contains(t, s.dispatcher.envs[0].Text, "$\u00a025.000/semana")

	w = s.do(t, http.MethodPost, base+"/back", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/chat/sessions/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/registration/nope/continue", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/ws/chat/nope", nil).Code)
}
