package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"flowfit-backend/internal/metrics"
	"flowfit-backend/internal/models"
	"flowfit-backend/internal/services"
	"flowfit-backend/internal/session"
)

const pushUpJSON = `[{"exercise":"Push-up","sets":"3","reps":"10-12","tip":"천천히 내려가세요"}]`

// fakeAI answers every call with canned values.
type fakeAI struct {
	mu           sync.Mutex
	jsonResponse string
	jsonErr      error
	chatResponse string
	chatErr      error
	chatCalls    int
}

func (f *fakeAI) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return f.jsonResponse, f.jsonErr
}

func (f *fakeAI) Chat(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	f.mu.Lock()
	f.chatCalls++
	f.mu.Unlock()
	return f.chatResponse, f.chatErr
}

type testEnv struct {
	workout *services.WorkoutService
	router  http.Handler
}

func newTestEnv(t *testing.T, ai *fakeAI) *testEnv {
	t.Helper()
	store := session.NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	m := metrics.NewTestManager()
	workout := services.NewWorkoutService(store, services.NewRoutineGenerator(ai, m), services.NewChatCoach(ai, m), m)

	pages, err := NewPageHandler(workout)
	require.NoError(t, err)
	api := NewSessionHandler(workout)

	r := chi.NewRouter()
	r.Get("/", pages.Start)
	r.Get("/s/{id}", pages.Show)
	r.Post("/s/{id}/page", pages.Navigate)
	r.Post("/s/{id}/routine", pages.GenerateRoutine)
	r.Post("/s/{id}/sets", pages.CompleteSet)
	r.Post("/s/{id}/reset", pages.ResetTracking)
	r.Post("/s/{id}/chat", pages.Chat)

	r.Get("/api/v1/catalog", api.Catalog)
	r.Post("/api/v1/sessions", api.Create)
	r.Get("/api/v1/sessions/{id}", api.Get)
	r.Delete("/api/v1/sessions/{id}", api.Delete)
	r.Put("/api/v1/sessions/{id}/page", api.Navigate)
	r.Post("/api/v1/sessions/{id}/routine", api.GenerateRoutine)
	r.Post("/api/v1/sessions/{id}/sets", api.CompleteSet)
	r.Post("/api/v1/sessions/{id}/reset", api.ResetTracking)
	r.Post("/api/v1/sessions/{id}/chat", api.Chat)

	return &testEnv{workout: workout, router: r}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) doJSON(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return e.do(t, method, path, r, "application/json")
}

func (e *testEnv) postForm(t *testing.T, path string, form map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	values := make([]string, 0, len(form))
	for k, v := range form {
		values = append(values, k+"="+url.QueryEscape(v))
	}
	return e.do(t, http.MethodPost, path, strings.NewReader(strings.Join(values, "&")), "application/x-www-form-urlencoded")
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
