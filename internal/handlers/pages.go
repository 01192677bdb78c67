package handlers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	log "github.com/sirupsen/logrus"

	"flowfit-backend/internal/models"
	"flowfit-backend/internal/services"
	"flowfit-backend/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageHandler renders the four views server-side from session state. Every
// POST redirects back to the session page so a refresh never resubmits.
type PageHandler struct {
	workout *services.WorkoutService
	pages   map[models.Page]*template.Template
}

type pageView struct {
	State          *models.SessionState
	Page           models.Page
	Pages          []models.Page
	Exercises      []models.ExerciseProgress
	Summary        models.WorkoutSummary
	Conditions     []string
	QuickQuestions []string
	Notice         string
}

func NewPageHandler(workout *services.WorkoutService) (*PageHandler, error) {
	funcs := template.FuncMap{
		"percent": func(f float64) int { return int(f*100 + 0.5) },
	}

	pages := make(map[models.Page]*template.Template, len(models.Pages))
	for _, p := range models.Pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			fmt.Sprintf("templates/%s.html", p),
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", p, err)
		}
		pages[p] = t
	}

	return &PageHandler{workout: workout, pages: pages}, nil
}

// Start opens a fresh session with default state.
func (h *PageHandler) Start(w http.ResponseWriter, r *http.Request) {
	st, err := h.workout.Create(r.Context())
	if err != nil {
		log.WithError(err).Error("could not create session")
		http.Error(w, "세션을 만들 수 없습니다. 잠시 후 다시 시도해주세요.", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, sessionPath(st.ID), http.StatusSeeOther)
}

func (h *PageHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	st, err := h.workout.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, st, http.StatusOK, "")
}

// RateLimited re-renders the current page with a notice instead of running
// the AI-backed form action.
func (h *PageHandler) RateLimited(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	st, err := h.workout.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, st, http.StatusTooManyRequests, rateLimitedNotice)
}

func (h *PageHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id string) error {
		page, err := models.ParsePage(r.PostFormValue("page"))
		if err != nil {
			// Ignore bogus navigation and just re-render.
			return nil
		}
		_, err = h.workout.Navigate(r.Context(), id, page)
		return err
	})
}

func (h *PageHandler) GenerateRoutine(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id string) error {
		_, err := h.workout.GenerateRoutine(r.Context(), id, r.PostFormValue("condition"), r.PostFormValue("target"))
		return err
	})
}

func (h *PageHandler) CompleteSet(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id string) error {
		_, _, err := h.workout.CompleteSet(r.Context(), id, r.PostFormValue("exercise"))
		if errors.Is(err, session.ErrUnknownExercise) {
			// A stale form from before a regeneration.
			return nil
		}
		return err
	})
}

func (h *PageHandler) ResetTracking(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id string) error {
		_, err := h.workout.ResetTracking(r.Context(), id)
		return err
	})
}

func (h *PageHandler) Chat(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(id string) error {
		_, _, err := h.workout.SendMessage(r.Context(), id, r.PostFormValue("message"))
		if errors.Is(err, services.ErrEmptyMessage) {
			return nil
		}
		return err
	})
}

func (h *PageHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(id string) error) {
	id, ok := sessionID(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "잘못된 요청입니다.", http.StatusBadRequest)
		return
	}
	if err := fn(id); err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, sessionPath(id), http.StatusSeeOther)
}

const rateLimitedNotice = "요청이 너무 많아요. 잠시 후 다시 시도해주세요."

// render dispatches on the session's current page.
func (h *PageHandler) render(w http.ResponseWriter, st *models.SessionState, status int, notice string) {
	t, ok := h.pages[st.Page]
	if !ok {
		t = h.pages[models.PageHome]
	}

	view := pageView{
		State:          st,
		Page:           st.Page,
		Pages:          models.Pages,
		Exercises:      session.Exercises(st),
		Summary:        session.Summarize(st),
		Conditions:     models.Conditions,
		QuickQuestions: models.QuickQuestions,
		Notice:         notice,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.Execute(w, view); err != nil {
		log.WithError(err).WithField("page", st.Page).Error("template execution failed")
	}
}

func (h *PageHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrNotFound) {
		// Expired or unknown: start over like a fresh page load.
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	log.WithError(err).WithField("path", r.URL.Path).Error("page request failed")
	http.Error(w, "일시적인 오류가 발생했습니다.", http.StatusInternalServerError)
}

func sessionPath(id string) string {
	return "/s/" + id
}
