package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"flowfit-backend/internal/metrics"
	"flowfit-backend/internal/models"
	"flowfit-backend/internal/session"
)

const maxInputRunes = 100

// WorkoutService runs each user interaction: it performs the AI round trip
// outside the store, then commits the resulting transition in one Update.
type WorkoutService struct {
	store    session.Store
	routines *RoutineGenerator
	coach    *ChatCoach
	metrics  *metrics.Manager
}

func NewWorkoutService(store session.Store, routines *RoutineGenerator, coach *ChatCoach, m *metrics.Manager) *WorkoutService {
	return &WorkoutService{
		store:    store,
		routines: routines,
		coach:    coach,
		metrics:  m,
	}
}

func (s *WorkoutService) Create(ctx context.Context) (*models.SessionState, error) {
	state, err := s.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.CounterSessions.Inc()
	}
	return state, nil
}

func (s *WorkoutService) Get(ctx context.Context, id string) (*models.SessionState, error) {
	return s.store.Get(ctx, id)
}

func (s *WorkoutService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// GenerateRoutine replaces the routine and moves to the workout page. A failed
// generation is not an error here: the session ends up with an empty routine
// and RoutineError set.
func (s *WorkoutService) GenerateRoutine(ctx context.Context, id, condition, target string) (*models.SessionState, error) {
	// Fail fast on unknown sessions before spending a Gemini call.
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}

	condition = normalizeInput(condition, models.DefaultCondition)
	target = normalizeInput(target, models.DefaultTargetMuscle)

	routine, genErr := s.routines.Generate(ctx, condition, target)
	routineErr := ""
	if genErr != nil {
		var rerr *RoutineError
		if errors.As(genErr, &rerr) {
			routineErr = rerr.UserMessage()
		} else {
			routineErr = genErr.Error()
		}
		log.WithError(genErr).WithField("session", id).Warn("routine generation failed")
	}

	return s.store.Update(ctx, id, func(st *models.SessionState) error {
		session.SetRoutine(st, condition, target, routine, routineErr)
		return session.Navigate(st, models.PageWorkout)
	})
}

func (s *WorkoutService) CompleteSet(ctx context.Context, id, exercise string) (*models.SessionState, bool, error) {
	var changed bool
	state, err := s.store.Update(ctx, id, func(st *models.SessionState) error {
		var err error
		_, changed, err = session.CompleteSet(st, exercise)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if changed && s.metrics != nil {
		s.metrics.CounterCompletedSets.Inc()
	}
	return state, changed, nil
}

func (s *WorkoutService) ResetTracking(ctx context.Context, id string) (*models.SessionState, error) {
	return s.store.Update(ctx, id, func(st *models.SessionState) error {
		session.ResetTracking(st)
		return nil
	})
}

func (s *WorkoutService) Navigate(ctx context.Context, id string, page models.Page) (*models.SessionState, error) {
	return s.store.Update(ctx, id, func(st *models.SessionState) error {
		return session.Navigate(st, page)
	})
}

// SendMessage asks the coach with the transcript as it is now and appends
// the exchange. Returns ErrEmptyMessage for blank text.
func (s *WorkoutService) SendMessage(ctx context.Context, id, text string) (*models.SessionState, Exchange, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, Exchange{}, err
	}

	brief := CoachBrief{
		Condition:    current.Condition,
		TargetMuscle: current.TargetMuscle,
		Routine:      current.Routine,
	}
	ex, err := s.coach.SendMessage(ctx, brief, current.Messages, text)
	if err != nil {
		return nil, Exchange{}, err
	}

	state, err := s.store.Update(ctx, id, func(st *models.SessionState) error {
		session.AppendExchange(st, ex.User, ex.Reply)
		return nil
	})
	if err != nil {
		return nil, Exchange{}, err
	}
	return state, ex, nil
}

func normalizeInput(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if utf8.RuneCountInString(s) > maxInputRunes {
		s = string([]rune(s)[:maxInputRunes])
	}
	return s
}
