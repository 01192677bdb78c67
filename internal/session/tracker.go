package session

import (
	"errors"
	"fmt"
	"time"

	"flowfit-backend/internal/models"
)

var ErrUnknownExercise = errors.New("exercise is not part of the current routine")

// Status is the tracking state of a single exercise.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// New returns a session initialized with defaults.
func New(id string, now time.Time) *models.SessionState {
	return &models.SessionState{
		ID:           id,
		Condition:    models.DefaultCondition,
		TargetMuscle: models.DefaultTargetMuscle,
		Routine:      []models.ExerciseEntry{},
		Tracking:     map[string]int{},
		Messages:     []models.ChatMessage{},
		Page:         models.PageHome,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetRoutine installs a freshly generated routine. Tracking always starts
// over, whatever it held before; the transcript is left alone.
func SetRoutine(s *models.SessionState, condition, target string, routine []models.ExerciseEntry, routineErr string) {
	s.Condition = condition
	s.TargetMuscle = target
	if routine == nil {
		routine = []models.ExerciseEntry{}
	}
	s.Routine = routine
	s.Tracking = map[string]int{}
	s.RoutineError = routineErr
}

// CompleteSet records one finished set. At the target it is a no-op and
// changed is false.
func CompleteSet(s *models.SessionState, name string) (progress models.ExerciseProgress, changed bool, err error) {
	entry, ok := findExercise(s.Routine, name)
	if !ok {
		return models.ExerciseProgress{}, false, fmt.Errorf("%q: %w", name, ErrUnknownExercise)
	}
	if s.Tracking == nil {
		s.Tracking = map[string]int{}
	}

	target := effectiveTarget(entry.TargetSets)
	done := clamp(s.Tracking[name], 0, target)
	if done < target {
		done++
		changed = true
	}
	s.Tracking[name] = done

	return progressOf(entry, done), changed, nil
}

// ResetTracking clears every completed count but keeps the routine.
func ResetTracking(s *models.SessionState) {
	s.Tracking = map[string]int{}
}

// Navigate is the single place the current page changes.
func Navigate(s *models.SessionState, page models.Page) error {
	if _, err := models.ParsePage(string(page)); err != nil {
		return err
	}
	s.Page = page
	return nil
}

// AppendExchange adds a user turn and its reply to the transcript.
func AppendExchange(s *models.SessionState, user, reply models.ChatMessage) {
	s.Messages = append(s.Messages, user, reply)
}

// Progress is completed/target clamped to [0,1].
func Progress(completed, target int) float64 {
	target = effectiveTarget(target)
	ratio := float64(completed) / float64(target)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

func StatusOf(completed, target int) Status {
	target = effectiveTarget(target)
	switch {
	case completed <= 0:
		return StatusPending
	case completed >= target:
		return StatusComplete
	default:
		return StatusInProgress
	}
}

// Exercises joins the routine with its tracking counts, in routine order.
func Exercises(s *models.SessionState) []models.ExerciseProgress {
	out := make([]models.ExerciseProgress, 0, len(s.Routine))
	for _, e := range s.Routine {
		done := clamp(s.Tracking[e.Name], 0, effectiveTarget(e.TargetSets))
		out = append(out, progressOf(e, done))
	}
	return out
}

func Summarize(s *models.SessionState) models.WorkoutSummary {
	var sum models.WorkoutSummary
	for _, p := range Exercises(s) {
		sum.TotalExercises++
		sum.TotalSets += effectiveTarget(p.TargetSets)
		sum.CompletedSets += p.CompletedSets
		if p.Status == string(StatusComplete) {
			sum.CompletedExercises++
		}
	}
	if sum.TotalSets > 0 {
		sum.Progress = Progress(sum.CompletedSets, sum.TotalSets)
	}
	return sum
}

// Response renders the session for the JSON API.
func Response(s *models.SessionState) models.SessionResponse {
	return models.SessionResponse{
		ID:           s.ID,
		Page:         s.Page,
		Condition:    s.Condition,
		TargetMuscle: s.TargetMuscle,
		Exercises:    Exercises(s),
		Summary:      Summarize(s),
		Messages:     s.Messages,
		RoutineError: s.RoutineError,
	}
}

// Clone deep-copies a session so callers never share slices or maps with a store.
func Clone(s *models.SessionState) *models.SessionState {
	c := *s
	c.Routine = append([]models.ExerciseEntry(nil), s.Routine...)
	c.Messages = append([]models.ChatMessage(nil), s.Messages...)
	c.Tracking = make(map[string]int, len(s.Tracking))
	for k, v := range s.Tracking {
		c.Tracking[k] = v
	}
	if c.Routine == nil {
		c.Routine = []models.ExerciseEntry{}
	}
	if c.Messages == nil {
		c.Messages = []models.ChatMessage{}
	}
	return &c
}

func progressOf(e models.ExerciseEntry, done int) models.ExerciseProgress {
	return models.ExerciseProgress{
		ExerciseEntry: e,
		CompletedSets: done,
		Status:        string(StatusOf(done, e.TargetSets)),
		Progress:      Progress(done, e.TargetSets),
	}
}

func findExercise(routine []models.ExerciseEntry, name string) (models.ExerciseEntry, bool) {
	for _, e := range routine {
		if e.Name == name {
			return e, true
		}
	}
	return models.ExerciseEntry{}, false
}

func effectiveTarget(target int) int {
	if target <= 0 {
		return models.DefaultTargetSets
	}
	return target
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
