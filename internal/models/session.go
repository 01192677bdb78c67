package models

import (
	"fmt"
	"time"
)

// Page selects the view rendered for a session.
type Page string

const (
	PageHome    Page = "home"
	PageWorkout Page = "workout"
	PageCoach   Page = "coach"
	PageProfile Page = "profile"
)

// Pages lists every page in navigation order.
var Pages = []Page{PageHome, PageWorkout, PageCoach, PageProfile}

func ParsePage(s string) (Page, error) {
	for _, p := range Pages {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown page %q", s)
}

func (p Page) Title() string {
	switch p {
	case PageWorkout:
		return "Workout"
	case PageCoach:
		return "AI Coach"
	case PageProfile:
		return "Profile"
	default:
		return "Home"
	}
}

// SessionState is everything one browser session knows.
type SessionState struct {
	ID           string          `json:"id"`
	Condition    string          `json:"condition"`
	TargetMuscle string          `json:"target_muscle"`
	Routine      []ExerciseEntry `json:"routine"`
	Tracking     map[string]int  `json:"tracking"`
	Messages     []ChatMessage   `json:"messages"`
	Page         Page            `json:"page"`
	RoutineError string          `json:"routine_error,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NavigateRequest switches the current page.
type NavigateRequest struct {
	Page string `json:"page"`
}

// ExerciseProgress is the per-exercise view of the tracking state.
type ExerciseProgress struct {
	ExerciseEntry
	CompletedSets int     `json:"completed_sets"`
	Status        string  `json:"status"`
	Progress      float64 `json:"progress"`
}

// WorkoutSummary aggregates progress over the whole routine.
type WorkoutSummary struct {
	CompletedSets      int     `json:"completed_sets"`
	TotalSets          int     `json:"total_sets"`
	CompletedExercises int     `json:"completed_exercises"`
	TotalExercises     int     `json:"total_exercises"`
	Progress           float64 `json:"progress"`
}

// SessionResponse is the JSON rendering of a session.
type SessionResponse struct {
	ID           string             `json:"id"`
	Page         Page               `json:"page"`
	Condition    string             `json:"condition"`
	TargetMuscle string             `json:"target_muscle"`
	Exercises    []ExerciseProgress `json:"exercises"`
	Summary      WorkoutSummary     `json:"summary"`
	Messages     []ChatMessage      `json:"messages"`
	RoutineError string             `json:"routine_error,omitempty"`
}

// CatalogResponse lists selectable values for clients.
type CatalogResponse struct {
	Conditions     []string `json:"conditions"`
	QuickQuestions []string `json:"quick_questions"`
	Pages          []Page   `json:"pages"`
}
