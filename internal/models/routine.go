package models

// ExerciseEntry is one line of a generated routine.
type ExerciseEntry struct {
	Name         string `json:"name"`
	TargetSets   int    `json:"target_sets"`
	RepRange     string `json:"rep_range"`
	Tip          string `json:"tip"`
	TargetMuscle string `json:"target_muscle,omitempty"`
	Weight       string `json:"weight,omitempty"`
}

// Conditions offered on the home page.
var Conditions = []string{
	"최고예요! 😆",
	"보통이에요 🙂",
	"조금 피곤해요 😫",
	"부상이 있어요 🩹",
}

const (
	DefaultCondition    = "보통이에요 🙂"
	DefaultTargetMuscle = "가슴, 삼두"
)

// GenerateRoutineRequest is the payload for routine generation.
type GenerateRoutineRequest struct {
	Condition    string `json:"condition"`
	TargetMuscle string `json:"target_muscle"`
}

// CompleteSetRequest marks one set of an exercise as done.
type CompleteSetRequest struct {
	Exercise string `json:"exercise"`
}

// DefaultTargetSets is used whenever the model's set count is unusable.
const DefaultTargetSets = 4
