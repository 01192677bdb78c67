package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"flowfit-backend/internal/metrics"
	"flowfit-backend/internal/models"
)

var errNoExercises = errors.New("response contained no usable exercises")

// Routine failure stages.
const (
	StageRequest = "request"
	StageParse   = "parse"
)

// RoutineError is a failed generation. The caller keeps an empty routine and
// shows UserMessage inline.
type RoutineError struct {
	Stage string
	Err   error
}

func (e *RoutineError) Error() string {
	return fmt.Sprintf("routine %s failed: %v", e.Stage, e.Err)
}

func (e *RoutineError) Unwrap() error {
	return e.Err
}

func (e *RoutineError) UserMessage() string {
	if e.Stage == StageParse {
		return fmt.Sprintf("AI 응답을 루틴으로 해석하지 못했습니다: %v", e.Err)
	}
	return fmt.Sprintf("AI 호출 중 오류 발생: %v", e.Err)
}

type RoutineGenerator struct {
	ai      Generator
	metrics *metrics.Manager
}

func NewRoutineGenerator(ai Generator, m *metrics.Manager) *RoutineGenerator {
	return &RoutineGenerator{ai: ai, metrics: m}
}

// Generate makes one best-effort round trip. On any failure it returns an
// empty, non-nil routine together with a *RoutineError.
func (g *RoutineGenerator) Generate(ctx context.Context, condition, targetMuscle string) ([]models.ExerciseEntry, error) {
	prompt := buildRoutinePrompt(condition, targetMuscle)

	raw, err := g.ai.GenerateJSON(ctx, prompt)
	if err != nil {
		g.count(metrics.OutcomeError)
		return []models.ExerciseEntry{}, &RoutineError{Stage: StageRequest, Err: err}
	}

	routine, err := parseRoutine(raw, targetMuscle)
	if err != nil {
		g.count(metrics.OutcomeError)
		log.WithError(err).WithField("raw_len", len(raw)).Warn("could not parse routine response")
		return []models.ExerciseEntry{}, &RoutineError{Stage: StageParse, Err: err}
	}

	g.count(metrics.OutcomeOK)
	return routine, nil
}

func (g *RoutineGenerator) count(outcome string) {
	if g.metrics != nil {
		g.metrics.CounterRoutines.WithLabelValues(outcome).Inc()
	}
}

// SetCount is the validated set count of one exercise.
type SetCount struct {
	Value     int
	Defaulted bool
}

// ParseSetCount turns the model's set field into a positive integer. Anything
// non-numeric or below 1 becomes DefaultTargetSets.
func ParseSetCount(raw string) SetCount {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return SetCount{Value: models.DefaultTargetSets, Defaulted: true}
	}
	return SetCount{Value: n}
}

func buildRoutinePrompt(condition, targetMuscle string) string {
	var b strings.Builder

	b.WriteString("You are 'Flow Fit', an expert personal trainer.\n")
	b.WriteString(fmt.Sprintf("User Condition: %s\n", condition))
	b.WriteString(fmt.Sprintf("Target Muscle: %s\n\n", targetMuscle))

	b.WriteString("Create a specific workout routine adjusted to the user's condition.\n")
	b.WriteString("If the user is tired, lower the volume; if injured, avoid loading the injured area.\n\n")

	b.WriteString("CRITICAL: Return ONLY a JSON array. Do not include markdown formatting (```json), preamble or comments.\n\n")
	b.WriteString(`JSON schema per exercise:
{"exercise": "Name", "sets": "Number", "reps": "Range", "tip": "Short Korean tip", "weight": "Suggested load or empty string", "target": "Main muscle worked"}
`)

	return b.String()
}

// flexText accepts a JSON string, number or null and keeps its text.
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexText(s)
		return nil
	}
	*f = flexText(data)
	return nil
}

type rawExercise struct {
	Exercise flexText `json:"exercise"`
	Name     flexText `json:"name"`
	Sets     flexText `json:"sets"`
	Reps     flexText `json:"reps"`
	Tip      flexText `json:"tip"`
	Weight   flexText `json:"weight"`
	Target   flexText `json:"target"`
}

func parseRoutine(raw, targetMuscle string) ([]models.ExerciseEntry, error) {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return nil, errEmptyResponse
	}

	items, err := decodeExercises(cleaned)
	if err != nil {
		return nil, err
	}

	routine := make([]models.ExerciseEntry, 0, len(items))
	taken := make(map[string]bool, len(items))
	for _, it := range items {
		name := strings.TrimSpace(string(it.Exercise))
		if name == "" {
			name = strings.TrimSpace(string(it.Name))
		}
		if name == "" {
			continue
		}

		// Tracking is keyed by name, so names must be unique.
		name = uniqueName(name, taken)
		taken[name] = true

		sets := ParseSetCount(string(it.Sets))
		if sets.Defaulted {
			log.WithFields(log.Fields{"exercise": name, "sets": string(it.Sets)}).Debug("set count defaulted")
		}

		target := strings.TrimSpace(string(it.Target))
		if target == "" {
			target = targetMuscle
		}

		routine = append(routine, models.ExerciseEntry{
			Name:         name,
			TargetSets:   sets.Value,
			RepRange:     strings.TrimSpace(string(it.Reps)),
			Tip:          strings.TrimSpace(string(it.Tip)),
			TargetMuscle: target,
			Weight:       strings.TrimSpace(string(it.Weight)),
		})
	}

	if len(routine) == 0 {
		return nil, errNoExercises
	}
	return routine, nil
}

// uniqueName returns name, or the first "name (n)" with n >= 2 not yet taken.
func uniqueName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// decodeExercises accepts a bare array, an object wrapping one array, or
// an array embedded in surrounding text.
func decodeExercises(text string) ([]rawExercise, error) {
	var items []rawExercise
	err := json.Unmarshal([]byte(text), &items)
	if err == nil {
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if json.Unmarshal([]byte(text), &wrapper) == nil {
		for _, v := range wrapper {
			var inner []rawExercise
			if json.Unmarshal(v, &inner) == nil && len(inner) > 0 {
				return inner, nil
			}
		}
		return nil, fmt.Errorf("JSON object does not contain an exercise array")
	}

	// Try to extract JSON array
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(text[start:end+1]), &items) == nil {
			return items, nil
		}
	}

	return nil, fmt.Errorf("invalid routine JSON: %w", err)
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
