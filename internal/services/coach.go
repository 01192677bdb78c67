package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"flowfit-backend/internal/metrics"
	"flowfit-backend/internal/models"
)

var ErrEmptyMessage = errors.New("message is empty")

// CoachBrief is what the coach knows about the user's current workout.
type CoachBrief struct {
	Condition    string
	TargetMuscle string
	Routine      []models.ExerciseEntry
}

// Exchange is one user turn and the reply it produced.
type Exchange struct {
	User   models.ChatMessage
	Reply  models.ChatMessage
	Failed bool
}

type ChatCoach struct {
	ai      Generator
	metrics *metrics.Manager
}

func NewChatCoach(ai Generator, m *metrics.Manager) *ChatCoach {
	return &ChatCoach{ai: ai, metrics: m}
}

// SendMessage forwards the whole transcript plus text to the model. An API
// failure does not return an error; it becomes the assistant reply instead.
func (c *ChatCoach) SendMessage(ctx context.Context, brief CoachBrief, history []models.ChatMessage, text string) (Exchange, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Exchange{}, ErrEmptyMessage
	}

	user := models.ChatMessage{Role: models.RoleUser, Content: text}
	if c.metrics != nil {
		c.metrics.CounterChatMessages.Inc()
	}

	// Copy so the caller's transcript is never aliased.
	prior := append([]models.ChatMessage(nil), history...)

	reply, err := c.ai.Chat(ctx, buildCoachInstruction(brief), prior, user.Content)
	if err != nil {
		log.WithError(err).Warn("coach reply failed")
		return Exchange{
			User:   user,
			Reply:  models.ChatMessage{Role: models.RoleAssistant, Content: fmt.Sprintf("⚠️ 코치 응답을 받지 못했어요: %v", err)},
			Failed: true,
		}, nil
	}

	return Exchange{
		User:  user,
		Reply: models.ChatMessage{Role: models.RoleAssistant, Content: reply},
	}, nil
}

func buildCoachInstruction(brief CoachBrief) string {
	var b strings.Builder

	b.WriteString("You are 'Flow Fit', a friendly expert personal trainer and coach.\n")
	b.WriteString("Answer in Korean, concisely and practically. Give safe advice; if the user reports pain or injury, recommend seeing a professional.\n\n")

	if brief.Condition != "" {
		b.WriteString(fmt.Sprintf("User Condition: %s\n", brief.Condition))
	}
	if brief.TargetMuscle != "" {
		b.WriteString(fmt.Sprintf("Target Muscle: %s\n", brief.TargetMuscle))
	}

	if len(brief.Routine) > 0 {
		b.WriteString("\nToday's routine:\n")
		for _, e := range brief.Routine {
			b.WriteString(fmt.Sprintf("- %s: %d sets x %s", e.Name, e.TargetSets, e.RepRange))
			if e.Weight != "" {
				b.WriteString(fmt.Sprintf(" @ %s", e.Weight))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
