package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowfit-backend/internal/models"
)

func TestChatCoach_SendMessage(t *testing.T) {
	ai := &stubGenerator{chatResponse: "단백질 위주로 드세요."}
	coach := NewChatCoach(ai, nil)

	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "안녕하세요"},
		{Role: models.RoleAssistant, Content: "안녕하세요! 무엇을 도와드릴까요?"},
	}
	before := append([]models.ChatMessage(nil), history...)

	brief := CoachBrief{
		Condition:    "조금 피곤해요 😫",
		TargetMuscle: "가슴, 삼두",
		Routine:      []models.ExerciseEntry{{Name: "Push-up", TargetSets: 3, RepRange: "10-12", Weight: "bodyweight"}},
	}

	ex, err := coach.SendMessage(context.Background(), brief, history, "  운동 후에 뭘 먹으면 좋을까요?  ")
	require.NoError(t, err)
	assert.False(t, ex.Failed)
	assert.Equal(t, models.ChatMessage{Role: models.RoleUser, Content: "운동 후에 뭘 먹으면 좋을까요?"}, ex.User)
	assert.Equal(t, models.ChatMessage{Role: models.RoleAssistant, Content: "단백질 위주로 드세요."}, ex.Reply)

	require.Len(t, ai.chatCalls, 1)
	call := ai.chatCalls[0]
	assert.Equal(t, before, call.history, "the entire prior transcript is sent")
	assert.Equal(t, "운동 후에 뭘 먹으면 좋을까요?", call.message)
	assert.Contains(t, call.system, "조금 피곤해요 😫")
	assert.Contains(t, call.system, "- Push-up: 3 sets x 10-12 @ bodyweight")

	assert.Equal(t, before, history, "caller's transcript is untouched")
}

func TestChatCoach_FailureBecomesAssistantMessage(t *testing.T) {
	ai := &stubGenerator{chatErr: errors.New("quota exceeded")}
	coach := NewChatCoach(ai, nil)

	ex, err := coach.SendMessage(context.Background(), CoachBrief{}, nil, "세트 사이 휴식은?")
	require.NoError(t, err)
	assert.True(t, ex.Failed)
	assert.Equal(t, models.RoleUser, ex.User.Role)
	assert.Equal(t, models.RoleAssistant, ex.Reply.Role)
	assert.Contains(t, ex.Reply.Content, "quota exceeded")
}

func TestChatCoach_EmptyMessage(t *testing.T) {
	ai := &stubGenerator{}
	coach := NewChatCoach(ai, nil)

	_, err := coach.SendMessage(context.Background(), CoachBrief{}, nil, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, ai.chatCalls)
}

func TestQuickQuestionsAreOrdinaryText(t *testing.T) {
	ai := &stubGenerator{chatResponse: "5분 정도 가볍게 뛰세요."}
	coach := NewChatCoach(ai, nil)

	ex, err := coach.SendMessage(context.Background(), CoachBrief{}, nil, models.QuickQuestions[0])
	require.NoError(t, err)
	assert.Equal(t, models.QuickQuestions[0], ex.User.Content)
	assert.Equal(t, models.QuickQuestions[0], ai.chatCalls[0].message)
}
