package services

import (
	"context"

	"flowfit-backend/internal/models"
)

type chatCall struct {
	system  string
	history []models.ChatMessage
	message string
}

// stubGenerator records calls and answers with canned values.
type stubGenerator struct {
	jsonResponse string
	jsonErr      error
	chatResponse string
	chatErr      error

	prompts   []string
	chatCalls []chatCall
}

func (s *stubGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.jsonResponse, s.jsonErr
}

func (s *stubGenerator) Chat(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	s.chatCalls = append(s.chatCalls, chatCall{system: system, history: history, message: message})
	return s.chatResponse, s.chatErr
}
