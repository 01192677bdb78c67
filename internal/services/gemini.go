package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"flowfit-backend/internal/metrics"
	"flowfit-backend/internal/models"
)

// Generator is the part of the Gemini API the routine and coach services use.
type Generator interface {
	// GenerateJSON asks for a response constrained to application/json.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Chat sends message after replaying history. system may be empty.
	Chat(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error)
}

var errEmptyResponse = errors.New("Gemini returned an empty response")

type GeminiOptions struct {
	APIKey         string
	Model          string
	Temperature    float32
	Timeout        time.Duration
	ConcurrentReqs int
}

type GeminiService struct {
	client      *genai.Client
	modelName   string
	temperature float32
	timeout     time.Duration
	metrics     *metrics.Manager
	rateChan    chan struct{} // Token bucket
}

func NewGeminiService(opts GeminiOptions, m *metrics.Manager) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	concurrent := opts.ConcurrentReqs
	if concurrent < 1 {
		concurrent = 1
	}

	// Token bucket bounding in-flight upstream calls
	rateChan := make(chan struct{}, concurrent)
	for i := 0; i < concurrent; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:      client,
		modelName:   opts.Model,
		temperature: opts.Temperature,
		timeout:     opts.Timeout,
		metrics:     m,
		rateChan:    rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for Gemini rate slot: %w", ctx.Err())
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

func (s *GeminiService) newModel(system string) *genai.GenerativeModel {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(s.temperature)
	model.SetTopP(0.95)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return model
}

func (s *GeminiService) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	model := s.newModel("")
	model.ResponseMIMEType = "application/json"

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	s.observe(metrics.KindRoutine, start, err)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	logFinishReasons(resp)

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func (s *GeminiService) Chat(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	cs := s.newModel(system).StartChat()
	cs.History = toGeminiHistory(history)

	start := time.Now()
	resp, err := cs.SendMessage(ctx, genai.Text(message))
	s.observe(metrics.KindChat, start, err)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	logFinishReasons(resp)

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

func (s *GeminiService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GeminiService) observe(kind string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
	}
	s.metrics.CounterAICalls.WithLabelValues(kind, outcome).Inc()
	s.metrics.HistAICallDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Helper functions

// toGeminiHistory maps transcript roles onto Gemini's "user"/"model".
func toGeminiHistory(history []models.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := "user"
		if m.Role == models.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return out
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func logFinishReasons(resp *genai.GenerateContentResponse) {
	if resp == nil {
		return
	}
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.WithFields(log.Fields{
				"candidate":     i,
				"finish_reason": cand.FinishReason.String(),
			}).Warn("Gemini stopped early")
		}
	}
}
