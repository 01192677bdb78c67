package models

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply from the AI coach.
type ChatResponse struct {
	Reply    ChatMessage   `json:"reply"`
	Messages []ChatMessage `json:"messages"`
}

// QuickQuestions are preset prompts shown under the chat box.
var QuickQuestions = []string{
	"오늘 루틴 전에 어떤 워밍업을 하면 좋을까요?",
	"운동 후에 뭘 먹으면 좋을까요?",
	"근육통이 있을 때도 운동해도 되나요?",
	"세트 사이 휴식은 얼마나 해야 하나요?",
}
