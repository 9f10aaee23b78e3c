package summarizer

import (
	"context"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Temperature is kept low to bias the model toward assertive phrasing.
const Temperature = 0.3

// Message is a single role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest describes one chat completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
}

// NewCompletionRequest builds the system + user message pair for p.
func NewCompletionRequest(model string, p Prompt) CompletionRequest {
	return CompletionRequest{
		Model: model,
		Messages: []Message{
			{Role: RoleSystem, Content: p.System},
			{Role: RoleUser, Content: p.User},
		},
		Temperature: Temperature,
	}
}

// Completer returns the text of the first candidate completion.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
