package port

import "context"

// ChatMessage is one turn sent to a chat-completions model. When ImageURL is
// set the turn is sent as an image block followed by the text block.
type ChatMessage struct {
	Role     string
	Text     string
	ImageURL string
}

// CompletionRequest is a chat-completions call.
type CompletionRequest struct {
	Messages  []ChatMessage
	MaxTokens int
}

// CompletionResponse is the model's reply text plus provenance.
type CompletionResponse struct {
	Content  string
	Model    string
	Provider string
}

// ChatClient abstracts a chat-completions model API.
type ChatClient interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
