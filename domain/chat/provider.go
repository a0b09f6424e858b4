package chat

import "context"

// GenerateRequest carries everything a provider needs to produce a
// grounded answer.
type GenerateRequest struct {
	prompt            string
	context           string
	systemInstruction string
	history           []Message
}

// NewGenerateRequest creates a GenerateRequest.
func NewGenerateRequest(prompt, contextText, systemInstruction string, history []Message) GenerateRequest {
	msgs := make([]Message, len(history))
	copy(msgs, history)
	return GenerateRequest{
		prompt:            prompt,
		context:           contextText,
		systemInstruction: systemInstruction,
		history:           msgs,
	}
}

// Prompt returns the user question.
func (r GenerateRequest) Prompt() string { return r.prompt }

// Context returns the retrieved or personal context (may be empty).
func (r GenerateRequest) Context() string { return r.context }

// SystemInstruction returns the instruction overriding the provider's
// built-in one (may be empty).
func (r GenerateRequest) SystemInstruction() string { return r.systemInstruction }

// History returns the running conversation history.
func (r GenerateRequest) History() []Message {
	msgs := make([]Message, len(r.history))
	copy(msgs, r.history)
	return msgs
}

// Provider generates free-text answers and classifies intent through an
// external language model backend.
type Provider interface {
	// Name returns the provider name reported back to callers.
	Name() string

	// GenerateResponse produces an answer, incorporating the request
	// context when present and following the system instruction when
	// supplied. Backend failures surface as a typed error the caller can
	// distinguish from an empty answer.
	GenerateResponse(ctx context.Context, req GenerateRequest) (string, error)

	// ClassifyIntent returns the raw intent label for a question. An
	// unrecognized or empty model output is returned as an empty label
	// with a nil error; only transport failures return an error.
	ClassifyIntent(ctx context.Context, question string, history []Message) (string, error)

	// Close releases provider resources.
	Close() error
}

// PersonalContextBuilder is the external collaborator that assembles a
// user's personal facts for PersonalInfo/PersonalSchedule intents.
type PersonalContextBuilder interface {
	BuildPersonalContext(ctx context.Context, user UserContext, intent Intent) (string, error)
}
