package chat

// Answer packages the generated response with the provider that produced
// it and the intent that routed it.
type Answer struct {
	text     string
	provider string
	intent   Intent
}

// NewAnswer creates an Answer.
func NewAnswer(text, provider string, intent Intent) Answer {
	return Answer{text: text, provider: provider, intent: intent}
}

// Text returns the generated answer.
func (a Answer) Text() string { return a.text }

// Provider returns the name of the provider that generated the answer.
func (a Answer) Provider() string { return a.provider }

// Intent returns the resolved intent.
func (a Answer) Intent() Intent { return a.intent }
