package provider

import (
	"fmt"
	"strings"

	"github.com/confluxhq/conflux/domain/chat"
)

// defaultSystemPrompt is used when the request carries no instruction of
// its own.
const defaultSystemPrompt = "You are a helpful assistant for a convention management service. " +
	"Answer in the language the user writes in. Be concise and factual."

// classifySystemPrompt constrains the model to emit a bare intent label.
const classifySystemPrompt = "You classify user questions for a convention assistant. " +
	"Respond with exactly one of these labels and nothing else: " +
	"personal_info, personal_schedule, event, general."

// classifyUserPrompt renders the classification input, folding in recent
// history so follow-up questions classify correctly.
func classifyUserPrompt(question string, history []chat.Message) string {
	if len(history) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString("Conversation so far:\n")
	for _, m := range history {
		fmt.Fprintf(&b, "%s: %s\n", m.Role(), m.Content())
	}
	b.WriteString("\nClassify this question: ")
	b.WriteString(question)
	return b.String()
}

// userContent renders the final user message, prefixing the retrieved or
// personal context when present so the model grounds its answer on it.
func userContent(req chat.GenerateRequest) string {
	if req.Context() == "" {
		return req.Prompt()
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(req.Context())
	b.WriteString("\n\nQuestion: ")
	b.WriteString(req.Prompt())
	return b.String()
}

// systemPrompt returns the request's instruction, or the default when
// none was supplied.
func systemPrompt(req chat.GenerateRequest) string {
	if s := req.SystemInstruction(); s != "" {
		return s
	}
	return defaultSystemPrompt
}

// normalizeLabel lowercases and trims a raw model label. Quotes and
// trailing punctuation are stripped because smaller models decorate the
// answer despite instructions.
func normalizeLabel(raw string) string {
	label := strings.ToLower(strings.TrimSpace(raw))
	label = strings.Trim(label, "\"'`.")
	return strings.TrimSpace(label)
}
