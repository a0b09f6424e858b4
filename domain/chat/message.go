package chat

// Message roles in conversation history.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Message is one turn of conversation history.
type Message struct {
	role    string
	content string
}

// NewMessage creates a Message.
func NewMessage(role, content string) Message {
	return Message{role: role, content: content}
}

// UserMessage creates a user-turn Message.
func UserMessage(content string) Message {
	return Message{role: MessageRoleUser, content: content}
}

// AssistantMessage creates an assistant-turn Message.
func AssistantMessage(content string) Message {
	return Message{role: MessageRoleAssistant, content: content}
}

// Role returns the message role.
func (m Message) Role() string { return m.role }

// Content returns the message text.
func (m Message) Content() string { return m.content }
