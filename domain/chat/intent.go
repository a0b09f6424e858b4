// Package chat holds the conversation-side value types: intents, user
// context, history, answers, and the LLM provider contract.
package chat

import "strings"

// Intent is the classified strategy for answering a question. It is
// ephemeral and never persisted.
type Intent string

// Intent values.
const (
	IntentPersonalInfo     Intent = "personal_info"
	IntentPersonalSchedule Intent = "personal_schedule"
	IntentEvent            Intent = "event"
	IntentGeneral          Intent = "general"
	IntentUnknown          Intent = "unknown"
)

// IsPersonal reports whether the intent routes to the personal-context
// collaborator instead of retrieval.
func (i Intent) IsPersonal() bool {
	return i == IntentPersonalInfo || i == IntentPersonalSchedule
}

// UsesRetrieval reports whether the intent routes to vector search.
func (i Intent) UsesRetrieval() bool {
	return i == IntentEvent || i == IntentUnknown
}

// ParseIntent maps a raw classifier label to an Intent. The match is
// case-insensitive and tolerates surrounding prose. Returns false for
// unparseable labels; callers degrade to IntentUnknown, never error.
func ParseIntent(label string) (Intent, bool) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if normalized == "" {
		return IntentUnknown, false
	}

	// personal_schedule must be checked before personal_info: both share
	// the "personal" token and schedule labels often include "info".
	switch {
	case strings.Contains(normalized, "personal_schedule"), strings.Contains(normalized, "personalschedule"):
		return IntentPersonalSchedule, true
	case strings.Contains(normalized, "personal_info"), strings.Contains(normalized, "personalinfo"):
		return IntentPersonalInfo, true
	case strings.Contains(normalized, "event"):
		return IntentEvent, true
	case strings.Contains(normalized, "general"):
		return IntentGeneral, true
	case strings.Contains(normalized, "unknown"):
		return IntentUnknown, true
	}
	return IntentUnknown, false
}
