package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected Intent
		ok       bool
	}{
		{name: "exact personal_info", label: "personal_info", expected: IntentPersonalInfo, ok: true},
		{name: "exact personal_schedule", label: "personal_schedule", expected: IntentPersonalSchedule, ok: true},
		{name: "exact event", label: "event", expected: IntentEvent, ok: true},
		{name: "exact general", label: "general", expected: IntentGeneral, ok: true},
		{name: "exact unknown", label: "unknown", expected: IntentUnknown, ok: true},
		{name: "uppercase", label: "EVENT", expected: IntentEvent, ok: true},
		{name: "surrounding whitespace", label: "  general \n", expected: IntentGeneral, ok: true},
		{name: "embedded in prose", label: "The intent is: personal_schedule.", expected: IntentPersonalSchedule, ok: true},
		{name: "schedule wins over info", label: "personal_schedule or personal_info", expected: IntentPersonalSchedule, ok: true},
		{name: "no separator variant", label: "personalinfo", expected: IntentPersonalInfo, ok: true},
		{name: "empty", label: "", expected: IntentUnknown, ok: false},
		{name: "whitespace only", label: "   ", expected: IntentUnknown, ok: false},
		{name: "garbage", label: "I cannot classify this question", expected: IntentUnknown, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, ok := ParseIntent(tt.label)
			assert.Equal(t, tt.expected, intent)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestIntent_Routing(t *testing.T) {
	assert.True(t, IntentPersonalInfo.IsPersonal())
	assert.True(t, IntentPersonalSchedule.IsPersonal())
	assert.False(t, IntentEvent.IsPersonal())

	assert.True(t, IntentEvent.UsesRetrieval())
	assert.True(t, IntentUnknown.UsesRetrieval())
	assert.False(t, IntentGeneral.UsesRetrieval())
	assert.False(t, IntentPersonalInfo.UsesRetrieval())
}
