package prompting

import (
	"strings"
	"testing"

	"braincore/domain/services/leadsignals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPersonality = Personality{
	Name:      "Ava",
	Role:      "Sales Development Representative",
	Company:   "Acme",
	Traits:    []string{"warm", "concise"},
	SignOff:   "Ava from Acme",
	WordLimit: 120,
}

func TestCompose_ContainsPersonalityAndMessage(t *testing.T) {
	msg := Message{
		FromName:  "John Doe",
		FromEmail: "john@example.com",
		Subject:   "Question about your product",
		Body:      "What does the integration process look like?",
	}

	prompt := Compose(testPersonality, msg, nil)

	assert.Contains(t, prompt, "You are Ava, Sales Development Representative at Acme.")
	assert.Contains(t, prompt, "warm, concise")
	assert.Contains(t, prompt, "Contact: John Doe <john@example.com>")
	assert.Contains(t, prompt, "Subject: Question about your product")
	// the literal inbound body must be embedded
	assert.Contains(t, prompt, "What does the integration process look like?")
	assert.Contains(t, prompt, "Keep it under 120 words. Sign as Ava from Acme.")
}

func TestCompose_ReportsTemperatureAndStrategy(t *testing.T) {
	msg := Message{
		FromEmail: "john@example.com",
		Subject:   "Pricing",
		Body:      "Please send a quote and pricing, we want to purchase.",
	}

	prompt := Compose(testPersonality, msg, nil)

	assert.Contains(t, prompt, "Lead temperature: hot")
	assert.Contains(t, prompt, "Move to close.")
}

func TestCompose_PriorExchangeCount(t *testing.T) {
	history := []Exchange{
		{Inbound: "hi", Outbound: "hello"},
		{Inbound: "more", Outbound: "sure"},
		{Inbound: "thanks", Outbound: "anytime"},
	}

	prompt := Compose(testPersonality, Message{Body: "ok"}, history)

	assert.Contains(t, prompt, "Prior exchanges: 3")
}

func TestCompose_ZeroWordLimitFallsBackToDefault(t *testing.T) {
	personality := testPersonality
	personality.WordLimit = 0

	prompt := Compose(personality, Message{Body: "hello"}, nil)

	assert.Contains(t, prompt, "Keep it under 150 words.")
}

func TestCompose_ShowsUnknownDimensions(t *testing.T) {
	prompt := Compose(testPersonality, Message{Body: "nice to meet you"}, nil)

	assert.Contains(t, prompt, "Budget:    unknown")
	assert.Contains(t, prompt, "Authority: unknown")
}

func TestQualifyingQuestions_CapsAtTwo(t *testing.T) {
	// everything unknown: four dimension questions compete for two slots
	signals := leadsignals.Signals{
		Temperature: leadsignals.TemperatureHot,
		Stage:       leadsignals.StageDiscovery,
	}

	questions := QualifyingQuestions(signals)

	require.Len(t, questions, 2)
	assert.Equal(t, "Do you have a budget set aside for this?", questions[0])
	assert.Equal(t, "Who else would be involved in this decision?", questions[1])
}

func TestQualifyingQuestions_SkipsKnownDimensions(t *testing.T) {
	signals := leadsignals.Signals{
		Temperature: leadsignals.TemperatureWarm,
		Budget:      leadsignals.StrengthMentioned,
		Authority:   leadsignals.StrengthLikely,
		Need:        leadsignals.StrengthExpressed,
		Timeline:    leadsignals.StrengthUrgent,
	}

	questions := QualifyingQuestions(signals)

	require.Len(t, questions, 1)
	assert.Equal(t, "What would a successful outcome look like for you?", questions[0])
}

func TestQualifyingQuestions_TimelineOnlyForHotLeads(t *testing.T) {
	signals := leadsignals.Signals{
		Temperature: leadsignals.TemperatureWarm,
		Budget:      leadsignals.StrengthMentioned,
		Authority:   leadsignals.StrengthLikely,
		Need:        leadsignals.StrengthExpressed,
	}

	questions := QualifyingQuestions(signals)

	// timeline is unknown but the lead is only warm, so no timeline question
	for _, q := range questions {
		assert.NotContains(t, q, "get started")
	}
}

func TestQualifyingQuestions_HotLeadAsksTimeline(t *testing.T) {
	signals := leadsignals.Signals{
		Temperature: leadsignals.TemperatureHot,
		Budget:      leadsignals.StrengthMentioned,
		Authority:   leadsignals.StrengthLikely,
		Need:        leadsignals.StrengthExpressed,
	}

	questions := QualifyingQuestions(signals)

	require.Len(t, questions, 2)
	assert.Equal(t, "When are you looking to get started?", questions[0])
	assert.Equal(t, "Is there anything standing between you and a decision?", questions[1])
}

func TestCompose_AtMostTwoQuestionLines(t *testing.T) {
	prompt := Compose(testPersonality, Message{Body: "nice to meet you"}, nil)

	questionLines := 0
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "- ") {
			questionLines++
		}
	}
	assert.LessOrEqual(t, questionLines, 2)
}
