// Package prompting turns a classified inbound message into the
// generation prompt handed to the text-generation backend. The
// composer only builds text; it never calls the backend itself.
package prompting

import (
	"fmt"
	"strings"

	"braincore/domain/services/leadsignals"
)

// Personality configures the agent's voice and signing convention
type Personality struct {
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Company   string   `json:"company"`
	Traits    []string `json:"traits"`
	SignOff   string   `json:"signOff"`
	WordLimit int      `json:"wordLimit"`
}

// Message is the inbound message the agent is replying to
type Message struct {
	FromName  string
	FromEmail string
	Subject   string
	Body      string
}

// Exchange is one prior message/reply pair with the same contact
type Exchange struct {
	Inbound  string
	Outbound string
}

// maxQualifyingQuestions caps how many questions one reply may ask
const maxQualifyingQuestions = 2

const defaultWordLimit = 150

var strategies = map[leadsignals.Temperature]string{
	leadsignals.TemperatureCold: "Build rapport and spark curiosity. Do not push for a sale; offer one genuinely useful insight and invite a low-commitment next step.",
	leadsignals.TemperatureWarm: "Demonstrate value and build trust. Tie benefits to what the prospect said, reference proof where natural, and move the conversation one concrete step forward.",
	leadsignals.TemperatureHot:  "Move to close. Be direct about next steps, remove friction, and propose a specific time or action.",
}

var discoveryQuestions = map[leadsignals.Temperature]string{
	leadsignals.TemperatureCold: "What prompted you to look into this now?",
	leadsignals.TemperatureWarm: "What would a successful outcome look like for you?",
	leadsignals.TemperatureHot:  "Is there anything standing between you and a decision?",
}

// Compose builds the full generation prompt for one inbound message.
// history only contributes its length (the prior-exchange count).
func Compose(personality Personality, msg Message, history []Exchange) string {
	signals := leadsignals.Classify(msg.Subject + " " + msg.Body)
	questions := QualifyingQuestions(signals)

	wordLimit := personality.WordLimit
	if wordLimit <= 0 {
		wordLimit = defaultWordLimit
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, %s at %s.\n", personality.Name, personality.Role, personality.Company)
	fmt.Fprintf(&b, "Personality traits: %s.\n\n", strings.Join(personality.Traits, ", "))

	fmt.Fprintf(&b, "Lead temperature: %s\n", signals.Temperature)
	fmt.Fprintf(&b, "Contact: %s <%s>\n", msg.FromName, msg.FromEmail)
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)
	fmt.Fprintf(&b, "Prior exchanges: %d\n\n", len(history))

	b.WriteString("Qualification so far:\n")
	fmt.Fprintf(&b, "  Budget:    %s\n", orUnknown(signals.Budget))
	fmt.Fprintf(&b, "  Authority: %s\n", orUnknown(signals.Authority))
	fmt.Fprintf(&b, "  Need:      %s\n", orUnknown(signals.Need))
	fmt.Fprintf(&b, "  Timeline:  %s\n\n", orUnknown(signals.Timeline))

	fmt.Fprintf(&b, "Strategy: %s\n\n", strategies[signals.Temperature])

	if len(questions) > 0 {
		b.WriteString("Work in these questions where natural:\n")
		for _, q := range questions {
			fmt.Fprintf(&b, "  - %s\n", q)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "The message you are replying to:\n%s\n\n", msg.Body)

	fmt.Fprintf(&b, "Write the reply now. Keep it under %d words. Sign as %s.\n", wordLimit, personality.SignOff)

	return b.String()
}

// QualifyingQuestions picks at most two questions for the reply: one
// per still-unknown BANT dimension in budget, authority, need,
// timeline order (timeline only for hot leads), then one
// temperature-specific discovery question.
func QualifyingQuestions(signals leadsignals.Signals) []string {
	candidates := make([]string, 0, 5)

	if signals.Budget == leadsignals.StrengthUnknown {
		candidates = append(candidates, "Do you have a budget set aside for this?")
	}
	if signals.Authority == leadsignals.StrengthUnknown {
		candidates = append(candidates, "Who else would be involved in this decision?")
	}
	if signals.Need == leadsignals.StrengthUnknown {
		candidates = append(candidates, "What problem are you hoping to solve?")
	}
	if signals.Timeline == leadsignals.StrengthUnknown && signals.Temperature == leadsignals.TemperatureHot {
		candidates = append(candidates, "When are you looking to get started?")
	}

	candidates = append(candidates, discoveryQuestions[signals.Temperature])

	if len(candidates) > maxQualifyingQuestions {
		candidates = candidates[:maxQualifyingQuestions]
	}
	return candidates
}

func orUnknown(s leadsignals.Strength) string {
	if s == leadsignals.StrengthUnknown {
		return "unknown"
	}
	return string(s)
}
