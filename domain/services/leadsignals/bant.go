package leadsignals

import (
	"regexp"
	"strings"
)

// Strength grades one BANT dimension. The zero value means the
// dimension is still unknown.
type Strength string

const (
	StrengthUnknown    Strength = ""
	StrengthMentioned  Strength = "mentioned"
	StrengthLikely     Strength = "likely"
	StrengthInfluencer Strength = "influencer"
	StrengthExpressed  Strength = "expressed"
	StrengthUrgent     Strength = "urgent"
	StrengthFuture     Strength = "future"
)

// StageDiscovery is the default qualification stage for new leads
const StageDiscovery = "discovery"

// Signals is the ephemeral qualification snapshot of one message
type Signals struct {
	Temperature Temperature `json:"temperature"`
	Budget      Strength    `json:"budget,omitempty"`
	Authority   Strength    `json:"authority,omitempty"`
	Need        Strength    `json:"need,omitempty"`
	Timeline    Strength    `json:"timeline,omitempty"`
	Stage       string      `json:"stage"`
}

var (
	budgetPattern = regexp.MustCompile(`\b(budget|cost|price|pricing|invest(ment)?|spend(ing)?|afford)\b`)

	// First-person decision language
	authorityLikelyPattern = regexp.MustCompile(`\bi\s+(will\s+)?(decide|approve|sign)\b|\bmy\s+(decision|call)\b|\bi['’]?m\s+the\s+(owner|founder|ceo|decision\s*maker)\b`)

	// Deferred-decision language; checked after the first-person
	// pattern, so it overwrites likely when both match
	authorityInfluencerPattern = regexp.MustCompile(`\bneed\s+(to\s+get\s+)?approval\b|\bcheck\s+with\b|\brun\s+(this|it)\s+by\b|\bget\s+sign[- ]?off\b`)

	needPattern = regexp.MustCompile(`\b(need|problem|challenge|pain\s*point)s?\b|\bstruggling\b|\blooking\s+for\s+a\s+solution\b`)

	timelineUrgentPattern = regexp.MustCompile(`\b(urgent(ly)?|asap|immediately|right\s+away)\b|\bas\s+soon\s+as\s+possible\b|\bthis\s+(week|month)\b`)
	timelineFuturePattern = regexp.MustCompile(`\bnext\s+(quarter|year)\b|\b(someday|eventually)\b|\bdown\s+the\s+(road|line)\b|\bin\s+the\s+future\b|\bno\s+rush\b`)
)

// ExtractBANT runs the independent qualification checks against the
// lower-cased text. Checks run in sequence; every field stays unknown
// unless its pattern matches.
func ExtractBANT(text string) Signals {
	lowered := strings.ToLower(text)

	signals := Signals{Stage: StageDiscovery}

	if budgetPattern.MatchString(lowered) {
		signals.Budget = StrengthMentioned
	}

	if authorityLikelyPattern.MatchString(lowered) {
		signals.Authority = StrengthLikely
	}
	if authorityInfluencerPattern.MatchString(lowered) {
		signals.Authority = StrengthInfluencer
	}

	if needPattern.MatchString(lowered) {
		signals.Need = StrengthExpressed
	}

	if timelineUrgentPattern.MatchString(lowered) {
		signals.Timeline = StrengthUrgent
	} else if timelineFuturePattern.MatchString(lowered) {
		signals.Timeline = StrengthFuture
	}

	return signals
}

// Classify produces the full signal set for a message: temperature
// plus the BANT snapshot.
func Classify(text string) Signals {
	signals := ExtractBANT(text)
	signals.Temperature = ClassifyTemperature(text)
	return signals
}
