// Package leadsignals scores inbound message text for purchase
// readiness. Everything here is pure: no state, no I/O.
package leadsignals

import "strings"

// Temperature is the coarse purchase-readiness classification
type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureWarm Temperature = "warm"
	TemperatureCold Temperature = "cold"
)

// Keyword lists are fixed; scores are summed substring occurrence
// counts against the lower-cased text.
var (
	hotKeywords = []string{
		"pricing",
		"quote",
		"proposal",
		"contract",
		"when can we start",
		"ready to move forward",
		"budget approved",
		"decision",
		"purchase",
		"buy",
		"demo",
		"trial",
	}

	warmKeywords = []string{
		"feature",
		"benefit",
		"case study",
		"reference",
		"compare",
		"vs",
		"difference",
		"integration",
		"implementation",
		"timeline",
		"process",
	}

	coldKeywords = []string{
		"just curious",
		"browsing",
		"heard about",
		"information",
	}
)

// ClassifyTemperature classifies message text as hot, warm or cold.
// The tie-break runs in this exact order: hot wins only when it beats
// both other scores, warm wins on warm >= cold, cold takes the rest.
// A text matching nothing lands on warm because 0 >= 0.
func ClassifyTemperature(text string) Temperature {
	lowered := strings.ToLower(text)

	hotScore := countOccurrences(lowered, hotKeywords)
	warmScore := countOccurrences(lowered, warmKeywords)
	coldScore := countOccurrences(lowered, coldKeywords)

	if hotScore > warmScore && hotScore > coldScore {
		return TemperatureHot
	}
	if warmScore >= coldScore {
		return TemperatureWarm
	}
	return TemperatureCold
}

func countOccurrences(lowered string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		score += strings.Count(lowered, kw)
	}
	return score
}
