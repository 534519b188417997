// Package detect scores inbound messages for scam intent.
//
// Scoring is a deterministic sum over lexical signals: five phrase categories,
// each contributing min(matches*weight, cap), plus a flat bonus when a link is
// present. The total is clamped to [0, 1].
package detect

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// DefaultThreshold is the confidence at or above which a message is a scam.
const DefaultThreshold = 0.6

// NoIndicators is the reason reported when no category fired.
const NoIndicators = "no scam indicators detected"

const linkWeight = 0.20

// Category is a weighted phrase list.
type Category struct {
	Name    string // used in the reason, e.g. "urgency tactics"
	Phrases []string
	Weight  float64 // contribution per matching phrase
	Cap     float64 // maximum contribution of the category
}

// linkPattern matches http(s) links.
var linkPattern = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(),]|%[0-9a-fA-F]{2})+`) //nolint:gochecknoglobals // compiled regexp

// DefaultCategories returns the built-in phrase categories. The lists are disjoint.
func DefaultCategories() []Category {
	return []Category{
		{
			Name: "urgency tactics",
			Phrases: []string{
				"urgent", "immediately", "now", "today", "expire", "suspend",
				"blocked", "locked", "verify", "confirm", "update required",
			},
			Weight: 0.15,
			Cap:    0.30,
		},
		{
			Name: "financial threats",
			Phrases: []string{
				"bank account", "account blocked", "account is blocked", "account suspended",
				"fraud detected", "unauthorized transaction", "verify account", "security alert",
				"suspicious activity", "account deactivated", "penalty",
			},
			Weight: 0.20,
			Cap:    0.35,
		},
		{
			Name: "sensitive data requests",
			Phrases: []string{
				"upi", "pin", "otp", "password", "cvv", "card number", "account number",
				"aadhaar", "pan", "debit card", "credit card", "net banking", "atm pin",
				"security code", "your account",
			},
			Weight: 0.25,
			Cap:    0.40,
		},
		{
			Name: "impersonation",
			Phrases: []string{
				"rbi", "reserve bank", "income tax", "government", "police",
				"cyber crime", "tax department", "customs", "enforcement",
			},
			Weight: 0.20,
			Cap:    0.30,
		},
		{
			Name: "reward/prize tactics",
			Phrases: []string{
				"won", "prize", "lottery", "reward", "cashback", "refund",
				"gift", "offer", "claim", "free", "congratulations",
			},
			Weight: 0.15,
			Cap:    0.25,
		},
	}
}

// Signal is the contribution of one category to a verdict.
type Signal struct {
	Category string  `json:"category"`
	Matches  int     `json:"matches"`
	Score    float64 `json:"score"`
}

// Verdict is the result of scoring one message.
type Verdict struct {
	IsScam     bool     `json:"isScam"`
	Confidence float64  `json:"confidence"`
	Signals    []Signal `json:"signals"` // only categories that fired
	Reasons    []string `json:"reasons"`
}

// Reason joins the reasons, or returns NoIndicators when nothing fired.
func (v Verdict) Reason() string {
	if len(v.Reasons) == 0 {
		return NoIndicators
	}
	return strings.Join(v.Reasons, "; ")
}

// Scorer evaluates message text against phrase categories. It is safe for
// concurrent use.
type Scorer struct {
	categories []Category
	threshold  float64
}

// NewScorer creates a Scorer with the default categories. A non-positive
// threshold falls back to DefaultThreshold.
func NewScorer(threshold float64) *Scorer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scorer{categories: DefaultCategories(), threshold: threshold}
}

// Threshold returns the configured scam threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score evaluates text. It never fails.
func (s *Scorer) Score(text string) Verdict {
	lower := strings.ToLower(text)

	var v Verdict
	total := 0.0
	for _, c := range s.categories {
		n := countPhrases(lower, c.Phrases)
		if n == 0 {
			continue
		}
		contribution := math.Min(float64(n)*c.Weight, c.Cap)
		total += contribution
		v.Signals = append(v.Signals, Signal{Category: c.Name, Matches: n, Score: contribution})
		v.Reasons = append(v.Reasons, fmt.Sprintf("%s (%d indicators)", c.Name, n))
	}

	if links := linkPattern.FindAllString(lower, -1); len(links) > 0 {
		total += linkWeight
		v.Signals = append(v.Signals, Signal{Category: "suspicious links", Matches: len(links), Score: linkWeight})
		v.Reasons = append(v.Reasons, fmt.Sprintf("suspicious links (%d found)", len(links)))
	}

	v.Confidence = clamp(round4(total))
	v.IsScam = v.Confidence >= s.threshold
	return v
}

// countPhrases counts how many distinct phrases occur in text.
func countPhrases(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}

// round4 removes float noise so sums such as 0.15+0.20+0.25 compare equal to 0.6.
func round4(f float64) float64 {
	return math.Round(f*1e4) / 1e4
}

func clamp(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}
