// Package intel extracts actionable identifiers from scam conversations.
package intel

import (
	"regexp"
	"strings"

	"github.com/gosuda/honeypot/internal/domain"
)

//nolint:gochecknoglobals // compiled regexps
var (
	bankAccountPattern = regexp.MustCompile(`\b\d{9,18}\b`)
	upiPattern         = regexp.MustCompile(`\b[a-zA-Z0-9._-]+@[a-zA-Z0-9]+\b`)
	linkPattern        = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(),]|%[0-9a-fA-F]{2})+`)
	phonePattern       = regexp.MustCompile(`(?:\+91|0)?[6789]\d{9}`)
)

// emailProviders are handle domains that indicate a personal email address
// rather than a payment handle.
var emailProviders = []string{"@gmail", "@yahoo", "@hotmail", "@outlook"} //nolint:gochecknoglobals // fixed vocabulary

// Keywords is the suspicious-term vocabulary recorded in the intelligence.
var Keywords = []string{ //nolint:gochecknoglobals // fixed vocabulary
	"urgent", "verify", "blocked", "suspend", "otp", "pin",
	"password", "account", "transfer", "payment", "claim",
	"prize", "reward", "refund", "cashback",
}

// Extractor finds identifiers in message text. The zero value is ready to use.
type Extractor struct{}

// NewExtractor returns an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract folds everything found in text into rec and returns rec.
// Running it again on the same text never grows rec.
func (e *Extractor) Extract(text string, rec *domain.Intelligence) *domain.Intelligence {
	if rec == nil {
		rec = &domain.Intelligence{}
	}

	for _, account := range bankAccountPattern.FindAllString(text, -1) {
		rec.AddBankAccount(account)
	}

	for _, handle := range upiPattern.FindAllString(text, -1) {
		if isPersonalEmail(handle) {
			continue
		}
		rec.AddUPIID(handle)
	}

	for _, link := range linkPattern.FindAllString(text, -1) {
		rec.AddPhishingLink(link)
	}

	for _, phone := range phonePattern.FindAllString(text, -1) {
		rec.AddPhoneNumber(NormalizePhone(phone))
	}

	lower := strings.ToLower(text)
	for _, term := range Keywords {
		if strings.Contains(lower, term) {
			rec.AddKeyword(term)
		}
	}

	return rec
}

// ExtractConversation rebuilds intelligence from scratch over every message in order.
func (e *Extractor) ExtractConversation(messages []domain.Message) *domain.Intelligence {
	rec := &domain.Intelligence{}
	for _, m := range messages {
		e.Extract(m.Text, rec)
	}
	return rec
}

// NormalizePhone strips a +91 country code, or else a single leading trunk 0.
func NormalizePhone(raw string) string {
	if rest, ok := strings.CutPrefix(raw, "+91"); ok {
		return rest
	}
	return strings.TrimPrefix(raw, "0")
}

func isPersonalEmail(handle string) bool {
	lower := strings.ToLower(handle)
	for _, provider := range emailProviders {
		if strings.Contains(lower, provider) {
			return true
		}
	}
	return false
}
