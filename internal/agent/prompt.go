package agent

import (
	"fmt"
	"strings"

	"github.com/gosuda/honeypot/internal/domain"
)

// MaxContextMessages bounds how much history is shown to the generator.
const MaxContextMessages = 10

// Persona is the system instruction shared by every backend.
const Persona = `You are playing the role of a regular person who has received a suspicious message.

Your goal is to:
1. Appear curious but slightly cautious
2. Ask clarifying questions to extract information
3. Never reveal that you know it's a scam
4. Gradually appear more convinced, but still hesitant
5. Request details like account numbers, links, phone numbers, etc.
6. Keep responses short and natural (1-2 sentences)
7. Use casual language, occasional typos are okay
8. Show mild concern but be willing to comply if given "proof"

CRITICAL RULES:
- NEVER say you know it's a scam
- NEVER mention you're extracting information
- NEVER be too smart or suspicious
- Act like a regular person who might fall for it
- Keep responses brief and conversational

Remember: You're trying to get the scammer to reveal more details by playing along convincingly.`

// Request is everything a reply generator needs for one turn.
type Request struct {
	Directive Directive
	// History is the recent window shown to the generator.
	History []domain.Message
	// HistoryLength is the size of the full conversation before Latest.
	// It may exceed len(History) once the window is cut.
	HistoryLength int
	Latest        string
}

// TotalHistory is the full history length, never less than the window.
func (r Request) TotalHistory() int {
	return max(r.HistoryLength, len(r.History))
}

// Prompt is the rendered input handed to a Generator.
type Prompt struct {
	System string
	User   string
}

// RecentHistory returns at most the last MaxContextMessages messages.
func RecentHistory(history []domain.Message) []domain.Message {
	if len(history) <= MaxContextMessages {
		return history
	}
	return history[len(history)-MaxContextMessages:]
}

// Transcript renders messages as "Scammer:"/"You:" lines.
func Transcript(history []domain.Message) string {
	lines := make([]string, 0, len(history))
	for _, m := range history {
		label := "You"
		if m.FromCounterparty() {
			label = "Scammer"
		}
		lines = append(lines, label+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt renders the persona, transcript and stage instruction.
func BuildPrompt(req Request) Prompt {
	var b strings.Builder

	if req.Directive.Stage == StageInitial {
		fmt.Fprintf(&b, "The scammer just sent: %q\n\n", req.Latest)
	} else {
		fmt.Fprintf(&b, "Conversation so far:\n%s\n\n", Transcript(RecentHistory(req.History)))
		fmt.Fprintf(&b, "Latest message from scammer: %q\n\n", req.Latest)
	}

	b.WriteString(req.Directive.Instruction)
	b.WriteString("\n\nYour response:")

	return Prompt{System: Persona, User: b.String()}
}
