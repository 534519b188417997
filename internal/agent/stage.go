package agent

// Stage is the escalation level of the persona within a conversation.
type Stage int

const (
	StageInitial Stage = iota // first contact
	StageEarly                // a few exchanges in
	StageLate                 // long-running engagement
)

// earlyStageLimit is the history length at which the persona moves to StageLate.
const earlyStageLimit = 5

// String implements fmt.Stringer.
func (s Stage) String() string {
	switch s {
	case StageInitial:
		return "initial"
	case StageEarly:
		return "early"
	case StageLate:
		return "late"
	default:
		return "unknown"
	}
}

// Directive tells the reply generator how to behave for the current turn.
type Directive struct {
	Stage       Stage
	Instruction string
}

//nolint:gochecknoglobals // fixed prompt text
var directives = map[Stage]Directive{
	StageInitial: {
		Stage:       StageInitial,
		Instruction: "This is the FIRST message in the conversation. Respond with mild concern or curiosity. Ask a simple question.",
	},
	StageEarly: {
		Stage:       StageEarly,
		Instruction: "You're still early in the conversation. Be cautious but show interest. Ask for more details or clarification.",
	},
	StageLate: {
		Stage:       StageLate,
		Instruction: "You've been talking for a while. Start appearing more convinced, but still request specific details like account numbers, links, or contact information.",
	},
}

// StageFor maps the length of the caller-supplied history to a directive.
// Negative lengths are treated as zero.
func StageFor(historyLength int) Directive {
	switch {
	case historyLength <= 0:
		return directives[StageInitial]
	case historyLength < earlyStageLimit:
		return directives[StageEarly]
	default:
		return directives[StageLate]
	}
}
