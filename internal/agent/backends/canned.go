package backends

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/gosuda/honeypot/internal/agent"
)

const CannedName = "canned"

//nolint:gochecknoglobals // fixed vocabulary
var (
	cannedFirst = []string{
		"Oh no, what happened to my account?",
		"Who is this? Is something wrong?",
		"I didn't expect this message. What is it about?",
	}
	cannedProbing = []string{
		"Can you tell me which bank you are calling from?",
		"I'm a bit worried. What exactly do I need to do?",
		"How do I know this message is real?",
		"Is there an official number I can call back on?",
	}
)

// CannedBackend answers without any model. It is meant for offline runs and
// demos, and picks a line deterministically from the prompt.
type CannedBackend struct{}

func NewCannedBackend(agent.BackendOptions) (agent.Generator, error) {
	return &CannedBackend{}, nil
}

func (b *CannedBackend) Generate(_ context.Context, prompt agent.Prompt) (string, error) {
	lines := cannedProbing
	if !strings.HasPrefix(prompt.User, "Conversation so far:") {
		lines = cannedFirst
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt.User))

	return lines[h.Sum32()%uint32(len(lines))], nil
}
