// Package backends holds the reply generators selectable by name.
package backends

import "github.com/gosuda/honeypot/internal/agent"

// Register adds every built-in backend to reg.
func Register(reg *agent.Registry) {
	reg.Register(GeminiName, NewGeminiBackend)
	reg.Register(OllamaName, NewOllamaBackend)
	reg.Register(CannedName, NewCannedBackend)
}
