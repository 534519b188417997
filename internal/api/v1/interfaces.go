package v1

import (
	"context"

	"github.com/gosuda/honeypot/internal/honeypot"
)

// TurnProcessor runs one conversation turn and returns the persona reply.
// *honeypot.Engine satisfies this interface.
type TurnProcessor interface {
	Process(ctx context.Context, turn honeypot.Turn) (string, error)
}

// SessionCounter reports the live session count for health checks.
// *honeypot.Engine satisfies this interface.
type SessionCounter interface {
	ActiveSessions(ctx context.Context) (int, error)
}

// ServiceInfo identifies the running service on the status endpoints.
type ServiceInfo struct {
	Name        string
	Version     string
	Environment string
}
