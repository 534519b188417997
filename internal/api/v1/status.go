package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type RootOutput struct {
	Body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Version string `json:"version"`
	}
}

type HealthOutput struct {
	Body struct {
		Status         string `json:"status"`
		ActiveSessions int    `json:"active_sessions"`
		Environment    string `json:"environment"`
	}
}

func RegisterStatusRoutes(api huma.API, info ServiceInfo, sessions SessionCounter) {
	huma.Register(api, huma.Operation{
		OperationID: "get-root",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "Service banner",
		Tags:        []string{"Status"},
	}, func(_ context.Context, _ *struct{}) (*RootOutput, error) {
		out := &RootOutput{}
		out.Body.Status = "online"
		out.Body.Service = info.Name
		out.Body.Version = info.Version
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Detailed health check",
		Tags:        []string{"Status"},
	}, func(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
		n, err := sessions.ActiveSessions(ctx)
		if err != nil {
			return nil, huma.Error503ServiceUnavailable("session store unavailable", err)
		}

		out := &HealthOutput{}
		out.Body.Status = "healthy"
		out.Body.ActiveSessions = n
		out.Body.Environment = info.Environment
		return out, nil
	})
}
