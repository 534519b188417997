package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/gosuda/honeypot/internal/api/v1"
)

func registerStatusRoutes(api huma.API, info v1.ServiceInfo, sessions v1.SessionCounter) {
	v1.RegisterStatusRoutes(api, info, sessions)
}

func registerHoneypotRoutes(api huma.API, processor v1.TurnProcessor) {
	v1.RegisterHoneypotRoutes(api, processor)
}
