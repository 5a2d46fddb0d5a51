package integrations

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/validator"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, cfg config.IntegrationsConfig, val *validator.Validator) *Module {
	svc := NewService(NewRepository(pool), cfg)
	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

func (m *Module) Name() string {
	return "integrations"
}

// Service exposes credential access for the sync pipelines.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/integrations")
	group.POST("/ringcentral/connect", m.handler.ConnectRingCentral)
	group.POST("/housecall/connect", m.handler.ConnectHousecall)
	group.DELETE("/:provider", m.handler.Disconnect)
	group.GET("/:provider/status", m.handler.Status)
}
