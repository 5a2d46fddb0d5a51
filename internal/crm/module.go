package crm

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/internal/events"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/validator"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(
	pool *pgxpool.Pool,
	keys APIKeyProvider,
	bus events.Bus,
	cfg config.CRMConfig,
	log *logger.Logger,
	val *validator.Validator,
) *Module {
	repo := NewRepository(pool)
	client := NewHousecallClient(cfg.GetHousecallBaseURL())
	svc := NewService(repo, client, keys, bus, log)

	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

func (m *Module) Name() string {
	return "crm"
}

// Service exposes the mirror for the call correlation snapshots and the
// background refresh worker.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/crm")
	group.POST("/refresh", m.handler.Refresh)
	group.GET("/customers", m.handler.ListCustomers)
	group.POST("/jobs", m.handler.CreateJob)
}
