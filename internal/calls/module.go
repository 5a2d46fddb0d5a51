// Package calls wires the call synchronization module: RingCentral call log
// retrieval, customer matching, job linking, and the HTTP surface.
package calls

import (
	"fieldops_backend/internal/calls/handler"
	"fieldops_backend/internal/calls/repository"
	"fieldops_backend/internal/calls/ringcentral"
	"fieldops_backend/internal/calls/service"
	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/internal/events"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(
	pool *pgxpool.Pool,
	client *ringcentral.Client,
	tokens service.TokenStore,
	refs service.ReferenceLoader,
	archiver service.RecordingArchiver,
	bus events.Bus,
	cfg config.CallSyncConfig,
	log *logger.Logger,
	val *validator.Validator,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, client, tokens, refs, archiver, bus, cfg, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

func (m *Module) Name() string {
	return "calls"
}

// Service exposes the sync service for background workers.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/calls")
	group.POST("/sync", m.handler.Sync)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
}
