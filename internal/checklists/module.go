package checklists

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"fieldops_backend/internal/events"
	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/internal/storage"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/validator"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, store storage.StorageService, photoBucket string, bus events.Bus, log *logger.Logger, val *validator.Validator) *Module {
	svc := NewService(NewRepository(pool), store, photoBucket, log)

	// Every new organization starts with the built-in templates.
	bus.Subscribe(events.OrganizationCreated{}.EventName(), events.HandlerFunc(
		func(ctx context.Context, event events.Event) error {
			created, ok := event.(events.OrganizationCreated)
			if !ok {
				return nil
			}
			return svc.SeedDefaults(ctx, created.OrganizationID)
		}))

	return &Module{handler: NewHandler(svc, val), service: svc}
}

func (m *Module) Name() string {
	return "checklists"
}

func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/checklists")

	group.GET("/templates", m.handler.ListTemplates)
	group.GET("/templates/:id", m.handler.GetTemplate)

	group.POST("", m.handler.StartChecklist)
	group.GET("", m.handler.ListChecklists)
	group.GET("/:id", m.handler.GetChecklist)
	group.POST("/:id/complete", m.handler.Complete)
	group.POST("/:id/photo-upload-url", m.handler.PhotoUploadURL)
	group.PUT("/items/:itemId", m.handler.UpdateItem)
	group.GET("/items/:itemId/photo-url", m.handler.PhotoDownloadURL)

	admin := ctx.Admin.Group("/checklists")
	admin.POST("/templates", m.handler.CreateTemplate)
	admin.POST("/templates/:id/archive", m.handler.ArchiveTemplate)
}
