package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "fieldops_backend/internal/http"
	"fieldops_backend/platform/config"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/validator"
)

type Module struct {
	handler *Handler
	service *Service
}

func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, log *logger.Logger, val *validator.Validator) *Module {
	svc := NewService(NewRepository(pool), cfg, log)
	return &Module{
		handler: NewHandler(svc, val),
		service: svc,
	}
}

func (m *Module) Name() string {
	return "auth"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/auth")
	group.Use(ctx.AuthRateLimiter.RateLimit())
	group.POST("/sign-in", m.handler.SignIn)
	group.POST("/refresh", m.handler.Refresh)
	group.POST("/sign-out", m.handler.SignOut)

	ctx.Protected.GET("/auth/me", m.handler.Me)
}
