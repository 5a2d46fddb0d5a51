package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldops_backend/internal/calls/service"
	"fieldops_backend/internal/calls/transport"
	"fieldops_backend/platform/httpkit"
	"fieldops_backend/platform/validator"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Sync triggers a synchronization pass. The response is always 200: the
// body's success flag and error field carry the outcome so callers never
// have to distinguish transport failures from sync failures.
func (h *Handler) Sync(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req transport.SyncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	resp := h.svc.Sync(c.Request.Context(), orgID, req)
	httpkit.OK(c, resp)
}

func (h *Handler) List(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req transport.ListCallLogsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query parameters", err)
		return
	}

	resp, err := h.svc.ListCallLogs(c.Request.Context(), orgID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid call log ID", err)
		return
	}

	resp, err := h.svc.GetCallLog(c.Request.Context(), id, orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}
