package integrations

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldops_backend/platform/httpkit"
	"fieldops_backend/platform/validator"
)

type connectRingCentralRequest struct {
	ClientID     string `json:"clientId" validate:"required"`
	ClientSecret string `json:"clientSecret" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type connectHousecallRequest struct {
	APIKey string `json:"apiKey" validate:"required"`
}

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) ConnectRingCentral(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req connectRingCentralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	err := h.svc.ConnectRingCentral(c.Request.Context(), orgID, ConnectRingCentralParams{
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"provider": ProviderRingCentral, "isConnected": true})
}

func (h *Handler) ConnectHousecall(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req connectHousecallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.svc.ConnectHousecall(c.Request.Context(), orgID, req.APIKey); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"provider": ProviderHousecall, "isConnected": true})
}

func (h *Handler) Disconnect(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	if err := h.svc.Disconnect(c.Request.Context(), orgID, c.Param("provider")); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"provider": c.Param("provider"), "isConnected": false})
}

func (h *Handler) Status(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	status, err := h.svc.Status(c.Request.Context(), orgID, c.Param("provider"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, status)
}
