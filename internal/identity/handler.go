package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldops_backend/platform/httpkit"
	"fieldops_backend/platform/validator"
)

type provisionRequest struct {
	Name             string `json:"name" validate:"required,max=200"`
	AdminEmail       string `json:"adminEmail" validate:"required,email"`
	AdminPassword    string `json:"adminPassword" validate:"required,min=8"`
	AdminDisplayName string `json:"adminDisplayName" validate:"max=200"`
}

type renameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type createLocationRequest struct {
	Name                  string  `json:"name" validate:"required,max=200"`
	Address               *string `json:"address" validate:"omitempty,max=500"`
	RingCentralLocationID *string `json:"ringcentralLocationId" validate:"omitempty,max=100"`
}

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) Provision(c *gin.Context) {
	var req provisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.Provision(c.Request.Context(), ProvisionParams{
		Name:             req.Name,
		AdminEmail:       req.AdminEmail,
		AdminPassword:    req.AdminPassword,
		AdminDisplayName: req.AdminDisplayName,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) GetOrganization(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	org, err := h.svc.GetOrganization(c.Request.Context(), orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, org)
}

func (h *Handler) RenameOrganization(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	org, err := h.svc.RenameOrganization(c.Request.Context(), orgID, req.Name)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, org)
}

func (h *Handler) CreateLocation(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	loc, err := h.svc.CreateLocation(c.Request.Context(), orgID, req.Name, req.Address, req.RingCentralLocationID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, loc)
}

func (h *Handler) ListLocations(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	locations, err := h.svc.ListLocations(c.Request.Context(), orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"items": locations})
}

func (h *Handler) DeleteLocation(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	locationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid location ID", err)
		return
	}

	if err := h.svc.DeleteLocation(c.Request.Context(), orgID, locationID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}
