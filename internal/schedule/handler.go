package schedule

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldops_backend/platform/httpkit"
	"fieldops_backend/platform/validator"
)

type createTechnicianRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=200"`
	Phone *string `json:"phone" validate:"omitempty,max=30"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type updateTechnicianRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Email    *string `json:"email" validate:"omitempty,email"`
	IsActive *bool   `json:"isActive"`
}

type createVisitRequest struct {
	TechnicianID   *uuid.UUID `json:"technicianId"`
	CRMCustomerID  *string    `json:"crmCustomerId" validate:"omitempty,max=100"`
	CRMJobID       *string    `json:"crmJobId" validate:"omitempty,max=100"`
	Summary        string     `json:"summary" validate:"max=2000"`
	ScheduledStart time.Time  `json:"scheduledStart" validate:"required"`
	ScheduledEnd   *time.Time `json:"scheduledEnd"`
}

type updateVisitRequest struct {
	TechnicianID   *uuid.UUID `json:"technicianId"`
	Summary        *string    `json:"summary" validate:"omitempty,max=2000"`
	ScheduledStart *time.Time `json:"scheduledStart"`
	ScheduledEnd   *time.Time `json:"scheduledEnd"`
	Status         *string    `json:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
}

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) CreateTechnician(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req createTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	tech, err := h.svc.CreateTechnician(c.Request.Context(), orgID, req.Name, req.Phone, req.Email)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, tech)
}

func (h *Handler) ListTechnicians(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	techs, err := h.svc.ListTechnicians(c.Request.Context(), orgID, c.Query("active") == "true")
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"items": techs})
}

func (h *Handler) GetTechnician(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid technician ID", err)
		return
	}

	tech, err := h.svc.GetTechnician(c.Request.Context(), id, orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, tech)
}

func (h *Handler) UpdateTechnician(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid technician ID", err)
		return
	}

	var req updateTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	tech, err := h.svc.UpdateTechnician(c.Request.Context(), id, orgID, UpdateTechnicianParams{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		IsActive: req.IsActive,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, tech)
}

func (h *Handler) CreateVisit(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req createVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	visit, err := h.svc.CreateVisit(c.Request.Context(), CreateVisitParams{
		OrganizationID: orgID,
		TechnicianID:   req.TechnicianID,
		CRMCustomerID:  req.CRMCustomerID,
		CRMJobID:       req.CRMJobID,
		Summary:        req.Summary,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, visit)
}

func (h *Handler) ListVisits(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	params := ListVisitsParams{OrganizationID: orgID, Status: c.Query("status")}

	if raw := c.Query("technicianId"); raw != "" {
		techID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid technician ID", err)
			return
		}
		params.TechnicianID = &techID
	}

	if raw := c.Query("day"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid day, expected YYYY-MM-DD", err)
			return
		}
		visits, err := h.svc.ListVisitsForDay(c.Request.Context(), orgID, day, params.TechnicianID)
		if err != nil {
			httpkit.HandleError(c, err)
			return
		}
		httpkit.OK(c, gin.H{"items": visits})
		return
	}

	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid from timestamp", err)
			return
		}
		params.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid to timestamp", err)
			return
		}
		params.To = &to
	}

	visits, err := h.svc.ListVisits(c.Request.Context(), params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"items": visits})
}

func (h *Handler) GetVisit(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid visit ID", err)
		return
	}

	visit, err := h.svc.GetVisit(c.Request.Context(), id, orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, visit)
}

func (h *Handler) UpdateVisit(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid visit ID", err)
		return
	}

	var req updateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	visit, err := h.svc.UpdateVisit(c.Request.Context(), id, orgID, UpdateVisitParams{
		TechnicianID:   req.TechnicianID,
		Summary:        req.Summary,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		Status:         req.Status,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, visit)
}

func (h *Handler) DeleteVisit(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid visit ID", err)
		return
	}

	if err := h.svc.DeleteVisit(c.Request.Context(), id, orgID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"deleted": true})
}
