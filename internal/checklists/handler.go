package checklists

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fieldops_backend/platform/httpkit"
	"fieldops_backend/platform/validator"
)

type templateItemRequest struct {
	Label         string `json:"label" validate:"required,min=1,max=500"`
	RequiresPhoto bool   `json:"requiresPhoto"`
}

type createTemplateRequest struct {
	Name        string                `json:"name" validate:"required,min=1,max=200"`
	Description *string               `json:"description" validate:"omitempty,max=2000"`
	Items       []templateItemRequest `json:"items" validate:"required,min=1,dive"`
}

type startChecklistRequest struct {
	TemplateID uuid.UUID  `json:"templateId" validate:"required"`
	VisitID    *uuid.UUID `json:"visitId"`
}

type updateItemRequest struct {
	IsDone   *bool   `json:"isDone"`
	Note     *string `json:"note" validate:"omitempty,max=2000"`
	PhotoKey *string `json:"photoKey" validate:"omitempty,max=500"`
}

type photoUploadRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,min=1"`
}

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	items := make([]NewTemplateItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, NewTemplateItem{Label: item.Label, RequiresPhoto: item.RequiresPhoto})
	}

	tpl, err := h.svc.CreateTemplate(c.Request.Context(), orgID, req.Name, req.Description, items)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, tpl)
}

func (h *Handler) ListTemplates(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	templates, err := h.svc.ListTemplates(c.Request.Context(), orgID, c.Query("active") == "true")
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"items": templates})
}

func (h *Handler) GetTemplate(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid template ID", err)
		return
	}

	tpl, err := h.svc.GetTemplate(c.Request.Context(), id, orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, tpl)
}

func (h *Handler) ArchiveTemplate(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid template ID", err)
		return
	}

	if err := h.svc.SetTemplateActive(c.Request.Context(), id, orgID, false); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"archived": true})
}

func (h *Handler) StartChecklist(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var req startChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	inst, err := h.svc.StartChecklist(c.Request.Context(), orgID, req.TemplateID, req.VisitID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, inst)
}

func (h *Handler) ListChecklists(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	var visitID *uuid.UUID
	if raw := c.Query("visitId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid visit ID", err)
			return
		}
		visitID = &id
	}

	instances, err := h.svc.ListChecklists(c.Request.Context(), orgID, visitID, c.Query("status"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"items": instances})
}

func (h *Handler) GetChecklist(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid checklist ID", err)
		return
	}

	inst, err := h.svc.GetChecklist(c.Request.Context(), id, orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, inst)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid item ID", err)
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	item, err := h.svc.UpdateItem(c.Request.Context(), itemID, orgID, UpdateItemParams{
		IsDone:   req.IsDone,
		Note:     req.Note,
		PhotoKey: req.PhotoKey,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, item)
}

func (h *Handler) Complete(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid checklist ID", err)
		return
	}

	inst, err := h.svc.Complete(c.Request.Context(), id, orgID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, inst)
}

func (h *Handler) PhotoUploadURL(c *gin.Context) {
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
		httpkit.Error(c, http.StatusBadRequest, "invalid checklist ID", err)
		return
	}

	var req photoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	url, err := h.svc.PhotoUploadURL(c.Request.Context(), orgID, id, req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, url)
}

func (h *Handler) PhotoDownloadURL(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	orgID, ok := httpkit.MustGetOrgID(c, identity)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid item ID", err)
		return
	}

	url, err := h.svc.PhotoDownloadURL(c.Request.Context(), orgID, itemID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, url)
}
