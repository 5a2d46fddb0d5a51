// Package checklists provides reusable checklist templates and per-visit
// checklist instances with photo evidence stored in object storage.
package checklists

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"fieldops_backend/internal/storage"
	"fieldops_backend/platform/apperr"
	"fieldops_backend/platform/logger"
	"fieldops_backend/platform/sanitize"
)

type Service struct {
	repo        *Repository
	store       storage.StorageService
	photoBucket string
	log         *logger.Logger
}

// NewService wires the checklist service. store may be nil when object
// storage is disabled; photo operations then return a validation error.
func NewService(repo *Repository, store storage.StorageService, photoBucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, photoBucket: photoBucket, log: log}
}

// SeedDefaults creates the built-in templates for a new organization.
// It is a no-op when the organization already has templates, so replayed
// events do not duplicate them.
func (s *Service) SeedDefaults(ctx context.Context, organizationID uuid.UUID) error {
	count, err := s.repo.CountTemplates(ctx, organizationID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds, err := loadSeedTemplates()
	if err != nil {
		return err
	}

	for _, seed := range seeds {
		items := make([]NewTemplateItem, 0, len(seed.Items))
		for _, item := range seed.Items {
			items = append(items, NewTemplateItem{Label: item.Label, RequiresPhoto: item.RequiresPhoto})
		}
		description := seed.Description
		if _, err := s.repo.CreateTemplate(ctx, organizationID, seed.Name, &description, items); err != nil {
			return fmt.Errorf("seed template %q: %w", seed.Name, err)
		}
	}

	s.log.Info("seeded default checklist templates", "organization_id", organizationID, "count", len(seeds))
	return nil
}

func (s *Service) CreateTemplate(ctx context.Context, organizationID uuid.UUID, name string, description *string, items []NewTemplateItem) (*Template, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("a checklist template needs at least one item")
	}
	for i := range items {
		items[i].Label = sanitize.Text(items[i].Label)
	}
	return s.repo.CreateTemplate(ctx, organizationID, sanitize.Text(name), sanitize.TextPtr(description), items)
}

func (s *Service) GetTemplate(ctx context.Context, id, organizationID uuid.UUID) (*Template, error) {
	return s.repo.GetTemplate(ctx, id, organizationID)
}

func (s *Service) ListTemplates(ctx context.Context, organizationID uuid.UUID, activeOnly bool) ([]Template, error) {
	return s.repo.ListTemplates(ctx, organizationID, activeOnly)
}

func (s *Service) SetTemplateActive(ctx context.Context, id, organizationID uuid.UUID, active bool) error {
	return s.repo.SetTemplateActive(ctx, id, organizationID, active)
}

// StartChecklist creates a working checklist from an active template,
// optionally tied to a visit.
func (s *Service) StartChecklist(ctx context.Context, organizationID, templateID uuid.UUID, visitID *uuid.UUID) (*Instance, error) {
	tpl, err := s.repo.GetTemplate(ctx, templateID, organizationID)
	if err != nil {
		return nil, err
	}
	if !tpl.IsActive {
		return nil, apperr.Validation("cannot start a checklist from an archived template")
	}
	return s.repo.CreateInstance(ctx, organizationID, templateID, visitID)
}

func (s *Service) GetChecklist(ctx context.Context, id, organizationID uuid.UUID) (*Instance, error) {
	return s.repo.GetInstance(ctx, id, organizationID)
}

func (s *Service) ListChecklists(ctx context.Context, organizationID uuid.UUID, visitID *uuid.UUID, status string) ([]Instance, error) {
	return s.repo.ListInstances(ctx, organizationID, visitID, status)
}

func (s *Service) UpdateItem(ctx context.Context, itemID, organizationID uuid.UUID, params UpdateItemParams) (*InstanceItem, error) {
	params.Note = sanitize.TextPtr(params.Note)
	return s.repo.UpdateInstanceItem(ctx, itemID, organizationID, params)
}

// Complete closes a checklist. Every item must be done, and items that
// require photo evidence must have one attached.
func (s *Service) Complete(ctx context.Context, id, organizationID uuid.UUID) (*Instance, error) {
	inst, err := s.repo.GetInstance(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	if inst.Status != "open" {
		return nil, apperr.Validation("checklist is already completed")
	}
	for _, item := range inst.Items {
		if !item.IsDone {
			return nil, apperr.Validation("all checklist items must be done before completing")
		}
		if item.RequiresPhoto && item.PhotoKey == nil {
			return nil, apperr.Validation("item \"" + item.Label + "\" requires a photo")
		}
	}
	return s.repo.CompleteInstance(ctx, id, organizationID)
}

// PhotoUploadURL presigns an upload for a checklist item photo. The caller
// uploads directly to object storage, then records the returned file key on
// the item.
func (s *Service) PhotoUploadURL(ctx context.Context, organizationID, instanceID uuid.UUID, fileName, contentType string, sizeBytes int64) (*storage.PresignedURL, error) {
	if s.store == nil {
		return nil, apperr.Validation("photo storage is not configured")
	}
	if !storage.IsImageContentType(contentType) {
		return nil, apperr.Validation("checklist photos must be images")
	}
	if err := s.store.ValidateFileSize(sizeBytes); err != nil {
		return nil, apperr.Validation(err.Error())
	}

	// Instance lookup doubles as the org scoping check.
	if _, err := s.repo.GetInstance(ctx, instanceID, organizationID); err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("%s/%s", organizationID, instanceID)
	return s.store.GenerateUploadURL(ctx, s.photoBucket, folder, fileName, contentType, sizeBytes)
}

// PhotoDownloadURL presigns a download for an item's attached photo.
func (s *Service) PhotoDownloadURL(ctx context.Context, organizationID, itemID uuid.UUID) (*storage.PresignedURL, error) {
	if s.store == nil {
		return nil, apperr.Validation("photo storage is not configured")
	}

	item, err := s.repo.getInstanceItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	// Scope the item to the caller's organization via its instance.
	if _, err := s.repo.GetInstance(ctx, item.InstanceID, organizationID); err != nil {
		return nil, err
	}
	if item.PhotoKey == nil {
		return nil, apperr.NotFound("no photo attached to this item")
	}
	return s.store.GenerateDownloadURL(ctx, s.photoBucket, *item.PhotoKey)
}
