// Package service implements inventory business rules: item lifecycle,
// audited stock adjustments, and low-stock reporting.
package service

import (
	"context"

	"github.com/google/uuid"

	"fieldops_backend/internal/inventory/repository"
	"fieldops_backend/internal/inventory/transport"
	"fieldops_backend/platform/sanitize"
)

type Service struct {
	repo repository.Repository
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateItem(ctx context.Context, organizationID uuid.UUID, req transport.CreateItemRequest) (*transport.ItemResponse, error) {
	unit := req.Unit
	if unit == "" {
		unit = "each"
	}

	item, err := s.repo.Create(ctx, repository.CreateItemParams{
		OrganizationID:  organizationID,
		Name:            sanitize.Text(req.Name),
		SKU:             sanitize.TextPtr(req.SKU),
		Unit:            unit,
		Quantity:        req.Quantity,
		ReorderLevel:    req.ReorderLevel,
		StorageLocation: sanitize.TextPtr(req.StorageLocation),
		Notes:           sanitize.TextPtr(req.Notes),
	})
	if err != nil {
		return nil, err
	}
	resp := toItemResponse(*item)
	return &resp, nil
}

func (s *Service) GetItem(ctx context.Context, id, organizationID uuid.UUID) (*transport.ItemResponse, error) {
	item, err := s.repo.GetByID(ctx, id, organizationID)
	if err != nil {
		return nil, err
	}
	resp := toItemResponse(*item)
	return &resp, nil
}

func (s *Service) ListItems(ctx context.Context, organizationID uuid.UUID, search string, lowStockOnly bool, limit, offset int) (*transport.ListItemsResponse, error) {
	items, total, err := s.repo.List(ctx, organizationID, sanitize.Text(search), lowStockOnly, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toItemResponse(item))
	}
	return &transport.ListItemsResponse{Items: responses, Total: total}, nil
}

func (s *Service) UpdateItem(ctx context.Context, id, organizationID uuid.UUID, req transport.UpdateItemRequest) (*transport.ItemResponse, error) {
	item, err := s.repo.Update(ctx, id, organizationID, repository.UpdateItemParams{
		Name:            sanitize.TextPtr(req.Name),
		Unit:            req.Unit,
		ReorderLevel:    req.ReorderLevel,
		StorageLocation: sanitize.TextPtr(req.StorageLocation),
		Notes:           sanitize.TextPtr(req.Notes),
	})
	if err != nil {
		return nil, err
	}
	resp := toItemResponse(*item)
	return &resp, nil
}

func (s *Service) DeleteItem(ctx context.Context, id, organizationID uuid.UUID) error {
	return s.repo.Delete(ctx, id, organizationID)
}

func (s *Service) AdjustStock(ctx context.Context, id, organizationID uuid.UUID, req transport.AdjustStockRequest, adjustedBy *uuid.UUID) (*transport.ItemResponse, error) {
	item, err := s.repo.AdjustStock(ctx, id, organizationID, req.Delta, sanitize.Text(req.Reason), adjustedBy)
	if err != nil {
		return nil, err
	}
	resp := toItemResponse(*item)
	return &resp, nil
}

func (s *Service) ListAdjustments(ctx context.Context, itemID, organizationID uuid.UUID, limit int) ([]transport.AdjustmentResponse, error) {
	adjustments, err := s.repo.ListAdjustments(ctx, itemID, organizationID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.AdjustmentResponse, 0, len(adjustments))
	for _, adj := range adjustments {
		responses = append(responses, transport.AdjustmentResponse{
			ID:         adj.ID,
			ItemID:     adj.ItemID,
			Delta:      adj.Delta,
			Reason:     adj.Reason,
			AdjustedBy: adj.AdjustedBy,
			CreatedAt:  adj.CreatedAt,
		})
	}
	return responses, nil
}

func toItemResponse(item repository.Item) transport.ItemResponse {
	return transport.ItemResponse{
		ID:              item.ID,
		Name:            item.Name,
		SKU:             item.SKU,
		Unit:            item.Unit,
		Quantity:        item.Quantity,
		ReorderLevel:    item.ReorderLevel,
		StorageLocation: item.StorageLocation,
		Notes:           item.Notes,
		LowStock:        item.Quantity <= item.ReorderLevel,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}
