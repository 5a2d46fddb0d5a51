package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	Name            string
	SKU             *string
	Unit            string
	Quantity        int
	ReorderLevel    int
	StorageLocation *string
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Adjustment struct {
	ID         uuid.UUID
	ItemID     uuid.UUID
	Delta      int
	Reason     string
	AdjustedBy *uuid.UUID
	CreatedAt  time.Time
}

type CreateItemParams struct {
	OrganizationID  uuid.UUID
	Name            string
	SKU             *string
	Unit            string
	Quantity        int
	ReorderLevel    int
	StorageLocation *string
	Notes           *string
}

type UpdateItemParams struct {
	Name            *string
	Unit            *string
	ReorderLevel    *int
	StorageLocation *string
	Notes           *string
}

type Repository interface {
	Create(ctx context.Context, params CreateItemParams) (*Item, error)
	GetByID(ctx context.Context, id, organizationID uuid.UUID) (*Item, error)
	List(ctx context.Context, organizationID uuid.UUID, search string, lowStockOnly bool, limit, offset int) ([]Item, int, error)
	Update(ctx context.Context, id, organizationID uuid.UUID, params UpdateItemParams) (*Item, error)
	Delete(ctx context.Context, id, organizationID uuid.UUID) error

	// AdjustStock applies a delta to an item's quantity and records the
	// adjustment in the same transaction. The resulting quantity must not
	// go negative.
	AdjustStock(ctx context.Context, id, organizationID uuid.UUID, delta int, reason string, adjustedBy *uuid.UUID) (*Item, error)
	ListAdjustments(ctx context.Context, itemID, organizationID uuid.UUID, limit int) ([]Adjustment, error)
}
