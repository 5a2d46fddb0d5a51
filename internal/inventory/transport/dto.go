package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateItemRequest struct {
	Name            string  `json:"name" validate:"required,max=200"`
	SKU             *string `json:"sku" validate:"omitempty,max=100"`
	Unit            string  `json:"unit" validate:"omitempty,max=50"`
	Quantity        int     `json:"quantity" validate:"min=0"`
	ReorderLevel    int     `json:"reorderLevel" validate:"min=0"`
	StorageLocation *string `json:"storageLocation" validate:"omitempty,max=200"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateItemRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=200"`
	Unit            *string `json:"unit" validate:"omitempty,max=50"`
	ReorderLevel    *int    `json:"reorderLevel" validate:"omitempty,min=0"`
	StorageLocation *string `json:"storageLocation" validate:"omitempty,max=200"`
	Notes           *string `json:"notes" validate:"omitempty,max=2000"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,max=500"`
}

type ItemResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	SKU             *string   `json:"sku,omitempty"`
	Unit            string    `json:"unit"`
	Quantity        int       `json:"quantity"`
	ReorderLevel    int       `json:"reorderLevel"`
	StorageLocation *string   `json:"storageLocation,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	LowStock        bool      `json:"lowStock"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type AdjustmentResponse struct {
	ID         uuid.UUID  `json:"id"`
	ItemID     uuid.UUID  `json:"itemId"`
	Delta      int        `json:"delta"`
	Reason     string     `json:"reason"`
	AdjustedBy *uuid.UUID `json:"adjustedBy,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type ListItemsResponse struct {
	Items []ItemResponse `json:"items"`
	Total int            `json:"total"`
}
