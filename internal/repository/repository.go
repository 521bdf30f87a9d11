package repository

import (
	"context"

	"propgraph/internal/storage"
)

// Repository defines the interface for quantity persistence.
type Repository interface {
	// Quantity records
	SaveQuantity(ctx context.Context, sq *storage.StorageQuantity) error
	GetQuantity(ctx context.Context, internalID string) (*storage.StorageQuantity, error)

	// Material membership
	SaveMaterial(ctx context.Context, materialID string, records []*storage.StorageQuantity) error
	GetMaterial(ctx context.Context, materialID string) ([]*storage.StorageQuantity, error)
	ListMaterials(ctx context.Context) ([]string, error)

	// Lookup resolves values stripped from stored provenance trees.
	Lookup(ctx context.Context) storage.Lookup

	// Close releases resources
	Close() error
}
