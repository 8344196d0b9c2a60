// Package repository persists donation records in the document store.
package repository

import (
	"context"

	"github.com/juleeperween/charity-backend/internal/models"
)

// DonationRepository is the persistence surface the donation service depends
// on. Implementations map store-level failures onto the shared error
// taxonomy: models.ErrNotFound for unknown ids, *models.StorageError for
// everything else.
type DonationRepository interface {
	Insert(ctx context.Context, d *models.Donation) (string, error)
	FindByID(ctx context.Context, id string) (*models.Donation, error)
	FindByDonorID(ctx context.Context, donorID string) (*models.Donation, error)
	FindAll(ctx context.Context) ([]models.Donation, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Donation, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*models.Donation, error)
	Delete(ctx context.Context, id string) error
}
