package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"courtside/internal/database"
	"courtside/internal/models"
)

// CatalogService serves the read-only catalog surface and reporting reads.
type CatalogService struct {
	db     *database.DB
	logger *zerolog.Logger
}

func NewCatalogService(db *database.DB, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{db: db, logger: logger}
}

func (s *CatalogService) Resources(ctx context.Context) (*models.Resources, error) {
	courts, err := s.db.ListCourts(ctx)
	if err != nil {
		return nil, err
	}
	equipment, err := s.db.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	coaches, err := s.db.ListCoaches(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Resources{Courts: courts, Equipment: equipment, Coaches: coaches}, nil
}

func (s *CatalogService) ReservationsByDateRange(ctx context.Context, start, end time.Time) ([]*models.Reservation, error) {
	return s.db.ReservationsByDateRange(ctx, start, end)
}
