package services

import (
	"context"
	"log/slog"

	"github.com/hormatech/blockplant/internal/models"
)

// MaterialRepository defines the inventory store operations.
type MaterialRepository interface {
	GetByID(ctx context.Context, id string) (*models.Material, error)
	Create(ctx context.Context, m *models.Material) (*models.Material, error)
	AdjustStock(ctx context.Context, id string, delta float64) (*models.Material, error)
	Update(ctx context.Context, m *models.Material) (*models.Material, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Material, error)
}

// MaterialService manages the raw-material inventory.
type MaterialService struct {
	repo   MaterialRepository
	logger *slog.Logger
}

func NewMaterialService(repo MaterialRepository, logger *slog.Logger) *MaterialService {
	return &MaterialService{repo: repo, logger: logger}
}

func (s *MaterialService) Get(ctx context.Context, id string) (*models.Material, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MaterialService) List(ctx context.Context) ([]*models.Material, error) {
	return s.repo.List(ctx)
}

func (s *MaterialService) Create(ctx context.Context, name, unit string, stock, reorderThreshold float64) (*models.Material, error) {
	if stock < 0 || reorderThreshold < 0 {
		return nil, models.ErrBadRequest
	}
	return s.repo.Create(ctx, &models.Material{
		Name:             name,
		Unit:             unit,
		StockLevel:       stock,
		ReorderThreshold: reorderThreshold,
	})
}

// AdjustStock applies a signed delta (deliveries positive, consumption
// negative) and warns when the level drops below the reorder threshold.
func (s *MaterialService) AdjustStock(ctx context.Context, id string, delta float64) (*models.Material, error) {
	m, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	if m.BelowThreshold() {
		s.logger.Warn("material below reorder threshold",
			slog.String("material_id", m.ID),
			slog.String("name", m.Name),
			slog.Float64("stock_level", m.StockLevel),
			slog.Float64("reorder_threshold", m.ReorderThreshold))
	}
	return m, nil
}

func (s *MaterialService) Update(ctx context.Context, m *models.Material) (*models.Material, error) {
	return s.repo.Update(ctx, m)
}

func (s *MaterialService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
