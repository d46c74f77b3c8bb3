package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hormatech/blockplant/internal/models"
)

// EquipmentRepository defines the equipment store operations.
type EquipmentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Equipment, error)
	Create(ctx context.Context, e *models.Equipment) (*models.Equipment, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Equipment, error)
	RecordMaintenance(ctx context.Context, id, entry, status string) (*models.Equipment, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.Equipment, error)
}

var validEquipmentStatus = map[string]bool{
	models.EquipmentOperational: true,
	models.EquipmentMaintenance: true,
	models.EquipmentRetired:     true,
}

// EquipmentService manages plant-floor machines and their maintenance history.
type EquipmentService struct {
	repo   EquipmentRepository
	logger *slog.Logger
}

func NewEquipmentService(repo EquipmentRepository, logger *slog.Logger) *EquipmentService {
	return &EquipmentService{repo: repo, logger: logger}
}

func (s *EquipmentService) Get(ctx context.Context, id string) (*models.Equipment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EquipmentService) List(ctx context.Context) ([]*models.Equipment, error) {
	return s.repo.List(ctx)
}

func (s *EquipmentService) Create(ctx context.Context, name, kind string) (*models.Equipment, error) {
	return s.repo.Create(ctx, &models.Equipment{
		Name:           name,
		Kind:           kind,
		Status:         models.EquipmentOperational,
		MaintenanceLog: []string{},
	})
}

func (s *EquipmentService) SetStatus(ctx context.Context, id, status string) (*models.Equipment, error) {
	if !validEquipmentStatus[status] {
		return nil, models.ErrBadRequest
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("equipment status changed",
		slog.String("equipment_id", id),
		slog.String("status", status))
	return updated, nil
}

// RecordMaintenance appends a timestamped note to the maintenance log and
// moves the machine into maintenance status.
func (s *EquipmentService) RecordMaintenance(ctx context.Context, id, note string) (*models.Equipment, error) {
	entry := fmt.Sprintf("%s %s", time.Now().UTC().Format("2006-01-02"), note)
	return s.repo.RecordMaintenance(ctx, id, entry, models.EquipmentMaintenance)
}

func (s *EquipmentService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
