package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hormatech/blockplant/internal/models"
)

// OrderRepository defines the production-order store operations.
type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*models.ProductionOrder, error)
	Create(ctx context.Context, order *models.ProductionOrder) (*models.ProductionOrder, error)
	UpdateProgress(ctx context.Context, id string, quantityProduced int, status string) (*models.ProductionOrder, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, status string) ([]*models.ProductionOrder, error)
}

// OrderService manages production orders and their status state machine.
type OrderService struct {
	repo   OrderRepository
	logger *slog.Logger
}

func NewOrderService(repo OrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{repo: repo, logger: logger}
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.ProductionOrder, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context, status string) ([]*models.ProductionOrder, error) {
	return s.repo.List(ctx, status)
}

func (s *OrderService) Create(ctx context.Context, blockType string, quantity int, dueDate *time.Time, createdBy string) (*models.ProductionOrder, error) {
	if quantity <= 0 {
		return nil, models.ErrBadRequest
	}

	order := &models.ProductionOrder{
		OrderNumber:     newOrderNumber(),
		BlockType:       blockType,
		QuantityOrdered: quantity,
		Status:          models.OrderStatusPending,
		DueDate:         dueDate,
	}
	if createdBy != "" {
		order.CreatedBy = &createdBy
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	s.logger.Info("production order created",
		slog.String("order_id", created.ID),
		slog.String("order_number", created.OrderNumber),
		slog.Int("quantity", quantity))
	return created, nil
}

// Progress records produced quantity and an optional status transition.
// Produced quantity can only grow and never exceeds the ordered quantity.
func (s *OrderService) Progress(ctx context.Context, id string, quantityProduced int, nextStatus string) (*models.ProductionOrder, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if quantityProduced < order.QuantityProduced || quantityProduced > order.QuantityOrdered {
		return nil, models.ErrBadRequest
	}

	status := order.Status
	if nextStatus != "" && nextStatus != order.Status {
		if !order.CanTransition(nextStatus) {
			return nil, models.ErrBadRequest
		}
		status = nextStatus
	}

	updated, err := s.repo.UpdateProgress(ctx, id, quantityProduced, status)
	if err != nil {
		return nil, err
	}

	if status != order.Status {
		s.logger.Info("production order status changed",
			slog.String("order_id", id),
			slog.String("from", order.Status),
			slog.String("to", status))
	}
	return updated, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// newOrderNumber generates a human-readable order number like "PO-20260901-153045".
func newOrderNumber() string {
	return fmt.Sprintf("PO-%s", time.Now().UTC().Format("20060102-150405.000"))
}
