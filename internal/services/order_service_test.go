package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hormatech/blockplant/internal/models"
	"github.com/hormatech/blockplant/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockOrderRepo implements OrderRepository in memory
type MockOrderRepo struct {
	orders map[string]*models.ProductionOrder
	nextID int
}

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{orders: make(map[string]*models.ProductionOrder)}
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id string) (*models.ProductionOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *MockOrderRepo) Create(ctx context.Context, order *models.ProductionOrder) (*models.ProductionOrder, error) {
	m.nextID++
	created := *order
	created.ID = fmt.Sprintf("order-%d", m.nextID)
	created.CreatedAt = time.Now()
	m.orders[created.ID] = &created
	copied := created
	return &copied, nil
}

func (m *MockOrderRepo) UpdateProgress(ctx context.Context, id string, quantityProduced int, status string) (*models.ProductionOrder, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	order.QuantityProduced = quantityProduced
	order.Status = status
	copied := *order
	return &copied, nil
}

func (m *MockOrderRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.orders[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *MockOrderRepo) List(ctx context.Context, status string) ([]*models.ProductionOrder, error) {
	var out []*models.ProductionOrder
	for _, order := range m.orders {
		if status == "" || order.Status == status {
			copied := *order
			out = append(out, &copied)
		}
	}
	return out, nil
}

func TestOrderServiceCreate(t *testing.T) {
	repo := NewMockOrderRepo()
	service := services.NewOrderService(repo, testLogger())

	order, err := service.Create(context.Background(), "hollow-400", 5000, nil, "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 5000, order.QuantityOrdered)
	assert.Equal(t, 0, order.QuantityProduced)
	assert.NotEmpty(t, order.OrderNumber)
	require.NotNil(t, order.CreatedBy)
	assert.Equal(t, "user-1", *order.CreatedBy)
}

func TestOrderServiceCreate_RejectsNonPositiveQuantity(t *testing.T) {
	repo := NewMockOrderRepo()
	service := services.NewOrderService(repo, testLogger())

	_, err := service.Create(context.Background(), "hollow-400", 0, nil, "")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestOrderServiceProgress_HappyPath(t *testing.T) {
	repo := NewMockOrderRepo()
	service := services.NewOrderService(repo, testLogger())
	ctx := context.Background()

	order, err := service.Create(ctx, "solid-200", 1000, nil, "")
	require.NoError(t, err)

	updated, err := service.Progress(ctx, order.ID, 250, models.OrderStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, 250, updated.QuantityProduced)
	assert.Equal(t, models.OrderStatusInProgress, updated.Status)

	updated, err = service.Progress(ctx, order.ID, 1000, models.OrderStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, updated.Status)
}

func TestOrderServiceProgress_ProducedQuantityNeverShrinks(t *testing.T) {
	repo := NewMockOrderRepo()
	service := services.NewOrderService(repo, testLogger())
	ctx := context.Background()

	order, err := service.Create(ctx, "solid-200", 1000, nil, "")
	require.NoError(t, err)

	_, err = service.Progress(ctx, order.ID, 500, models.OrderStatusInProgress)
	require.NoError(t, err)

	_, err = service.Progress(ctx, order.ID, 400, "")
	assert.ErrorIs(t, err, models.ErrBadRequest)

	_, err = service.Progress(ctx, order.ID, 1500, "")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestOrderServiceProgress_RejectsIllegalTransition(t *testing.T) {
	repo := NewMockOrderRepo()
	service := services.NewOrderService(repo, testLogger())
	ctx := context.Background()

	order, err := service.Create(ctx, "solid-200", 1000, nil, "")
	require.NoError(t, err)

	// pending cannot jump straight to completed
	_, err = service.Progress(ctx, order.ID, 0, models.OrderStatusCompleted)
	assert.ErrorIs(t, err, models.ErrBadRequest)

	// cancelled is terminal
	_, err = service.Progress(ctx, order.ID, 0, models.OrderStatusCancelled)
	require.NoError(t, err)
	_, err = service.Progress(ctx, order.ID, 0, models.OrderStatusInProgress)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestOrderServiceProgress_UnknownOrder(t *testing.T) {
	repo := NewMockOrderRepo()
	service := services.NewOrderService(repo, testLogger())

	_, err := service.Progress(context.Background(), "missing", 10, "")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
