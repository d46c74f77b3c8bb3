package repositories

import (
	"context"
	"fmt"

	"github.com/hormatech/blockplant/internal/database"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductionOrderRepository struct {
	pool *pgxpool.Pool
}

func NewProductionOrderRepository(db *database.DB) *ProductionOrderRepository {
	return &ProductionOrderRepository{pool: db.Pool}
}

const orderColumns = `id, order_number, block_type, quantity_ordered, quantity_produced, status, due_date, created_by, created_at, updated_at`

func scanOrderRow(scanner rowScanner) (*models.ProductionOrder, error) {
	var order models.ProductionOrder
	err := scanner.Scan(
		&order.ID, &order.OrderNumber, &order.BlockType,
		&order.QuantityOrdered, &order.QuantityProduced, &order.Status,
		&order.DueDate, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &order, nil
}

func (r *ProductionOrderRepository) GetByID(ctx context.Context, id string) (*models.ProductionOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM production_orders WHERE id = $1`
	return scanOrderRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ProductionOrderRepository) Create(ctx context.Context, order *models.ProductionOrder) (*models.ProductionOrder, error) {
	query := `
		INSERT INTO production_orders (order_number, block_type, quantity_ordered, status, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + orderColumns

	return scanOrderRow(r.pool.QueryRow(ctx, query,
		order.OrderNumber, order.BlockType, order.QuantityOrdered,
		order.Status, order.DueDate, order.CreatedBy,
	))
}

// UpdateProgress records produced quantity and status in one statement.
func (r *ProductionOrderRepository) UpdateProgress(ctx context.Context, id string, quantityProduced int, status string) (*models.ProductionOrder, error) {
	query := `
		UPDATE production_orders
		SET quantity_produced = $2, status = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + orderColumns

	return scanOrderRow(r.pool.QueryRow(ctx, query, id, quantityProduced, status))
}

func (r *ProductionOrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM production_orders WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// List returns orders, optionally filtered by status.
func (r *ProductionOrderRepository) List(ctx context.Context, status string) ([]*models.ProductionOrder, error) {
	var rows pgx.Rows
	var err error

	if status != "" {
		query := `SELECT ` + orderColumns + ` FROM production_orders WHERE status = $1 ORDER BY created_at DESC`
		rows, err = r.pool.Query(ctx, query, status)
	} else {
		query := `SELECT ` + orderColumns + ` FROM production_orders ORDER BY created_at DESC`
		rows, err = r.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	orders := make([]*models.ProductionOrder, 0)
	for rows.Next() {
		order, err := scanOrderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan production order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return orders, nil
}
