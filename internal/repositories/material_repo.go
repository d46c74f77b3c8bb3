package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/hormatech/blockplant/internal/database"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MaterialRepository struct {
	pool *pgxpool.Pool
}

func NewMaterialRepository(db *database.DB) *MaterialRepository {
	return &MaterialRepository{pool: db.Pool}
}

const materialColumns = `id, name, unit, stock_level, reorder_threshold, created_at, updated_at`

func scanMaterialRow(scanner rowScanner) (*models.Material, error) {
	var m models.Material
	err := scanner.Scan(
		&m.ID, &m.Name, &m.Unit, &m.StockLevel, &m.ReorderThreshold,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &m, nil
}

func (r *MaterialRepository) GetByID(ctx context.Context, id string) (*models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`
	return scanMaterialRow(r.pool.QueryRow(ctx, query, id))
}

func (r *MaterialRepository) Create(ctx context.Context, m *models.Material) (*models.Material, error) {
	query := `
		INSERT INTO materials (name, unit, stock_level, reorder_threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + materialColumns

	return scanMaterialRow(r.pool.QueryRow(ctx, query,
		m.Name, m.Unit, m.StockLevel, m.ReorderThreshold,
	))
}

// AdjustStock applies a signed delta atomically and refuses to go negative.
func (r *MaterialRepository) AdjustStock(ctx context.Context, id string, delta float64) (*models.Material, error) {
	query := `
		UPDATE materials
		SET stock_level = stock_level + $2, updated_at = now()
		WHERE id = $1 AND stock_level + $2 >= 0
		RETURNING ` + materialColumns

	m, err := scanMaterialRow(r.pool.QueryRow(ctx, query, id, delta))
	if errors.Is(err, models.ErrNotFound) {
		// Distinguish "missing row" from "would go negative"
		if _, getErr := r.GetByID(ctx, id); getErr == nil {
			return nil, models.ErrBadRequest
		}
	}
	return m, err
}

func (r *MaterialRepository) Update(ctx context.Context, m *models.Material) (*models.Material, error) {
	query := `
		UPDATE materials
		SET name = $2, unit = $3, reorder_threshold = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + materialColumns

	return scanMaterialRow(r.pool.QueryRow(ctx, query,
		m.ID, m.Name, m.Unit, m.ReorderThreshold,
	))
}

func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *MaterialRepository) List(ctx context.Context) ([]*models.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	materials := make([]*models.Material, 0)
	for rows.Next() {
		m, err := scanMaterialRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return materials, nil
}
