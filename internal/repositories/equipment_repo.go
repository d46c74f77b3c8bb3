package repositories

import (
	"context"
	"fmt"

	"github.com/hormatech/blockplant/internal/database"
	"github.com/hormatech/blockplant/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type EquipmentRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewEquipmentRepository(db *database.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db, pool: db.Pool}
}

const equipmentColumns = `id, name, kind, status, maintenance_log, created_at, updated_at`

func scanEquipmentRow(scanner rowScanner) (*models.Equipment, error) {
	var e models.Equipment
	err := scanner.Scan(
		&e.ID, &e.Name, &e.Kind, &e.Status,
		pq.Array(&e.MaintenanceLog),
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &e, nil
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id string) (*models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment WHERE id = $1`
	return scanEquipmentRow(r.pool.QueryRow(ctx, query, id))
}

func (r *EquipmentRepository) Create(ctx context.Context, e *models.Equipment) (*models.Equipment, error) {
	query := `
		INSERT INTO equipment (name, kind, status, maintenance_log)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + equipmentColumns

	return scanEquipmentRow(r.pool.QueryRow(ctx, query,
		e.Name, e.Kind, e.Status, pq.Array(e.MaintenanceLog),
	))
}

func (r *EquipmentRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Equipment, error) {
	query := `
		UPDATE equipment
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + equipmentColumns

	return scanEquipmentRow(r.pool.QueryRow(ctx, query, id, status))
}

// RecordMaintenance appends one log line to the maintenance history and moves
// the machine into the given status. Both updates land in one transaction so
// a log entry can never exist without the matching status change.
func (r *EquipmentRepository) RecordMaintenance(ctx context.Context, id, entry, status string) (*models.Equipment, error) {
	var updated *models.Equipment

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		appendQuery := `
			UPDATE equipment
			SET maintenance_log = array_append(maintenance_log, $2), updated_at = now()
			WHERE id = $1
		`
		tag, err := tx.Exec(ctx, appendQuery, id, entry)
		if err != nil {
			return database.MapPostgresError(err)
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		statusQuery := `
			UPDATE equipment
			SET status = $2, updated_at = now()
			WHERE id = $1
			RETURNING ` + equipmentColumns

		updated, err = scanEquipmentRow(tx.QueryRow(ctx, statusQuery, id, status))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *EquipmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) List(ctx context.Context) ([]*models.Equipment, error) {
	query := `SELECT ` + equipmentColumns + ` FROM equipment ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	defer rows.Close()

	items := make([]*models.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipmentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return items, nil
}
