package integration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hormatech/blockplant/internal/database"
)

// TestDB manages the PostgreSQL testcontainer and connection pool
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
	Logger     *slog.Logger
}

// SetupTestDatabase starts a PostgreSQL container, connects a pool and applies
// the embedded migrations.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("blockplant"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := database.Migrate(pool, logger); err != nil {
		pool.Close()
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         database.NewFromPool(pool, logger),
		Logger:     logger,
	}, nil
}

// Teardown closes the pool and terminates the container
func (tdb *TestDB) Teardown(ctx context.Context) {
	tdb.Pool.Close()
	_ = tdb.Container.Terminate(ctx)
}

// TruncateAll wipes every table between tests
func (tdb *TestDB) TruncateAll(ctx context.Context) error {
	_, err := tdb.Pool.Exec(ctx, `
		TRUNCATE auth_throttle, production_orders, materials, equipment, users
	`)
	return err
}
