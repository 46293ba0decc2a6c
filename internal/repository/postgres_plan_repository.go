package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adelfree2023-dev/storefront-engine/internal/domain"
)

// PostgresPlanRepository implements PlanRepository using PostgreSQL
type PostgresPlanRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPlanRepository creates a new PostgresPlanRepository
func NewPostgresPlanRepository(pool *pgxpool.Pool) *PostgresPlanRepository {
	return &PostgresPlanRepository{pool: pool}
}

const planColumns = `id, name, max_products, max_categories, max_staff, max_storage_mb,
	       allowed_themes, COALESCE(features, '{}'::jsonb) as features, version, created_at, updated_at`

// GetByID retrieves a plan by its unique name
func (r *PostgresPlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`
	plan := &domain.Plan{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.Limits.MaxProducts,
		&plan.Limits.MaxCategories,
		&plan.Limits.MaxStaff,
		&plan.Limits.MaxStorageMB,
		&plan.AllowedThemes,
		&plan.Features,
		&plan.Version,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return plan, nil
}

// List retrieves all plans for the administrative UI
func (r *PostgresPlanRepository) List(ctx context.Context) ([]*domain.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans ORDER BY id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]*domain.Plan, 0)
	for rows.Next() {
		plan := &domain.Plan{}
		err := rows.Scan(
			&plan.ID,
			&plan.Name,
			&plan.Limits.MaxProducts,
			&plan.Limits.MaxCategories,
			&plan.Limits.MaxStaff,
			&plan.Limits.MaxStorageMB,
			&plan.AllowedThemes,
			&plan.Features,
			&plan.Version,
			&plan.CreatedAt,
			&plan.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Upsert inserts or updates a plan, bumping its version on update.
// Plans referenced by tenants are protected from deletion by a foreign
// key in the schema; this repository deliberately has no Delete.
func (r *PostgresPlanRepository) Upsert(ctx context.Context, plan *domain.Plan) error {
	query := `
		INSERT INTO plans (id, name, max_products, max_categories, max_staff, max_storage_mb, allowed_themes, features, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $9)
		ON CONFLICT (id)
		DO UPDATE SET name = $2, max_products = $3, max_categories = $4, max_staff = $5, max_storage_mb = $6,
		              allowed_themes = $7, features = $8, version = plans.version + 1, updated_at = $9
	`
	_, err := r.pool.Exec(ctx, query,
		plan.ID,
		plan.Name,
		plan.Limits.MaxProducts,
		plan.Limits.MaxCategories,
		plan.Limits.MaxStaff,
		plan.Limits.MaxStorageMB,
		plan.AllowedThemes,
		plan.Features,
		plan.UpdatedAt,
	)
	return err
}
