// Package vaults provides the PostgreSQL-backed repository for vault records
// and their denormalized per-category counters.
package vaults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/careervault/internal/common"
	"github.com/dmitrijs2005/careervault/internal/dbx"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// countColumns lists the counter columns in category order.
func countColumns() []string {
	cols := make([]string, 0, vault.NumCategories)
	for _, c := range vault.Categories() {
		cols = append(cols, c.Spec().CountColumn)
	}
	return cols
}

var selectVault = `SELECT id, user_id, ` + strings.Join(countColumns(), ", ") +
	`, overall_strength_score, created_at, last_updated_at FROM vaults`

func scanVault(row interface{ Scan(...any) error }) (*vault.Vault, error) {
	v := &vault.Vault{}
	dest := []any{&v.ID, &v.UserID}
	for i := range v.Counts {
		dest = append(dest, &v.Counts[i])
	}
	dest = append(dest, &v.OverallStrengthScore, &v.CreatedAt, &v.LastUpdatedAt)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// Ensure inserts the vault unless one exists and then reads it back, so
// concurrent first writes for the same user converge on one row.
func (r *PostgresRepository) Ensure(ctx context.Context, userID string) (*vault.Vault, error) {
	query :=
		`INSERT INTO vaults (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*vault.Vault, error) {
	return scanVault(r.db.QueryRowContext(ctx, selectVault+` WHERE user_id = $1`, userID))
}

func (r *PostgresRepository) GetByID(ctx context.Context, vaultID string) (*vault.Vault, error) {
	return scanVault(r.db.QueryRowContext(ctx, selectVault+` WHERE id = $1`, vaultID))
}

func (r *PostgresRepository) Lock(ctx context.Context, vaultID string) (*vault.Vault, error) {
	return scanVault(r.db.QueryRowContext(ctx, selectVault+` WHERE id = $1 FOR UPDATE`, vaultID))
}

func (r *PostgresRepository) IncrementCount(ctx context.Context, vaultID string, cat vault.Category) (int, error) {
	if !cat.Valid() {
		return 0, fmt.Errorf("increment count: unknown category %d", int(cat))
	}
	col := cat.Spec().CountColumn

	query := fmt.Sprintf(
		`UPDATE vaults SET %[1]s = %[1]s + 1, last_updated_at = now()
		 WHERE id = $1
		 RETURNING %[1]s
		 `, col)

	var n int
	if err := r.db.QueryRowContext(ctx, query, vaultID).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrorNotFound
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) SetCounts(ctx context.Context, vaultID string, counts vault.Counts) error {
	cols := countColumns()
	sets := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	args = append(args, vaultID)
	for i, col := range cols {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
		args = append(args, counts[i])
	}

	query := `UPDATE vaults SET ` + strings.Join(sets, ", ") + `, last_updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, args...)
}

func (r *PostgresRepository) UpdateStrength(ctx context.Context, vaultID string, score int) error {
	query := `UPDATE vaults SET overall_strength_score = $2, last_updated_at = now() WHERE id = $1`
	return r.execOne(ctx, query, vaultID, score)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
