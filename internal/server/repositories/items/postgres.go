// Package items provides the PostgreSQL-backed repository for vault items.
// All ten categories share one table keyed by a category column.
package items

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, item *vault.Item) (*vault.Item, error) {
	attrs, err := encodeAttributes(item.Attributes)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO vault_items (id, vault_id, category, content, quiz_verified, verification_status,
			ai_confidence, evidence_count, ai_inferred, has_metrics, quality_tier, user_authored,
			freshness_score, attributes, created_at, last_updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 `

	_, err = r.db.ExecContext(ctx, query,
		item.ID, item.VaultID, item.Category, item.Content,
		item.Evidence.QuizVerified, string(item.Evidence.VerificationStatus),
		nullFloat(item.Evidence.AIConfidence), nullInt(item.Evidence.EvidenceCount),
		item.Evidence.AIInferred, item.Evidence.HasMetrics,
		string(item.QualityTier), item.UserAuthored, item.FreshnessScore, attrs,
		nullTime(item.CreatedAt), nullTime(item.LastUpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) ListByVault(ctx context.Context, vaultID string) ([]*vault.Item, error) {
	query :=
		`SELECT id, vault_id, category, content, quiz_verified, verification_status, ai_confidence,
			evidence_count, ai_inferred, has_metrics, quality_tier, user_authored, freshness_score,
			attributes, created_at, last_updated_at
		 FROM vault_items
		 WHERE vault_id = $1
		 ORDER BY created_at NULLS FIRST, id
		 `

	rows, err := r.db.QueryContext(ctx, query, vaultID)
	if err != nil {
		return nil, fmt.Errorf("failed to select vault items: %w", err)
	}
	defer rows.Close()

	result := []*vault.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateScores(ctx context.Context, itemID string, tier vault.Tier, freshness int) error {
	query :=
		`UPDATE vault_items SET quality_tier = $2, freshness_score = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, itemID, string(tier), freshness)
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

func (r *PostgresRepository) CountByCategory(ctx context.Context, vaultID string) (vault.Counts, error) {
	query :=
		`SELECT category, COUNT(*) FROM vault_items
		 WHERE vault_id = $1
		 GROUP BY category
		 `

	var counts vault.Counts
	rows, err := r.db.QueryContext(ctx, query, vaultID)
	if err != nil {
		return counts, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cat vault.Category
			n   int
		)
		if err := rows.Scan(&cat, &n); err != nil {
			return counts, fmt.Errorf("db error: %w", err)
		}
		counts.Add(cat, n)
	}
	if err := rows.Err(); err != nil {
		return counts, fmt.Errorf("db error: %w", err)
	}
	return counts, nil
}

func scanItem(rows *sql.Rows) (*vault.Item, error) {
	var (
		item       vault.Item
		status     string
		tier       string
		confidence sql.NullFloat64
		evidence   sql.NullInt64
		attrs      []byte
		created    sql.NullTime
		updated    sql.NullTime
	)

	if err := rows.Scan(
		&item.ID, &item.VaultID, &item.Category, &item.Content,
		&item.Evidence.QuizVerified, &status, &confidence, &evidence,
		&item.Evidence.AIInferred, &item.Evidence.HasMetrics,
		&tier, &item.UserAuthored, &item.FreshnessScore,
		&attrs, &created, &updated,
	); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	item.Evidence.VerificationStatus = vault.VerificationStatus(status)
	item.QualityTier = vault.Tier(tier)
	if confidence.Valid {
		item.Evidence.AIConfidence = vault.Float(confidence.Float64)
	}
	if evidence.Valid {
		item.Evidence.EvidenceCount = vault.Int(int(evidence.Int64))
	}
	if created.Valid {
		item.CreatedAt = created.Time.UTC()
	}
	if updated.Valid {
		item.LastUpdatedAt = updated.Time.UTC()
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &item.Attributes); err != nil {
			return nil, fmt.Errorf("decode attributes: %w", err)
		}
	}
	if len(item.Attributes) == 0 {
		item.Attributes = nil
	}
	return &item, nil
}

func encodeAttributes(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encode attributes: %w", err)
	}
	return string(b), nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
