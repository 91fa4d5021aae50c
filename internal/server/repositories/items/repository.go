package items

import (
	"context"

	"github.com/dmitrijs2005/careervault/internal/vault"
)

type Repository interface {
	Create(ctx context.Context, item *vault.Item) (*vault.Item, error)
	ListByVault(ctx context.Context, vaultID string) ([]*vault.Item, error)
	// UpdateScores persists re-derived tier and freshness of one item.
	UpdateScores(ctx context.Context, itemID string, tier vault.Tier, freshness int) error
	// CountByCategory enumerates live rows per category.
	CountByCategory(ctx context.Context, vaultID string) (vault.Counts, error)
}
