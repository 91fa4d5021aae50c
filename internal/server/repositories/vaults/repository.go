package vaults

import (
	"context"

	"github.com/dmitrijs2005/careervault/internal/vault"
)

type Repository interface {
	// Ensure returns the vault of userID, creating it when absent.
	Ensure(ctx context.Context, userID string) (*vault.Vault, error)
	GetByUserID(ctx context.Context, userID string) (*vault.Vault, error)
	GetByID(ctx context.Context, vaultID string) (*vault.Vault, error)
	// Lock reads the vault and holds its row lock until the transaction ends.
	Lock(ctx context.Context, vaultID string) (*vault.Vault, error)
	// IncrementCount atomically bumps the counter of cat and returns its new value.
	IncrementCount(ctx context.Context, vaultID string, cat vault.Category) (int, error)
	SetCounts(ctx context.Context, vaultID string, counts vault.Counts) error
	UpdateStrength(ctx context.Context, vaultID string, score int) error
}
