package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/careervault/internal/common"
	"github.com/dmitrijs2005/careervault/internal/dbx"
	"github.com/dmitrijs2005/careervault/internal/engine"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

// RescoreResult reports a rescore pass.
type RescoreResult struct {
	Updated  int
	Strength int
}

// RescoreVault re-derives tier and freshness of every item, persists the rows
// that changed and recomputes the vault strength.
func (s *VaultService) RescoreVault(ctx context.Context, userID, vaultID string) (*RescoreResult, error) {
	if _, err := s.authorize(ctx, userID, vaultID); err != nil {
		return nil, err
	}

	items, err := s.repomanager.Items(s.db).ListByVault(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	now := s.now()
	changed := make([]*vault.Item, 0, len(items))
	for _, item := range items {
		tier := engine.Reclassify(item)
		fresh := engine.Freshness(item, now)
		if tier == item.QualityTier && fresh == item.FreshnessScore {
			continue
		}
		item.QualityTier, item.FreshnessScore = tier, fresh
		changed = append(changed, item)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	repo := s.repomanager.Items(s.db)
	for _, item := range changed {
		g.Go(func() error {
			if err := repo.UpdateScores(gctx, item.ID, item.QualityTier, item.FreshnessScore); err != nil {
				return fmt.Errorf("update item %s: %w", item.ID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	strength := engine.HealthStrength(items)
	if err := s.repomanager.Vaults(s.db).UpdateStrength(ctx, vaultID, strength); err != nil {
		return nil, fmt.Errorf("update strength: %w", err)
	}
	s.audits.Invalidate(vaultID)

	s.log.Info(ctx, "vault rescored", "vault_id", vaultID, "items", len(items), "updated", len(changed), "strength", strength)
	return &RescoreResult{Updated: len(changed), Strength: strength}, nil
}

// ReconcileResult compares stored counters with live item counts.
type ReconcileResult struct {
	Consistent bool
	Before     map[string]int
	After      map[string]int
}

// Err returns common.ErrConsistency when the counters had diverged.
func (r *ReconcileResult) Err() error {
	if r == nil || r.Consistent {
		return nil
	}
	return fmt.Errorf("vault counters repaired: %w", common.ErrConsistency)
}

// ReconcileCounts recounts items per category and overwrites diverging
// counters. The vault row stays locked for the duration, so concurrent adds
// are counted either before or after the repair.
func (s *VaultService) ReconcileCounts(ctx context.Context, userID, vaultID string) (*ReconcileResult, error) {
	if _, err := s.authorize(ctx, userID, vaultID); err != nil {
		return nil, err
	}

	var res *ReconcileResult
	err := s.runTx(ctx, 1, func(ctx context.Context, tx dbx.DBTX) error {
		v, err := s.repomanager.Vaults(tx).Lock(ctx, vaultID)
		if err != nil {
			return fmt.Errorf("lock vault: %w", err)
		}
		live, err := s.repomanager.Items(tx).CountByCategory(ctx, vaultID)
		if err != nil {
			return fmt.Errorf("count items: %w", err)
		}

		res = &ReconcileResult{
			Consistent: v.Counts == live,
			Before:     v.Counts.ByCategory(),
			After:      live.ByCategory(),
		}
		if res.Consistent {
			return nil
		}
		if err := s.repomanager.Vaults(tx).SetCounts(ctx, vaultID, live); err != nil {
			return fmt.Errorf("set counts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.Consistent {
		s.audits.Invalidate(vaultID)
		s.log.Warn(ctx, "vault counters reconciled", "vault_id", vaultID, "before", res.Before, "after", res.After, "error", res.Err())
	}
	return res, nil
}
