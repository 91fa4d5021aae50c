package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/careervault/internal/common"
	"github.com/dmitrijs2005/careervault/internal/engine"
	"github.com/dmitrijs2005/careervault/internal/server/audit"
)

const actionPrompt = `You are a career coach. Rewrite the action below as one short, encouraging
sentence addressed to the candidate. Keep every number. Reply with the sentence only.

Recommendation: %s
Details: %s
Action: %s`

// GetAudit returns the cached audit of the vault, recomputing it when the
// cached entry expired or forceRefresh is set.
func (s *VaultService) GetAudit(ctx context.Context, userID, vaultID string, forceRefresh bool) (*audit.Result, error) {
	if _, err := s.authorize(ctx, userID, vaultID); err != nil {
		return nil, err
	}
	return s.audits.Get(ctx, vaultID, forceRefresh, func(ctx context.Context) (*audit.Result, error) {
		return s.computeAudit(ctx, vaultID)
	})
}

func (s *VaultService) computeAudit(ctx context.Context, vaultID string) (*audit.Result, error) {
	v, err := s.repomanager.Vaults(s.db).GetByID(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("get vault: %w", err)
	}
	items, err := s.evaluatedItems(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tally := engine.Count(items)
	defects := engine.Detect(items, now)

	byTier := make(map[string]int, len(tally.ByTier))
	for tier, n := range tally.ByTier {
		byTier[string(tier)] = n
	}

	avg := 0
	if len(items) > 0 {
		sum := 0
		for _, item := range items {
			sum += item.FreshnessScore
		}
		avg = sum / len(items)
	}

	consistent := v.Counts == tally.ByCategory
	if !consistent {
		s.log.Warn(ctx, "vault counters diverge from items",
			"vault_id", vaultID,
			"stored", v.Counts.ByCategory(),
			"live", tally.ByCategory.ByCategory(),
		)
	}

	result := &audit.Result{
		VaultID:          vaultID,
		StrengthScore:    engine.HealthStrength(items),
		ItemCount:        tally.Total,
		CountsByCategory: tally.ByCategory.ByCategory(),
		CountsByTier:     byTier,
		AverageFreshness: avg,
		StaleCount:       defects.Stale,
		DuplicateCount:   defects.Duplicates,
		Recommendations:  engine.Recommend(items, now),
		CountsConsistent: consistent,
		GeneratedAt:      now,
	}
	s.log.Debug(ctx, "audit computed", "vault_id", vaultID, "items", result.ItemCount, "strength", result.StrengthScore)
	return result, nil
}

// Recommend derives coaching suggestions for the vault. When a provider is
// configured each action is rewritten by it; failures keep the default text.
func (s *VaultService) Recommend(ctx context.Context, userID, vaultID string) ([]engine.Recommendation, error) {
	if _, err := s.authorize(ctx, userID, vaultID); err != nil {
		return nil, err
	}
	items, err := s.evaluatedItems(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	recs := engine.Recommend(items, s.now())
	if s.copywriter.Enabled() {
		for i := range recs {
			prompt := fmt.Sprintf(actionPrompt, recs[i].Title, recs[i].Description, recs[i].Action)
			recs[i].Action = s.copywriter.TextOr(ctx, prompt, recs[i].Action)
		}
	}
	return recs, nil
}

// MatchRequirement scores every item against requirement and returns the
// ranked matches. limit <= 0 returns all of them.
func (s *VaultService) MatchRequirement(ctx context.Context, userID, vaultID, requirement string, limit int) ([]engine.RequirementMatch, error) {
	if strings.TrimSpace(requirement) == "" {
		return nil, common.NewValidationError("requirement", "must not be blank")
	}
	if limit < 0 {
		return nil, common.NewValidationError("limit", "must not be negative")
	}
	if _, err := s.authorize(ctx, userID, vaultID); err != nil {
		return nil, err
	}

	items, err := s.evaluatedItems(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	committed := items[:0]
	for _, item := range items {
		if item.Committed() {
			committed = append(committed, item)
		}
	}

	matches, err := engine.Match(ctx, s.scorer, requirement, committed,
		engine.WithMatchConcurrency(s.concurrency),
		engine.WithMatchBudget(s.matchBudget),
	)
	if err != nil {
		return nil, err
	}
	ranked := engine.TopN(engine.Rank(matches), limit)

	s.log.Debug(ctx, "requirement matched",
		"vault_id", vaultID,
		"requirement", requirement,
		"candidates", len(committed),
		"strength", engine.MatchStrengthOf(ranked),
	)
	return ranked, nil
}

// ExportResult locates an uploaded audit.
type ExportResult struct {
	Key string
	URL string
}

// ExportAudit uploads the current audit and returns a short-lived download link.
func (s *VaultService) ExportAudit(ctx context.Context, userID, vaultID string) (*ExportResult, error) {
	if s.exporter == nil {
		if _, err := s.authorize(ctx, userID, vaultID); err != nil {
			return nil, err
		}
		return nil, common.Dependency("report storage", errors.New("not configured"))
	}

	result, err := s.GetAudit(ctx, userID, vaultID, false)
	if err != nil {
		return nil, err
	}
	key, url, err := s.exporter.Export(ctx, result)
	if err != nil {
		return nil, common.Dependency("report storage", err)
	}

	s.log.Info(ctx, "audit exported", "vault_id", vaultID, "key", key)
	return &ExportResult{Key: key, URL: url}, nil
}
