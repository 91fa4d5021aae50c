package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	gs "github.com/dmitrijs2005/careervault/internal/server/grpc"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

var errUsage = errors.New("usage")

func (a *App) Ping(ctx context.Context) error {
	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.Ping(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "server:", resp.Status)
	return nil
}

// Ensure resolves the caller's vault, creating it when missing.
func (a *App) Ensure(ctx context.Context) error {
	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.EnsureVault(ctx)
	if err != nil {
		return err
	}
	a.vaultID = resp.Vault.ID
	printVault(a, resp.Vault)
	return nil
}

func (a *App) requireVault(ctx context.Context) error {
	if a.vaultID != "" {
		return nil
	}
	return a.Ensure(ctx)
}

func (a *App) Show(ctx context.Context) error {
	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.GetVaultData(ctx)
	if err != nil {
		return err
	}
	if resp.Vault == nil {
		fmt.Fprintln(a.out, "No vault yet. Add an item or run 'ensure'.")
		return nil
	}
	a.vaultID = resp.Vault.ID
	printVault(a, resp.Vault)

	for _, c := range vault.Categories() {
		items := resp.ItemsByCategory[c.String()]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(a.out, "%s (%d)\n", c.Spec().Title, len(items))
		for _, it := range items {
			fmt.Fprintf(a.out, "  %s [%s, freshness %d] %s\n", shortID(it.ID), it.QualityTier, it.FreshnessScore, it.Content)
		}
	}
	return nil
}

// Add prompts for the content and evidence of a new item. args: <category> [mine].
func (a *App) Add(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: add <category> [mine]", errUsage)
	}
	if err := a.requireVault(ctx); err != nil {
		return err
	}

	content, err := GetMultiline(a.reader, "Content", a.out)
	if err != nil {
		return err
	}
	attrs, err := GetAttributes(a.reader, a.out)
	if err != nil {
		return err
	}

	data := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		data[k] = v
	}
	data["content"] = content

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.AddVaultItem(ctx, &gs.AddVaultItemRequest{
		VaultID:      a.vaultID,
		Category:     args[0],
		ItemData:     data,
		UserAuthored: len(args) > 1 && args[1] == "mine",
	})
	if err != nil {
		return err
	}
	printItem(a, resp.Item)
	return nil
}

// Answer records a free-text answer. args: <category>.
func (a *App) Answer(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: answer <category>", errUsage)
	}
	if err := a.requireVault(ctx); err != nil {
		return err
	}

	text, err := GetMultiline(a.reader, "Answer", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.SubmitAnswer(ctx, &gs.SubmitAnswerRequest{
		VaultID:        a.vaultID,
		TargetCategory: args[0],
		AnswerText:     text,
	})
	if err != nil {
		return err
	}
	printItem(a, resp.Item)
	return nil
}

// Audit prints the vault audit. args: [force].
func (a *App) Audit(ctx context.Context, args []string) error {
	if err := a.requireVault(ctx); err != nil {
		return err
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.GetAudit(ctx, &gs.GetAuditRequest{
		VaultID:      a.vaultID,
		ForceRefresh: len(args) > 0 && args[0] == "force",
	})
	if err != nil {
		return err
	}

	r := resp.Audit
	fmt.Fprintf(a.out, "strength %d, %d items, avg freshness %d, %d stale, %d duplicates\n",
		r.StrengthScore, r.ItemCount, r.AverageFreshness, r.StaleCount, r.DuplicateCount)
	fmt.Fprintln(a.out, "tiers:", formatCounts(r.CountsByTier))
	if !r.CountsConsistent {
		fmt.Fprintln(a.out, "warning: stored counts diverge, run 'reconcile'")
	}
	for i, rec := range r.Recommendations {
		fmt.Fprintf(a.out, "%d. [%s +%d] %s\n", i+1, rec.Impact, rec.ScoreBoost, rec.Title)
	}
	fmt.Fprintln(a.out, "generated", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) Recommend(ctx context.Context) error {
	if err := a.requireVault(ctx); err != nil {
		return err
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.Recommend(ctx, &gs.RecommendRequest{VaultID: a.vaultID})
	if err != nil {
		return err
	}
	if len(resp.Recommendations) == 0 {
		fmt.Fprintln(a.out, "Nothing to improve.")
		return nil
	}
	for i, rec := range resp.Recommendations {
		fmt.Fprintf(a.out, "%d. %s (%s impact, %s, +%d)\n   %s\n   -> %s\n",
			i+1, rec.Title, rec.Impact, rec.TimeEstimate, rec.ScoreBoost, rec.Description, rec.Action)
	}
	return nil
}

// Match ranks items against a requirement. args: [limit].
func (a *App) Match(ctx context.Context, args []string) error {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("%w: match [limit]", errUsage)
		}
		limit = n
	}
	if err := a.requireVault(ctx); err != nil {
		return err
	}

	req, err := GetSimpleText(a.reader, "Requirement", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.MatchRequirement(ctx, &gs.MatchRequirementRequest{
		VaultID:     a.vaultID,
		Requirement: req,
		Limit:       limit,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "match strength %d\n", resp.Strength)
	for i, m := range resp.Matches {
		fmt.Fprintf(a.out, "%d. %d [%s] %s\n", i+1, m.MatchScore, m.QualityTier, m.Content)
		if len(m.MatchReasons) > 0 {
			fmt.Fprintf(a.out, "   %s\n", strings.Join(m.MatchReasons, "; "))
		}
	}
	return nil
}

func (a *App) Rescore(ctx context.Context) error {
	if err := a.requireVault(ctx); err != nil {
		return err
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.RescoreVault(ctx, &gs.RescoreVaultRequest{VaultID: a.vaultID})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "rescored %d items, strength %d\n", resp.Updated, resp.Strength)
	return nil
}

func (a *App) Reconcile(ctx context.Context) error {
	if err := a.requireVault(ctx); err != nil {
		return err
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.ReconcileCounts(ctx, &gs.ReconcileCountsRequest{VaultID: a.vaultID})
	if err != nil {
		return err
	}
	if resp.Consistent {
		fmt.Fprintln(a.out, "counts consistent")
		return nil
	}
	fmt.Fprintln(a.out, "counts repaired")
	fmt.Fprintln(a.out, "  before:", formatCounts(resp.Before))
	fmt.Fprintln(a.out, "  after: ", formatCounts(resp.After))
	return nil
}

func (a *App) Export(ctx context.Context) error {
	if err := a.requireVault(ctx); err != nil {
		return err
	}

	ctx, cancel := a.callContext(ctx)
	defer cancel()

	resp, err := a.api.ExportAudit(ctx, &gs.ExportAuditRequest{VaultID: a.vaultID})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "exported", resp.Key)
	fmt.Fprintln(a.out, resp.URL)
	return nil
}

func printVault(a *App, v *gs.VaultView) {
	fmt.Fprintf(a.out, "vault %s, strength %d\n", v.ID, v.OverallStrengthScore)
	fmt.Fprintln(a.out, "counts:", formatCounts(v.Counts))
}

func printItem(a *App, it *vault.Item) {
	fmt.Fprintf(a.out, "added %s %s [%s, freshness %d]\n", it.Category, shortID(it.ID), it.QualityTier, it.FreshnessScore)
}

// formatCounts renders non-zero counts sorted by key.
func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k, n := range m {
		if n != 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "none"
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
