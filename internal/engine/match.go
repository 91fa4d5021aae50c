package engine

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/careervault/internal/common"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

// MatchScore is the relevance of one item to a requirement.
type MatchScore struct {
	Value   int
	Reasons []string
}

// Scorer computes the relevance of an item to a requirement.
type Scorer interface {
	Score(ctx context.Context, requirement string, item *vault.Item) (MatchScore, error)
}

// RequirementMatch is the per-call result of matching one item.
type RequirementMatch struct {
	VaultItemID         string         `json:"vault_item_id"`
	Category            vault.Category `json:"category"`
	Content             string         `json:"content"`
	Requirement         string         `json:"requirement"`
	MatchScore          int            `json:"match_score"`
	MatchReasons        []string       `json:"match_reasons"`
	QualityTier         vault.Tier     `json:"quality_tier"`
	FreshnessScore      int            `json:"freshness_score"`
	VerificationDetails vault.Evidence `json:"verification_details"`
}

const (
	DefaultMatchConcurrency = 4
	DefaultMatchBudget      = 20 * time.Second
)

type matchConfig struct {
	concurrency int
	budget      time.Duration
}

type MatchOption func(*matchConfig)

// WithMatchConcurrency caps how many candidates are scored at once.
// Non-positive values keep the default.
func WithMatchConcurrency(n int) MatchOption {
	return func(c *matchConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithMatchBudget bounds the total time spent in the scorer. Candidates not
// scored within the budget get lexical scores. Non-positive values keep the
// default.
func WithMatchBudget(d time.Duration) MatchOption {
	return func(c *matchConfig) {
		if d > 0 {
			c.budget = d
		}
	}
}

// Match scores every candidate against requirement. Candidates are expected to
// carry evaluated tier and freshness (see Evaluate). When scorer fails for a
// candidate, or the budget is spent, the lexical scorer is used for it instead.
// The result keeps input order; use Rank to order it.
func Match(ctx context.Context, scorer Scorer, requirement string, candidates []*vault.Item, opts ...MatchOption) ([]RequirementMatch, error) {
	requirement = strings.TrimSpace(requirement)
	if requirement == "" {
		return nil, common.NewValidationError("requirement", "must not be blank")
	}
	if scorer == nil {
		scorer = LexicalScorer{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := matchConfig{concurrency: DefaultMatchConcurrency, budget: DefaultMatchBudget}
	for _, o := range opts {
		o(&cfg)
	}

	scoreCtx, cancel := context.WithTimeout(ctx, cfg.budget)
	defer cancel()

	out := make([]RequirementMatch, len(candidates))

	var g errgroup.Group
	g.SetLimit(cfg.concurrency)
	for i, item := range candidates {
		g.Go(func() error {
			out[i] = matchOne(scoreCtx, scorer, requirement, item)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func matchOne(ctx context.Context, scorer Scorer, requirement string, item *vault.Item) RequirementMatch {
	var (
		score MatchScore
		err   = ctx.Err()
	)
	if err == nil {
		score, err = scorer.Score(ctx, requirement, item)
	}
	if err != nil {
		score, _ = LexicalScorer{}.Score(ctx, requirement, item)
	}

	return RequirementMatch{
		VaultItemID:         item.ID,
		Category:            item.Category,
		Content:             item.Content,
		Requirement:         requirement,
		MatchScore:          clampScore(score.Value),
		MatchReasons:        score.Reasons,
		QualityTier:         item.QualityTier,
		FreshnessScore:      item.FreshnessScore,
		VerificationDetails: copyEvidence(item.Evidence),
	}
}

// MatchStrengthOf aggregates a match set with MatchStrength.
func MatchStrengthOf(matches []RequirementMatch) int {
	scored := make([]Scored, 0, len(matches))
	for _, m := range matches {
		scored = append(scored, Scored{Tier: m.QualityTier, Freshness: m.FreshnessScore, MatchScore: m.MatchScore})
	}
	return MatchStrength(scored)
}

func copyEvidence(e vault.Evidence) vault.Evidence {
	out := e
	if e.AIConfidence != nil {
		out.AIConfidence = vault.Float(*e.AIConfidence)
	}
	if e.EvidenceCount != nil {
		out.EvidenceCount = vault.Int(*e.EvidenceCount)
	}
	return out
}

// LexicalScorer scores by the share of requirement terms present in the item
// content. It never fails and is deterministic.
type LexicalScorer struct{}

func (LexicalScorer) Score(_ context.Context, requirement string, item *vault.Item) (MatchScore, error) {
	reqTerms := uniqueTerms(tokenize(requirement))
	if len(reqTerms) == 0 {
		return MatchScore{Value: 0, Reasons: []string{}}, nil
	}

	content := map[string]struct{}{}
	for _, t := range tokenize(item.Content) {
		content[t] = struct{}{}
	}

	matched := make([]string, 0, len(reqTerms))
	for _, t := range reqTerms {
		if _, ok := content[t]; ok {
			matched = append(matched, t)
		}
	}
	sort.Strings(matched)

	reasons := make([]string, 0, len(matched))
	for _, t := range matched {
		reasons = append(reasons, "mentions "+t)
	}

	return MatchScore{Value: len(matched) * 100 / len(reqTerms), Reasons: reasons}, nil
}

// tokenize splits text into lowercase terms longer than two characters,
// dropping stopwords.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 2 && !isStopword(f) {
			out = append(out, f)
		}
	}
	return out
}

func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {}, "from": {},
	"are": {}, "was": {}, "were": {}, "will": {}, "have": {}, "has": {}, "had": {},
	"you": {}, "your": {}, "our": {}, "their": {}, "into": {}, "over": {}, "about": {},
	"able": {}, "must": {}, "should": {}, "years": {}, "experience": {}, "strong": {},
}

func isStopword(s string) bool {
	_, ok := stopwords[s]
	return ok
}
