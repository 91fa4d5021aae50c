// Package services contains server-side business logic. VaultService owns the
// vault lifecycle: item writes, scoring, audits, matching and maintenance.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/careervault/internal/ai"
	"github.com/dmitrijs2005/careervault/internal/common"
	"github.com/dmitrijs2005/careervault/internal/dbx"
	"github.com/dmitrijs2005/careervault/internal/engine"
	"github.com/dmitrijs2005/careervault/internal/logging"
	"github.com/dmitrijs2005/careervault/internal/server/audit"
	"github.com/dmitrijs2005/careervault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/careervault/internal/timex"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

const (
	// DefaultRescoreConcurrency bounds parallel row updates in RescoreVault.
	DefaultRescoreConcurrency = 4

	writeAttempts = 3
)

// ReportExporter uploads an audit and returns its storage key and a download URL.
type ReportExporter interface {
	Export(ctx context.Context, result *audit.Result) (key, url string, err error)
}

// VaultData is the read model of a user's vault.
type VaultData struct {
	Vault           *vault.Vault
	ItemsByCategory map[string][]*vault.Item
}

// txRunner runs fn in one transaction, retrying transient conflicts up to
// attempts times.
type txRunner func(ctx context.Context, attempts int, fn func(ctx context.Context, tx dbx.DBTX) error) error

type VaultService struct {
	db          *sql.DB
	runTx       txRunner
	repomanager repomanager.RepositoryManager
	audits      *audit.Cache
	scorer      engine.Scorer
	copywriter  *ai.Guard
	exporter    ReportExporter
	log         logging.Logger
	now         timex.Clock
	concurrency int
	matchBudget time.Duration
}

type Option func(*VaultService)

// WithScorer sets the requirement scorer. The lexical scorer is used by default.
func WithScorer(s engine.Scorer) Option {
	return func(v *VaultService) { v.scorer = s }
}

// WithCopywriter enables provider-written recommendation actions.
func WithCopywriter(g *ai.Guard) Option {
	return func(v *VaultService) { v.copywriter = g }
}

func WithExporter(e ReportExporter) Option {
	return func(v *VaultService) { v.exporter = e }
}

func WithClock(now timex.Clock) Option {
	return func(v *VaultService) { v.now = now }
}

func WithRescoreConcurrency(n int) Option {
	return func(v *VaultService) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithMatchBudget bounds the time MatchRequirement spends in the scorer.
func WithMatchBudget(d time.Duration) Option {
	return func(v *VaultService) { v.matchBudget = d }
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, audits *audit.Cache, log logging.Logger, opts ...Option) *VaultService {
	if log == nil {
		log = logging.Nop()
	}
	s := &VaultService{
		db:          db,
		repomanager: m,
		audits:      audits,
		scorer:      engine.LexicalScorer{},
		log:         log.With("module", "vault_service"),
		now:         timex.Now,
		concurrency: DefaultRescoreConcurrency,
		matchBudget: engine.DefaultMatchBudget,
	}
	s.runTx = func(ctx context.Context, attempts int, fn func(ctx context.Context, tx dbx.DBTX) error) error {
		return dbx.WithRetryTx(ctx, db, attempts, fn)
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// EnsureVault returns the user's vault, creating it on first use.
func (s *VaultService) EnsureVault(ctx context.Context, userID string) (*vault.Vault, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	v, err := s.repomanager.Vaults(s.db).Ensure(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ensure vault: %w", err)
	}
	return v, nil
}

// GetVaultData returns the user's vault with its items grouped by category
// slug. A user without a vault gets a nil vault and an empty grouping.
func (s *VaultService) GetVaultData(ctx context.Context, userID string) (*VaultData, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}

	data := &VaultData{ItemsByCategory: map[string][]*vault.Item{}}

	v, err := s.repomanager.Vaults(s.db).GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vault: %w", err)
	}
	data.Vault = v

	items, err := s.evaluatedItems(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		slug := item.Category.String()
		data.ItemsByCategory[slug] = append(data.ItemsByCategory[slug], item)
	}
	return data, nil
}

// AddVaultItem validates and stores one item. The insert and the counter
// increment commit together; strength is recomputed afterwards.
func (s *VaultService) AddVaultItem(ctx context.Context, userID, vaultID, category string, itemData map[string]any, userAuthored bool) (*vault.Item, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	cat, ok := vault.ParseCategory(category)
	if !ok {
		return nil, common.NewValidationError("category", fmt.Sprintf("unknown category %q", category))
	}

	item := vault.Normalize(cat, itemData)
	if !item.Committed() {
		return nil, common.NewValidationError("content", "must not be blank")
	}

	v, err := s.authorize(ctx, userID, vaultID)
	if err != nil {
		return nil, err
	}

	if userAuthored {
		item.UserAuthored = true
		item.QualityTier = vault.TierGold
		item.Evidence.AIConfidence = vault.Float(1.0)
	}
	return s.insert(ctx, v, item)
}

// SubmitAnswer stores a free-text answer as an ai-inferred, unverified item of
// targetCategory. Unknown categories are kept as behavioral indicators with the
// requested category recorded in attributes.
func (s *VaultService) SubmitAnswer(ctx context.Context, userID, vaultID, targetCategory, answerText string) (*vault.Item, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	answer := strings.TrimSpace(answerText)
	if answer == "" {
		return nil, common.NewValidationError("answer_text", "must not be blank")
	}

	attrs := map[string]string{"source": "answer"}
	cat, ok := vault.ParseCategory(targetCategory)
	if ok {
		for k, val := range cat.Spec().AnswerAttributes {
			attrs[k] = val
		}
	} else {
		cat = vault.BehavioralIndicator
		attrs["requested_category"] = targetCategory
	}

	item := vault.Normalize(cat, map[string]any{
		cat.Spec().ContentKeys[0]: answer,
		"ai_inferred":             true,
		"verification_status":     string(vault.Unverified),
	})
	for k, val := range attrs {
		item.Attributes[k] = val
	}

	v, err := s.authorize(ctx, userID, vaultID)
	if err != nil {
		return nil, err
	}
	return s.insert(ctx, v, item)
}

func (s *VaultService) insert(ctx context.Context, v *vault.Vault, item *vault.Item) (*vault.Item, error) {
	now := s.now()

	item.ID = uuid.NewString()
	item.VaultID = v.ID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if !item.UserAuthored {
		item.QualityTier = engine.Reclassify(item)
	}
	item.FreshnessScore = engine.Freshness(item, now)

	var created *vault.Item
	err := s.runTx(ctx, writeAttempts, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		created, err = s.repomanager.Items(tx).Create(ctx, item)
		if err != nil {
			return fmt.Errorf("create item: %w", err)
		}
		if _, err := s.repomanager.Vaults(tx).IncrementCount(ctx, v.ID, item.Category); err != nil {
			return fmt.Errorf("increment count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audits.Invalidate(v.ID)
	if _, err := s.recomputeStrength(ctx, v.ID); err != nil {
		s.log.Warn(ctx, "strength recompute failed", "vault_id", v.ID, "error", err)
	}

	s.log.Info(ctx, "vault item added",
		"vault_id", v.ID,
		"item_id", created.ID,
		"category", created.Category.String(),
		"tier", string(created.QualityTier),
	)
	return created, nil
}

// authorize loads the vault and checks it belongs to userID.
func (s *VaultService) authorize(ctx context.Context, userID, vaultID string) (*vault.Vault, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	if _, err := uuid.Parse(vaultID); err != nil {
		return nil, common.NewValidationError("vault_id", "must be a uuid")
	}

	v, err := s.repomanager.Vaults(s.db).GetByID(ctx, vaultID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get vault: %w", err)
	}
	if v.UserID != userID {
		return nil, fmt.Errorf("vault %s: %w", vaultID, common.ErrorUnauthorized)
	}
	return v, nil
}

// evaluatedItems lists the vault and re-derives tier and freshness in memory.
func (s *VaultService) evaluatedItems(ctx context.Context, vaultID string) ([]*vault.Item, error) {
	items, err := s.repomanager.Items(s.db).ListByVault(ctx, vaultID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	engine.Evaluate(items, s.now())
	return items, nil
}

func (s *VaultService) recomputeStrength(ctx context.Context, vaultID string) (int, error) {
	items, err := s.evaluatedItems(ctx, vaultID)
	if err != nil {
		return 0, err
	}
	score := engine.HealthStrength(items)
	if err := s.repomanager.Vaults(s.db).UpdateStrength(ctx, vaultID, score); err != nil {
		return 0, fmt.Errorf("update strength: %w", err)
	}
	return score, nil
}
