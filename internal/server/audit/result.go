// Package audit holds the vault audit result and a bounded TTL cache for it.
package audit

import (
	"time"

	"github.com/dmitrijs2005/careervault/internal/engine"
)

// Result is the full-vault audit.
type Result struct {
	VaultID          string                  `json:"vault_id"`
	StrengthScore    int                     `json:"strength_score"`
	ItemCount        int                     `json:"item_count"`
	CountsByCategory map[string]int          `json:"counts_by_category"`
	CountsByTier     map[string]int          `json:"counts_by_tier"`
	AverageFreshness int                     `json:"average_freshness"`
	StaleCount       int                     `json:"stale_count"`
	DuplicateCount   int                     `json:"duplicate_count"`
	Recommendations  []engine.Recommendation `json:"recommendations"`
	CountsConsistent bool                    `json:"counts_consistent"`
	GeneratedAt      time.Time               `json:"generated_at"`
}
