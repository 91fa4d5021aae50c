package grpc

import (
	"time"

	"github.com/dmitrijs2005/careervault/internal/engine"
	"github.com/dmitrijs2005/careervault/internal/server/audit"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// VaultView is the wire shape of a vault with counters keyed by category slug.
type VaultView struct {
	ID                   string         `json:"id"`
	UserID               string         `json:"user_id"`
	Counts               map[string]int `json:"counts"`
	OverallStrengthScore int            `json:"overall_strength_score"`
	CreatedAt            time.Time      `json:"created_at"`
	LastUpdatedAt        time.Time      `json:"last_updated_at"`
}

func viewOf(v *vault.Vault) *VaultView {
	if v == nil {
		return nil
	}
	return &VaultView{
		ID:                   v.ID,
		UserID:               v.UserID,
		Counts:               v.Counts.ByCategory(),
		OverallStrengthScore: v.OverallStrengthScore,
		CreatedAt:            v.CreatedAt,
		LastUpdatedAt:        v.LastUpdatedAt,
	}
}

type EnsureVaultRequest struct{}

type EnsureVaultResponse struct {
	Vault *VaultView `json:"vault"`
}

type GetVaultDataRequest struct{}

type GetVaultDataResponse struct {
	Vault           *VaultView               `json:"vault"`
	ItemsByCategory map[string][]*vault.Item `json:"items_by_category"`
}

type AddVaultItemRequest struct {
	VaultID      string         `json:"vault_id"`
	Category     string         `json:"category"`
	ItemData     map[string]any `json:"item_data"`
	UserAuthored bool           `json:"user_authored"`
}

type ItemResponse struct {
	Item *vault.Item `json:"item"`
}

type SubmitAnswerRequest struct {
	VaultID        string `json:"vault_id"`
	TargetCategory string `json:"target_category"`
	AnswerText     string `json:"answer_text"`
}

type GetAuditRequest struct {
	VaultID      string `json:"vault_id"`
	ForceRefresh bool   `json:"force_refresh"`
}

type GetAuditResponse struct {
	Audit *audit.Result `json:"audit"`
}

type RecommendRequest struct {
	VaultID string `json:"vault_id"`
}

type RecommendResponse struct {
	Recommendations []engine.Recommendation `json:"recommendations"`
}

type MatchRequirementRequest struct {
	VaultID     string `json:"vault_id"`
	Requirement string `json:"requirement"`
	Limit       int    `json:"limit"`
}

type MatchRequirementResponse struct {
	Matches []engine.RequirementMatch `json:"matches"`
	// Strength aggregates the returned matches.
	Strength int `json:"strength"`
}

type RescoreVaultRequest struct {
	VaultID string `json:"vault_id"`
}

type RescoreVaultResponse struct {
	Updated  int `json:"updated"`
	Strength int `json:"strength"`
}

type ReconcileCountsRequest struct {
	VaultID string `json:"vault_id"`
}

type ReconcileCountsResponse struct {
	Consistent bool           `json:"consistent"`
	Before     map[string]int `json:"before"`
	After      map[string]int `json:"after"`
}

type ExportAuditRequest struct {
	VaultID string `json:"vault_id"`
}

type ExportAuditResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
