package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/careervault/internal/common"
	"github.com/dmitrijs2005/careervault/internal/engine"
)

func (s *GRPCServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return &PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) EnsureVault(ctx context.Context, req *EnsureVaultRequest) (*EnsureVaultResponse, error) {
	v, err := s.vaults.EnsureVault(ctx, common.UserIDFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &EnsureVaultResponse{Vault: viewOf(v)}, nil
}

func (s *GRPCServer) GetVaultData(ctx context.Context, req *GetVaultDataRequest) (*GetVaultDataResponse, error) {
	data, err := s.vaults.GetVaultData(ctx, common.UserIDFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &GetVaultDataResponse{Vault: viewOf(data.Vault), ItemsByCategory: data.ItemsByCategory}, nil
}

func (s *GRPCServer) AddVaultItem(ctx context.Context, req *AddVaultItemRequest) (*ItemResponse, error) {
	item, err := s.vaults.AddVaultItem(ctx, common.UserIDFromContext(ctx), req.VaultID, req.Category, req.ItemData, req.UserAuthored)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ItemResponse{Item: item}, nil
}

func (s *GRPCServer) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*ItemResponse, error) {
	item, err := s.vaults.SubmitAnswer(ctx, common.UserIDFromContext(ctx), req.VaultID, req.TargetCategory, req.AnswerText)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ItemResponse{Item: item}, nil
}

func (s *GRPCServer) GetAudit(ctx context.Context, req *GetAuditRequest) (*GetAuditResponse, error) {
	res, err := s.vaults.GetAudit(ctx, common.UserIDFromContext(ctx), req.VaultID, req.ForceRefresh)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &GetAuditResponse{Audit: res}, nil
}

func (s *GRPCServer) Recommend(ctx context.Context, req *RecommendRequest) (*RecommendResponse, error) {
	recs, err := s.vaults.Recommend(ctx, common.UserIDFromContext(ctx), req.VaultID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &RecommendResponse{Recommendations: recs}, nil
}

func (s *GRPCServer) MatchRequirement(ctx context.Context, req *MatchRequirementRequest) (*MatchRequirementResponse, error) {
	matches, err := s.vaults.MatchRequirement(ctx, common.UserIDFromContext(ctx), req.VaultID, req.Requirement, req.Limit)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &MatchRequirementResponse{Matches: matches, Strength: engine.MatchStrengthOf(matches)}, nil
}

func (s *GRPCServer) RescoreVault(ctx context.Context, req *RescoreVaultRequest) (*RescoreVaultResponse, error) {
	res, err := s.vaults.RescoreVault(ctx, common.UserIDFromContext(ctx), req.VaultID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &RescoreVaultResponse{Updated: res.Updated, Strength: res.Strength}, nil
}

func (s *GRPCServer) ReconcileCounts(ctx context.Context, req *ReconcileCountsRequest) (*ReconcileCountsResponse, error) {
	res, err := s.vaults.ReconcileCounts(ctx, common.UserIDFromContext(ctx), req.VaultID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ReconcileCountsResponse{Consistent: res.Consistent, Before: res.Before, After: res.After}, nil
}

func (s *GRPCServer) ExportAudit(ctx context.Context, req *ExportAuditRequest) (*ExportAuditResponse, error) {
	res, err := s.vaults.ExportAudit(ctx, common.UserIDFromContext(ctx), req.VaultID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ExportAuditResponse{Key: res.Key, URL: res.URL}, nil
}

// toStatus maps service errors onto gRPC codes. Unclassified errors are
// logged and reported without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	var ve *common.ValidationError

	switch {
	case errors.As(err, &ve):
		return status.Error(codes.InvalidArgument, ve.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		if common.UserIDFromContext(ctx) == "" {
			return status.Error(codes.Unauthenticated, "unauthenticated")
		}
		return status.Error(codes.PermissionDenied, "vault belongs to another user")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}
