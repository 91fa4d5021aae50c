// Package grpc exposes VaultService over gRPC with JSON-encoded messages.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/careervault/internal/engine"
	"github.com/dmitrijs2005/careervault/internal/logging"
	"github.com/dmitrijs2005/careervault/internal/server/audit"
	"github.com/dmitrijs2005/careervault/internal/server/services"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

// VaultManager is the service layer the handlers delegate to.
type VaultManager interface {
	EnsureVault(ctx context.Context, userID string) (*vault.Vault, error)
	GetVaultData(ctx context.Context, userID string) (*services.VaultData, error)
	AddVaultItem(ctx context.Context, userID, vaultID, category string, itemData map[string]any, userAuthored bool) (*vault.Item, error)
	SubmitAnswer(ctx context.Context, userID, vaultID, targetCategory, answerText string) (*vault.Item, error)
	GetAudit(ctx context.Context, userID, vaultID string, forceRefresh bool) (*audit.Result, error)
	Recommend(ctx context.Context, userID, vaultID string) ([]engine.Recommendation, error)
	MatchRequirement(ctx context.Context, userID, vaultID, requirement string, limit int) ([]engine.RequirementMatch, error)
	RescoreVault(ctx context.Context, userID, vaultID string) (*services.RescoreResult, error)
	ReconcileCounts(ctx context.Context, userID, vaultID string) (*services.ReconcileResult, error)
	ExportAudit(ctx context.Context, userID, vaultID string) (*services.ExportResult, error)
}

type GRPCServer struct {
	address   string
	vaults    VaultManager
	logger    logging.Logger
	jwtSecret []byte
}

var _ VaultServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, vs VaultManager, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		vaults:    vs,
		jwtSecret: []byte(secretKey),
	}
}

// NewServer builds a grpc.Server with the codec, interceptors and service registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.ForceServerCodec(Codec{}),
		grpc.ChainUnaryInterceptor(s.observeInterceptor, s.accessTokenInterceptor),
	}, opts...)

	srv := grpc.NewServer(opts...)
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis and stops gracefully when ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
