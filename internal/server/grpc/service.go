package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "careervault.v1.VaultService"

// Full method names.
const (
	MethodPing             = "/" + ServiceName + "/Ping"
	MethodEnsureVault      = "/" + ServiceName + "/EnsureVault"
	MethodGetVaultData     = "/" + ServiceName + "/GetVaultData"
	MethodAddVaultItem     = "/" + ServiceName + "/AddVaultItem"
	MethodSubmitAnswer     = "/" + ServiceName + "/SubmitAnswer"
	MethodGetAudit         = "/" + ServiceName + "/GetAudit"
	MethodRecommend        = "/" + ServiceName + "/Recommend"
	MethodMatchRequirement = "/" + ServiceName + "/MatchRequirement"
	MethodRescoreVault     = "/" + ServiceName + "/RescoreVault"
	MethodReconcileCounts  = "/" + ServiceName + "/ReconcileCounts"
	MethodExportAudit      = "/" + ServiceName + "/ExportAudit"
)

// VaultServer is the server API of ServiceName.
type VaultServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	EnsureVault(context.Context, *EnsureVaultRequest) (*EnsureVaultResponse, error)
	GetVaultData(context.Context, *GetVaultDataRequest) (*GetVaultDataResponse, error)
	AddVaultItem(context.Context, *AddVaultItemRequest) (*ItemResponse, error)
	SubmitAnswer(context.Context, *SubmitAnswerRequest) (*ItemResponse, error)
	GetAudit(context.Context, *GetAuditRequest) (*GetAuditResponse, error)
	Recommend(context.Context, *RecommendRequest) (*RecommendResponse, error)
	MatchRequirement(context.Context, *MatchRequirementRequest) (*MatchRequirementResponse, error)
	RescoreVault(context.Context, *RescoreVaultRequest) (*RescoreVaultResponse, error)
	ReconcileCounts(context.Context, *ReconcileCountsRequest) (*ReconcileCountsResponse, error)
	ExportAudit(context.Context, *ExportAuditRequest) (*ExportAuditResponse, error)
}

// ServiceDesc registers a VaultServer with a grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Ping", VaultServer.Ping),
		unary("EnsureVault", VaultServer.EnsureVault),
		unary("GetVaultData", VaultServer.GetVaultData),
		unary("AddVaultItem", VaultServer.AddVaultItem),
		unary("SubmitAnswer", VaultServer.SubmitAnswer),
		unary("GetAudit", VaultServer.GetAudit),
		unary("Recommend", VaultServer.Recommend),
		unary("MatchRequirement", VaultServer.MatchRequirement),
		unary("RescoreVault", VaultServer.RescoreVault),
		unary("ReconcileCounts", VaultServer.ReconcileCounts),
		unary("ExportAudit", VaultServer.ExportAudit),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "careervault/v1/vault",
}

// unary builds the method descriptor of one request/response RPC.
func unary[Req, Resp any](name string, call func(VaultServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name

	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(VaultServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}
