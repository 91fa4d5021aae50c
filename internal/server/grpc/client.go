package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/dmitrijs2005/careervault/internal/common"
)

// Client calls VaultService, attaching the access token to every call.
type Client struct {
	conn  *grpc.ClientConn
	token string
}

// NewClient connects to target. Without extra options the connection is
// plaintext; pass transport credentials to override.
func NewClient(target, accessToken string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, token: accessToken}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, c.token)
	}
	return c.conn.Invoke(ctx, method, in, out)
}

// call invokes method and decodes the reply into a new Resp.
func call[Resp any](ctx context.Context, c *Client, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := c.invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	return call[PingResponse](ctx, c, MethodPing, &PingRequest{})
}

func (c *Client) EnsureVault(ctx context.Context) (*EnsureVaultResponse, error) {
	return call[EnsureVaultResponse](ctx, c, MethodEnsureVault, &EnsureVaultRequest{})
}

func (c *Client) GetVaultData(ctx context.Context) (*GetVaultDataResponse, error) {
	return call[GetVaultDataResponse](ctx, c, MethodGetVaultData, &GetVaultDataRequest{})
}

func (c *Client) AddVaultItem(ctx context.Context, in *AddVaultItemRequest) (*ItemResponse, error) {
	return call[ItemResponse](ctx, c, MethodAddVaultItem, in)
}

func (c *Client) SubmitAnswer(ctx context.Context, in *SubmitAnswerRequest) (*ItemResponse, error) {
	return call[ItemResponse](ctx, c, MethodSubmitAnswer, in)
}

func (c *Client) GetAudit(ctx context.Context, in *GetAuditRequest) (*GetAuditResponse, error) {
	return call[GetAuditResponse](ctx, c, MethodGetAudit, in)
}

func (c *Client) Recommend(ctx context.Context, in *RecommendRequest) (*RecommendResponse, error) {
	return call[RecommendResponse](ctx, c, MethodRecommend, in)
}

func (c *Client) MatchRequirement(ctx context.Context, in *MatchRequirementRequest) (*MatchRequirementResponse, error) {
	return call[MatchRequirementResponse](ctx, c, MethodMatchRequirement, in)
}

func (c *Client) RescoreVault(ctx context.Context, in *RescoreVaultRequest) (*RescoreVaultResponse, error) {
	return call[RescoreVaultResponse](ctx, c, MethodRescoreVault, in)
}

func (c *Client) ReconcileCounts(ctx context.Context, in *ReconcileCountsRequest) (*ReconcileCountsResponse, error) {
	return call[ReconcileCountsResponse](ctx, c, MethodReconcileCounts, in)
}

func (c *Client) ExportAudit(ctx context.Context, in *ExportAuditRequest) (*ExportAuditResponse, error) {
	return call[ExportAuditResponse](ctx, c, MethodExportAudit, in)
}
