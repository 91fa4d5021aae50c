package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/dmitrijs2005/careervault/internal/common"
	"github.com/dmitrijs2005/careervault/internal/logging"
	"github.com/dmitrijs2005/careervault/internal/server/auth"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop(), &fakeVaults{}, "secret")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), &fakeVaults{}, "secret")
	assert.Error(t, srv.Run(context.Background()))
}

// startBufconn serves vs in memory and returns a client factory bound to it.
func startBufconn(t *testing.T, vs VaultManager) func(token string) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewGRPCServer("bufnet", logging.Nop(), vs, "secret").Serve(ctx, lis)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return func(token string) *Client {
		c, err := NewClient("passthrough:///bufnet", token,
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	}
}

func TestEndToEnd_OverBufconn(t *testing.T) {
	fv := &fakeVaults{item: &vault.Item{
		ID:          "i-1",
		VaultID:     "v-1",
		Category:    vault.PowerPhrase,
		Content:     "Cut latency 40%",
		QualityTier: vault.TierGold,
		Attributes:  map[string]string{"source": "answer"},
	}}
	dial := startBufconn(t, fv)
	ctx := context.Background()

	anon := dial("")
	pong, err := anon.Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK", pong.Status)

	_, err = anon.AddVaultItem(ctx, &AddVaultItemRequest{VaultID: "v-1", Category: "power-phrase"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	token, err := auth.GenerateToken("u-7", []byte("secret"), time.Minute)
	require.NoError(t, err)
	client := dial(token)

	resp, err := client.AddVaultItem(ctx, &AddVaultItemRequest{
		VaultID:      "v-1",
		Category:     "power-phrase",
		ItemData:     map[string]any{"content": "Cut latency 40%", "evidence_count": 2},
		UserAuthored: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "u-7", fv.userID)
	assert.Equal(t, vault.PowerPhrase, resp.Item.Category)
	assert.Equal(t, vault.TierGold, resp.Item.QualityTier)
	assert.Equal(t, "answer", resp.Item.Attributes["source"])
	require.Len(t, fv.args, 4)
	assert.Equal(t, map[string]any{"content": "Cut latency 40%", "evidence_count": float64(2)}, fv.args[2])

	fv.err = common.NewValidationError("requirement", "must not be blank")
	_, err = client.MatchRequirement(ctx, &MatchRequirementRequest{VaultID: "v-1"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "requirement")
}
