package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/careervault/internal/client/config"

	gs "github.com/dmitrijs2005/careervault/internal/server/grpc"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// VaultAPI is the subset of the vault client the CLI drives.
type VaultAPI interface {
	Ping(ctx context.Context) (*gs.PingResponse, error)
	EnsureVault(ctx context.Context) (*gs.EnsureVaultResponse, error)
	GetVaultData(ctx context.Context) (*gs.GetVaultDataResponse, error)
	AddVaultItem(ctx context.Context, in *gs.AddVaultItemRequest) (*gs.ItemResponse, error)
	SubmitAnswer(ctx context.Context, in *gs.SubmitAnswerRequest) (*gs.ItemResponse, error)
	GetAudit(ctx context.Context, in *gs.GetAuditRequest) (*gs.GetAuditResponse, error)
	Recommend(ctx context.Context, in *gs.RecommendRequest) (*gs.RecommendResponse, error)
	MatchRequirement(ctx context.Context, in *gs.MatchRequirementRequest) (*gs.MatchRequirementResponse, error)
	RescoreVault(ctx context.Context, in *gs.RescoreVaultRequest) (*gs.RescoreVaultResponse, error)
	ReconcileCounts(ctx context.Context, in *gs.ReconcileCountsRequest) (*gs.ReconcileCountsResponse, error)
	ExportAudit(ctx context.Context, in *gs.ExportAuditRequest) (*gs.ExportAuditResponse, error)
	Close() error
}

type App struct {
	config  *config.Config
	api     VaultAPI
	reader  *bufio.Reader
	out     io.Writer
	vaultID string

	mu   sync.RWMutex
	mode Mode
}

// NewApp connects to the configured server, prompting for a token when none
// was configured.
func NewApp(c *config.Config) (*App, error) {
	token := c.AccessToken
	if token == "" {
		t, err := GetToken(os.Stdout)
		if err != nil {
			return nil, err
		}
		token = t
	}

	client, err := gs.NewClient(c.ServerEndpointAddr, token)
	if err != nil {
		return nil, err
	}

	return newApp(c, client, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api VaultAPI, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.api.Close(); err != nil {
			log.Printf("close error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	log.Println("Welcome to careervault CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		log.Printf("Switched to %s mode\n", mode)
	}
}

// checkOnline pings the server once and records the outcome.
func (a *App) checkOnline() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline()
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) status() string {
	s := string(a.Mode())
	if a.vaultID != "" {
		s += " vault=" + shortID(a.vaultID)
	}
	return s
}

// callContext bounds a single RPC by the configured timeout.
func (a *App) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.CallTimeout)
}
