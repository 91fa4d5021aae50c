package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/careervault/internal/common"
	"github.com/dmitrijs2005/careervault/internal/dbx"
	"github.com/dmitrijs2005/careervault/internal/server/audit"
	"github.com/dmitrijs2005/careervault/internal/server/repositories/items"
	"github.com/dmitrijs2005/careervault/internal/server/repositories/vaults"
	"github.com/dmitrijs2005/careervault/internal/vault"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeStore backs the in-memory repositories. Writes apply immediately; writes
// made through a fakeTx are undone when the transaction function fails.
type fakeStore struct {
	mu     sync.Mutex
	vaults map[string]*vault.Vault
	items  map[string][]*vault.Item

	createErr    error
	incrementErr error
	updateErr    error
	strengthErr  error

	scoreUpdates []string
	setCounts    int
	rollbacks    int
}

// fakeTx is the handle passed to transaction functions. It never reaches SQL.
type fakeTx struct {
	dbx.DBTX
	undo []func()
}

// runTx stands in for dbx.WithRetryTx. On error the undo log is replayed in
// reverse, leaving the store as it was before fn ran.
func (s *fakeStore) runTx(ctx context.Context, _ int, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	tx := &fakeTx{}
	if err := fn(ctx, tx); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.rollbacks++
		return err
	}
	return nil
}

// onRollback registers undo when db is a transaction. Callers hold s.mu.
func onRollback(db dbx.DBTX, undo func()) {
	if tx, ok := db.(*fakeTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

func newFakeStore() *fakeStore {
	return &fakeStore{vaults: map[string]*vault.Vault{}, items: map[string][]*vault.Item{}}
}

func (s *fakeStore) addVault(userID string) *vault.Vault {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := &vault.Vault{ID: uuid.NewString(), UserID: userID, CreatedAt: testNow, LastUpdatedAt: testNow}
	s.vaults[v.ID] = v
	return cloneVault(v)
}

// seed stores items as-is and bumps counters, mimicking rows written earlier.
func (s *fakeStore) seed(vaultID string, items ...*vault.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.VaultID = vaultID
		s.items[vaultID] = append(s.items[vaultID], cloneItem(item))
		s.vaults[vaultID].Counts.Add(item.Category, 1)
	}
}

func (s *fakeStore) vault(id string) *vault.Vault {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneVault(s.vaults[id])
}

func (s *fakeStore) stored(vaultID string) []*vault.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*vault.Item, 0, len(s.items[vaultID]))
	for _, item := range s.items[vaultID] {
		out = append(out, cloneItem(item))
	}
	return out
}

func cloneVault(v *vault.Vault) *vault.Vault {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneItem(i *vault.Item) *vault.Item {
	c := *i
	c.Attributes = make(map[string]string, len(i.Attributes))
	for k, v := range i.Attributes {
		c.Attributes[k] = v
	}
	return &c
}

type fakeManager struct{ store *fakeStore }

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeManager) Vaults(db dbx.DBTX) vaults.Repository { return &fakeVaults{m.store, db} }

func (m *fakeManager) Items(db dbx.DBTX) items.Repository { return &fakeItems{m.store, db} }

type fakeVaults struct {
	s  *fakeStore
	db dbx.DBTX
}

func (r *fakeVaults) Ensure(_ context.Context, userID string) (*vault.Vault, error) {
	r.s.mu.Lock()
	for _, v := range r.s.vaults {
		if v.UserID == userID {
			r.s.mu.Unlock()
			return cloneVault(v), nil
		}
	}
	r.s.mu.Unlock()
	return r.s.addVault(userID), nil
}

func (r *fakeVaults) GetByUserID(_ context.Context, userID string) (*vault.Vault, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.vaults {
		if v.UserID == userID {
			return cloneVault(v), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *fakeVaults) GetByID(_ context.Context, vaultID string) (*vault.Vault, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vaults[vaultID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneVault(v), nil
}

func (r *fakeVaults) Lock(ctx context.Context, vaultID string) (*vault.Vault, error) {
	return r.GetByID(ctx, vaultID)
}

func (r *fakeVaults) IncrementCount(_ context.Context, vaultID string, cat vault.Category) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.incrementErr != nil {
		return 0, r.s.incrementErr
	}
	v, ok := r.s.vaults[vaultID]
	if !ok {
		return 0, common.ErrorNotFound
	}
	v.Counts.Add(cat, 1)
	onRollback(r.db, func() { v.Counts.Add(cat, -1) })
	return v.Counts.Get(cat), nil
}

func (r *fakeVaults) SetCounts(_ context.Context, vaultID string, counts vault.Counts) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v := r.s.vaults[vaultID]
	prev := v.Counts
	v.Counts = counts
	onRollback(r.db, func() { v.Counts = prev })
	r.s.setCounts++
	return nil
}

func (r *fakeVaults) UpdateStrength(_ context.Context, vaultID string, score int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.strengthErr != nil {
		return r.s.strengthErr
	}
	v := r.s.vaults[vaultID]
	prev := v.OverallStrengthScore
	v.OverallStrengthScore = score
	onRollback(r.db, func() { v.OverallStrengthScore = prev })
	return nil
}

type fakeItems struct {
	s  *fakeStore
	db dbx.DBTX
}

func (r *fakeItems) Create(_ context.Context, item *vault.Item) (*vault.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.createErr != nil {
		return nil, r.s.createErr
	}
	vaultID, id := item.VaultID, item.ID
	r.s.items[vaultID] = append(r.s.items[vaultID], cloneItem(item))
	onRollback(r.db, func() {
		kept := r.s.items[vaultID][:0]
		for _, it := range r.s.items[vaultID] {
			if it.ID != id {
				kept = append(kept, it)
			}
		}
		r.s.items[vaultID] = kept
	})
	return cloneItem(item), nil
}

func (r *fakeItems) ListByVault(_ context.Context, vaultID string) ([]*vault.Item, error) {
	return r.s.stored(vaultID), nil
}

func (r *fakeItems) UpdateScores(_ context.Context, itemID string, tier vault.Tier, freshness int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.updateErr != nil {
		return r.s.updateErr
	}
	for _, list := range r.s.items {
		for _, item := range list {
			if item.ID == itemID {
				prevTier, prevFresh := item.QualityTier, item.FreshnessScore
				item.QualityTier, item.FreshnessScore = tier, freshness
				onRollback(r.db, func() { item.QualityTier, item.FreshnessScore = prevTier, prevFresh })
				r.s.scoreUpdates = append(r.s.scoreUpdates, itemID)
				return nil
			}
		}
	}
	return common.ErrorNotFound
}

func (r *fakeItems) CountByCategory(_ context.Context, vaultID string) (vault.Counts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var c vault.Counts
	for _, item := range r.s.items[vaultID] {
		c.Add(item.Category, 1)
	}
	return c, nil
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestService(t *testing.T, opts ...Option) (*VaultService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	cache, err := audit.NewCache(16, time.Minute, audit.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	svc := NewVaultService(newTestDB(t), &fakeManager{store}, cache, nil, opts...)
	svc.runTx = store.runTx
	return svc, store
}
