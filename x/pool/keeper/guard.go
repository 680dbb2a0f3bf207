package keeper

import (
	"context"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// poolLockID names the pool's single busy flag. All mutating operations share
// it, so any nested mutation is rejected regardless of its kind.
const poolLockID = "pool"

// ReentrancyGuard provides in-memory locks shared by all copies of a keeper.
type ReentrancyGuard struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

// NewReentrancyGuard creates a new guard instance.
func NewReentrancyGuard() *ReentrancyGuard {
	return &ReentrancyGuard{locks: make(map[string]struct{})}
}

// Lock acquires a named lock or returns an error if already held.
func (g *ReentrancyGuard) Lock(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.locks[key]; exists {
		return types.ErrReentrancyDetected.Wrapf("%s is busy", key)
	}

	g.locks[key] = struct{}{}
	return nil
}

// Unlock releases a named lock.
func (g *ReentrancyGuard) Unlock(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.locks, key)
}

// Locked reports whether key is currently held.
func (g *ReentrancyGuard) Locked(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.locks[key]
	return ok
}

// WithReentrancyGuard runs fn as one atomic, non-reentrant pool operation.
//
// The busy flag is held both in memory and as a marker in the module store, so
// a nested call is rejected whether it arrives through this keeper or through
// a context derived from the one fn receives. fn runs on a cache context: its
// state writes and events reach ctx only when it returns nil. Locks are released
// on every exit path, panics included.
func (k Keeper) WithReentrancyGuard(ctx context.Context, operation string, fn func(sdk.Context) error) error {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	if err := k.guard.Lock(poolLockID); err != nil {
		k.rejectReentrant(sdkCtx, operation)
		return types.ErrReentrancyDetected.Wrapf("%s rejected: pool operation in progress", operation)
	}
	defer k.guard.Unlock(poolLockID)

	if err := k.acquireReentrancyLock(sdkCtx, poolLockID); err != nil {
		k.rejectReentrant(sdkCtx, operation)
		return types.ErrReentrancyDetected.Wrapf("%s rejected: %v", operation, err)
	}
	defer k.releaseReentrancyLock(sdkCtx, poolLockID)

	cacheCtx, write := sdkCtx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}

	write()
	return nil
}

func (k Keeper) rejectReentrant(ctx sdk.Context, operation string) {
	k.metrics.GuardRejections.WithLabelValues(operation).Inc()
	k.Logger(ctx).Error("reentrant pool call rejected", "operation", operation)
}

// acquireReentrancyLock sets the busy marker in the KV store
func (k Keeper) acquireReentrancyLock(ctx context.Context, lockID string) error {
	store := k.getStore(ctx)
	key := ReentrancyLockKey(lockID)

	if store.Has(key) {
		return types.ErrReentrancyDetected.Wrapf("%s is already locked", lockID)
	}

	store.Set(key, []byte{0x01})
	return nil
}

// releaseReentrancyLock clears the busy marker
func (k Keeper) releaseReentrancyLock(ctx context.Context, lockID string) {
	k.getStore(ctx).Delete(ReentrancyLockKey(lockID))
}

// IsBusy reports whether a mutating operation is in progress.
func (k Keeper) IsBusy(ctx context.Context) bool {
	return k.guard.Locked(poolLockID) || k.getStore(ctx).Has(ReentrancyLockKey(poolLockID))
}
