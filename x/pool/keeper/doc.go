// Package keeper implements the accounting core of a two-asset liquidity pool.
//
// The keeper tracks the reserves of two fungible assets held on behalf of
// liquidity providers, issues proportional LP shares and executes
// constant-product swaps with a fixed 0.3% fee. Every swap is cross-checked
// against an external time-weighted reference price.
//
// # Security Features
//
// Reentrancy: every mutating operation runs inside WithReentrancyGuard, which
// holds a per-pool busy flag (in memory and in the KV store) for the whole call
// and executes the body on a cache context that is only written on success.
//
// Transfer accounting: the pool never trusts requested transfer amounts. It
// measures ledger balances before and after every transfer, so assets that
// charge a fee on transfer cannot desynchronize reserves from holdings.
//
// Price manipulation: a swap may not pay out more than amountIn times the
// oracle TWAP, so a reserve ratio pushed away from the market inside one block
// cannot be exploited.
//
// # Invariants
//
// RegisterInvariants exposes conservation (reserves equal pool account
// balances), share-supply (provider balances sum to TotalShares) and
// positive-reserves checks.
package keeper
