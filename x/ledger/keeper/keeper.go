package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/pairpool/x/ledger/types"
)

var (
	// BalanceKeyPrefix is the prefix for account balances
	BalanceKeyPrefix = []byte{0x01}

	// SupplyKeyPrefix is the prefix for a denom's total supply
	SupplyKeyPrefix = []byte{0x02}
)

// TransferHook observes every completed transfer. It runs while the caller's
// operation is still in progress, which is how tests model an asset that calls
// back into its holder.
type TransferHook func(ctx context.Context, from, to sdk.AccAddress, amount math.Int)

// Keeper is a fungible ledger for a single denomination. Several keepers can
// share one store key; their entries are separated by denom.
type Keeper struct {
	storeKey storetypes.StoreKey
	denom    string
	feeBps   uint32
	hook     TransferHook
}

// NewKeeper creates a ledger for denom that burns feeBps of every transfer.
func NewKeeper(key storetypes.StoreKey, denom string, feeBps uint32) *Keeper {
	if err := sdk.ValidateDenom(denom); err != nil {
		panic(fmt.Sprintf("invalid ledger denom %q: %v", denom, err))
	}
	if err := types.ValidateFeeBps(feeBps); err != nil {
		panic(err)
	}
	return &Keeper{storeKey: key, denom: denom, feeBps: feeBps}
}

// SetTransferHook installs hook, replacing any previous one. nil removes it.
func (k *Keeper) SetTransferHook(hook TransferHook) {
	k.hook = hook
}

// Denom returns the ledger's denomination.
func (k Keeper) Denom() string { return k.denom }

// FeeBps returns the transfer fee in basis points.
func (k Keeper) FeeBps() uint32 { return k.feeBps }

func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

// Logger returns a module-specific logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName, "denom", k.denom)
}

func (k Keeper) balanceKey(holder sdk.AccAddress) []byte {
	key := append([]byte{}, BalanceKeyPrefix...)
	key = append(key, address.MustLengthPrefix([]byte(k.denom))...)
	return append(key, address.MustLengthPrefix(holder)...)
}

func (k Keeper) supplyKey() []byte {
	key := append([]byte{}, SupplyKeyPrefix...)
	return append(key, []byte(k.denom)...)
}

func (k Keeper) getInt(ctx context.Context, key []byte) math.Int {
	bz := k.getStore(ctx).Get(key)
	if bz == nil {
		return math.ZeroInt()
	}
	var v math.Int
	if err := v.Unmarshal(bz); err != nil {
		panic(fmt.Sprintf("corrupt ledger entry %X: %v", key, err))
	}
	return v
}

func (k Keeper) setInt(ctx context.Context, key []byte, v math.Int) {
	store := k.getStore(ctx)
	if v.IsZero() {
		store.Delete(key)
		return
	}
	bz, err := v.Marshal()
	if err != nil {
		panic(fmt.Sprintf("encode ledger entry: %v", err))
	}
	store.Set(key, bz)
}

// BalanceOf returns holder's balance, zero for unknown accounts.
func (k Keeper) BalanceOf(ctx context.Context, holder sdk.AccAddress) math.Int {
	return k.getInt(ctx, k.balanceKey(holder))
}

// Supply returns the circulating amount of the denom.
func (k Keeper) Supply(ctx context.Context) math.Int {
	return k.getInt(ctx, k.supplyKey())
}

// Mint creates amount out of thin air for to. It is the devnet faucet.
func (k Keeper) Mint(ctx context.Context, to sdk.AccAddress, amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount.Wrap("mint amount must be positive")
	}
	if err := sdk.VerifyAddressFormat(to); err != nil {
		return types.ErrInvalidAddress.Wrap(err.Error())
	}

	k.setInt(ctx, k.balanceKey(to), k.BalanceOf(ctx, to).Add(amount))
	k.setInt(ctx, k.supplyKey(), k.Supply(ctx).Add(amount))
	return nil
}

// TransferFrom moves funds out of a holder's account on behalf of a spender.
// The reference ledger has no allowances, so it behaves like Transfer.
func (k Keeper) TransferFrom(ctx context.Context, from, to sdk.AccAddress, amount math.Int) error {
	return k.transfer(ctx, from, to, amount)
}

// Transfer moves funds from one account to another. The sender is debited
// amount; the recipient is credited amount minus the transfer fee, which is
// burned.
func (k Keeper) Transfer(ctx context.Context, from, to sdk.AccAddress, amount math.Int) error {
	return k.transfer(ctx, from, to, amount)
}

func (k Keeper) transfer(ctx context.Context, from, to sdk.AccAddress, amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return types.ErrInvalidAmount.Wrap("transfer amount must be positive")
	}
	if err := sdk.VerifyAddressFormat(from); err != nil {
		return types.ErrInvalidAddress.Wrapf("sender: %v", err)
	}
	if err := sdk.VerifyAddressFormat(to); err != nil {
		return types.ErrInvalidAddress.Wrapf("recipient: %v", err)
	}

	balance := k.BalanceOf(ctx, from)
	if balance.LT(amount) {
		return types.ErrInsufficientFunds.Wrapf("%s has %s%s, needs %s", from, balance, k.denom, amount)
	}

	fee := TransferFee(amount, k.feeBps)
	credit := amount.Sub(fee)

	k.setInt(ctx, k.balanceKey(from), balance.Sub(amount))
	k.setInt(ctx, k.balanceKey(to), k.BalanceOf(ctx, to).Add(credit))
	if fee.IsPositive() {
		k.setInt(ctx, k.supplyKey(), k.Supply(ctx).Sub(fee))
	}

	if k.hook != nil {
		k.hook(ctx, from, to, amount)
	}
	return nil
}

// TransferFee returns floor(amount * feeBps / 10000) without forming the
// full product, so it is safe for any math.Int amount.
func TransferFee(amount math.Int, feeBps uint32) math.Int {
	bps := int64(feeBps)
	denom := int64(types.MaxFeeBps)
	whole := amount.QuoRaw(denom).MulRaw(bps)
	rest := amount.ModRaw(denom).MulRaw(bps).QuoRaw(denom)
	return whole.Add(rest)
}
