package types

import (
	"testing"

	"cosmossdk.io/math"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/stretchr/testify/require"
)

func TestPoolValidate(t *testing.T) {
	valid := func() Pool {
		p := NewPool("atoken", "btoken")
		p.ReserveA = math.NewInt(1000)
		p.ReserveB = math.NewInt(2000)
		p.TotalShares = math.NewInt(3000)
		return p
	}

	tests := []struct {
		name    string
		mutate  func(*Pool)
		wantErr error
	}{
		{"valid", func(*Pool) {}, nil},
		{"empty pool", func(p *Pool) { *p = NewPool("atoken", "btoken") }, nil},
		{"same denoms", func(p *Pool) { p.DenomB = p.DenomA }, ErrInvalidToken},
		{"bad denom", func(p *Pool) { p.DenomA = "1x" }, ErrInvalidToken},
		{"negative reserve", func(p *Pool) { p.ReserveA = math.NewInt(-1) }, ErrInvalidPoolState},
		{"negative shares", func(p *Pool) { p.TotalShares = math.NewInt(-1) }, ErrInvalidPoolState},
		{"nil reserve", func(p *Pool) { p.ReserveB = math.Int{} }, ErrInvalidPoolState},
		{"shares without reserve A", func(p *Pool) { p.ReserveA = math.ZeroInt() }, ErrInvalidPoolState},
		{"shares without reserve B", func(p *Pool) { p.ReserveB = math.ZeroInt() }, ErrInvalidPoolState},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := valid()
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestPoolSides(t *testing.T) {
	p := NewPool("atoken", "btoken")
	p.ReserveA = math.NewInt(10)
	p.ReserveB = math.NewInt(20)

	in, out, err := p.ReservesFor("btoken")
	require.NoError(t, err)
	require.Equal(t, int64(20), in.Int64())
	require.Equal(t, int64(10), out.Int64())

	other, err := p.Counterpart("atoken")
	require.NoError(t, err)
	require.Equal(t, "btoken", other)

	_, _, err = p.ReservesFor("ctoken")
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = p.Counterpart("ctoken")
	require.ErrorIs(t, err, ErrInvalidToken)

	require.True(t, p.HasDenom("atoken"))
	require.False(t, p.HasDenom("ctoken"))
	require.Equal(t, "atoken/btoken", p.PairID())
}

func TestPoolAddressIsStable(t *testing.T) {
	require.Equal(t, PoolAddress(), PoolAddress())
	require.Len(t, PoolAddress(), 20)
	require.Equal(t, authtypes.NewModuleAddress(ModuleName), PoolAddress())
}
