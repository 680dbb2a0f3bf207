package keeper_test

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/pairpool/x/ledger/types"
)

func (s *LedgerTestSuite) TestGenesisRoundTrip() {
	s.Require().NoError(s.plain.Mint(s.ctx, s.alice, math.NewInt(700)))
	s.Require().NoError(s.plain.Mint(s.ctx, s.bob, math.NewInt(300)))
	s.Require().NoError(s.taxed.Mint(s.ctx, s.bob, math.NewInt(40)))

	exported, err := s.plain.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal("atoken", exported.Denom)
	s.Require().Len(exported.Balances, 2)
	s.Require().Equal(int64(1000), exported.Total().Int64())
	s.Require().NoError(exported.Validate())

	// a fresh denom on the same store imports the export
	s.SetupTest()
	s.Require().NoError(s.plain.InitGenesis(s.ctx, *exported))
	s.Require().Equal(int64(700), s.plain.BalanceOf(s.ctx, s.alice).Int64())
	s.Require().Equal(int64(300), s.plain.BalanceOf(s.ctx, s.bob).Int64())
	s.Require().Equal(int64(1000), s.plain.Supply(s.ctx).Int64())
	s.Require().True(s.taxed.Supply(s.ctx).IsZero())
}

func (s *LedgerTestSuite) TestGenesisRejections() {
	s.Require().Error(s.plain.InitGenesis(s.ctx, *types.DefaultGenesis("btoken")))

	bad := types.GenesisState{
		Denom:    "atoken",
		Balances: []types.Balance{{Address: s.alice.String(), Amount: math.ZeroInt()}},
	}
	s.Require().Error(s.plain.InitGenesis(s.ctx, bad))

	dup := types.GenesisState{
		Denom: "atoken",
		Balances: []types.Balance{
			{Address: s.alice.String(), Amount: math.NewInt(1)},
			{Address: s.alice.String(), Amount: math.NewInt(2)},
		},
	}
	s.Require().Error(s.plain.InitGenesis(s.ctx, dup))

	s.Require().NoError(s.plain.Mint(s.ctx, s.alice, math.NewInt(5)))
	s.Require().Error(s.plain.InitGenesis(s.ctx, *types.DefaultGenesis("atoken")))
}
