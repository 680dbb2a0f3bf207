package scenario_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/log"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pairpool/app"
	"github.com/paw-chain/pairpool/app/scenario"
)

func loadFile(t *testing.T, path string) scenario.Scenario {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	sc, err := scenario.Load(f)
	require.NoError(t, err)
	return sc
}

func TestRunBasicScenario(t *testing.T) {
	sc := loadFile(t, "testdata/basic.yaml")

	report, err := scenario.Run(log.NewNopLogger(), app.DefaultConfig(), sc)
	require.NoError(t, err)
	require.True(t, report.Passed(), "%+v", report.Steps)
	require.Len(t, report.Steps, 11)

	require.Equal(t, "3000", report.Steps[3].Result["shares"])
	require.Contains(t, report.Steps[4].Error, "slippage")
	require.Equal(t, "180", report.Steps[5].Result["amount_out"])
	require.Equal(t, "550", report.Steps[6].Result["amount_a"])
	require.Equal(t, "910", report.Steps[6].Result["amount_b"])
	require.Equal(t, "0", report.Steps[9].Result["amount_a"])
	require.Equal(t, "7", report.Steps[9].Result["amount_b"])
	require.Equal(t, scenario.DefaultStartTime.Add(time.Hour), report.Steps[10].Time)

	require.Equal(t, "550", report.Pool.ReserveA.String())
	require.Equal(t, "910", report.Pool.ReserveB.String())

	alice := report.Accounts["alice"]
	require.Equal(t, "1000", alice.Shares)
	require.Equal(t, "9450", alice.BalanceA)
	require.Equal(t, "9090", alice.BalanceB)

	bob := report.Accounts["bob"]
	require.Equal(t, "500", bob.Shares)
	require.Equal(t, "7", bob.BalanceB)
	require.False(t, report.Invariants.Broken)
}

func TestRunRecordsUnexpectedFailures(t *testing.T) {
	sc, err := scenario.Load(strings.NewReader(`
steps:
  - add: {provider: carol, amount_a: "10", amount_b: "10"}
  - remove: {provider: carol, shares: "1"}
    expect_error: pool has no liquidity
`))
	require.NoError(t, err)

	report, err := scenario.Run(log.NewNopLogger(), app.DefaultConfig(), sc)
	require.NoError(t, err)
	require.False(t, report.Passed())
	require.Equal(t, 1, report.Failed)
	require.False(t, report.Steps[0].OK)
	require.True(t, report.Steps[1].OK)
}

func TestRunAppliesOverrides(t *testing.T) {
	sc, err := scenario.Load(strings.NewReader(`
config:
  fee_bps_a: 100
steps:
  - faucet: {account: alice, denom: atoken, amount: "1000"}
  - faucet: {account: alice, denom: btoken, amount: "2000"}
  - add: {provider: alice, amount_a: "1000", amount_b: "2000"}
`))
	require.NoError(t, err)

	report, err := scenario.Run(log.NewNopLogger(), app.DefaultConfig(), sc)
	require.NoError(t, err)
	require.True(t, report.Passed())
	// 1% of the A deposit is burned in transit
	require.Equal(t, "990", report.Pool.ReserveA.String())
}

func TestLoadRejectsMalformedScenarios(t *testing.T) {
	tests := map[string]string{
		"no steps":      "name: empty\n",
		"two actions":   "steps:\n  - {advance: 1m, skim: {recipient: bob}}\n",
		"no action":     "steps:\n  - expect_error: boom\n",
		"unknown field": "steps:\n  - teleport: {}\n",
		"negative time": "steps:\n  - advance: -1m\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := scenario.Load(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}
