package scenario

import (
	"fmt"
	"strings"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/pairpool/app"
	pooltypes "github.com/paw-chain/pairpool/x/pool/types"
)

// PoolAccount is the account name that resolves to the pool's own address,
// so a faucet step can model a direct donation.
const PoolAccount = "pool"

// StepResult records the outcome of one step.
type StepResult struct {
	Step   int               `json:"step"`
	Action string            `json:"action"`
	OK     bool              `json:"ok"`
	Error  string            `json:"error,omitempty"`
	Result map[string]string `json:"result,omitempty"`
	Height int64             `json:"height"`
	Time   time.Time         `json:"time"`
}

// AccountReport is a named account's final holdings.
type AccountReport struct {
	Address  string `json:"address"`
	BalanceA string `json:"balance_a"`
	BalanceB string `json:"balance_b"`
	Shares   string `json:"shares"`
}

// InvariantReport is the final invariant status.
type InvariantReport struct {
	Broken  bool   `json:"broken"`
	Message string `json:"message,omitempty"`
}

// Report is the outcome of a scenario run.
type Report struct {
	Name       string                   `json:"name,omitempty"`
	Steps      []StepResult             `json:"steps"`
	Pool       pooltypes.Pool           `json:"pool"`
	Accounts   map[string]AccountReport `json:"accounts"`
	Invariants InvariantReport          `json:"invariants"`
	Failed     int                      `json:"failed"`
}

// Passed reports whether every step met its expectation and the invariants
// held at the end.
func (r *Report) Passed() bool {
	return r.Failed == 0 && !r.Invariants.Broken
}

// AccountAddress derives the address of a named scenario account.
func AccountAddress(name string) sdk.AccAddress {
	return sdk.AccAddress(address.Module("pairpool-sim", []byte(name)))
}

type runner struct {
	app      *app.App
	now      time.Time
	accounts map[string]sdk.AccAddress
}

// Run replays sc against a fresh in-memory app built from cfg and the
// scenario's overrides. Step failures are recorded in the report; only setup
// failures are returned as errors.
func Run(logger log.Logger, cfg app.Config, sc Scenario) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	r := &runner{
		now:      DefaultStartTime,
		accounts: make(map[string]sdk.AccAddress),
	}
	if sc.StartTime != nil {
		r.now = sc.StartTime.UTC()
	}

	a, err := app.New(logger, dbm.NewMemDB(), sc.Apply(cfg), nil, app.WithClock(func() time.Time { return r.now }))
	if err != nil {
		return nil, fmt.Errorf("build app: %w", err)
	}
	defer a.Close()
	r.app = a

	report := &Report{Name: sc.Name}
	for i, step := range sc.Steps {
		result, err := r.exec(step)

		res := StepResult{
			Step:   i + 1,
			Action: step.Action(),
			Result: result,
		}
		if err != nil {
			res.Error = err.Error()
		}
		if step.ExpectError != "" {
			res.OK = err != nil && strings.Contains(err.Error(), step.ExpectError)
			if err == nil {
				res.Error = fmt.Sprintf("expected error containing %q", step.ExpectError)
			}
		} else {
			res.OK = err == nil
		}
		if !res.OK {
			report.Failed++
			logger.Error("scenario step failed", "step", res.Step, "action", res.Action, "error", res.Error)
		}

		res.Height = a.Height()
		res.Time = r.now
		report.Steps = append(report.Steps, res)
	}

	if err := r.summarise(report); err != nil {
		return nil, err
	}
	return report, nil
}

func (r *runner) account(name string) (sdk.AccAddress, error) {
	if name == "" {
		return nil, fmt.Errorf("account name is required")
	}
	if name == PoolAccount {
		return r.app.PoolKeeper.PoolAddress(), nil
	}
	addr, ok := r.accounts[name]
	if !ok {
		addr = AccountAddress(name)
		r.accounts[name] = addr
	}
	return addr, nil
}

func parseAmount(field, value string) (math.Int, error) {
	amount, ok := math.NewIntFromString(value)
	if !ok {
		return math.Int{}, fmt.Errorf("%s: %q is not an integer", field, value)
	}
	return amount, nil
}

func (r *runner) exec(step Step) (map[string]string, error) {
	switch {
	case step.Advance != 0:
		r.now = r.now.Add(step.Advance)
		return map[string]string{"time": r.now.Format(time.RFC3339)}, nil
	case step.Faucet != nil:
		return r.faucet(step.Faucet)
	case step.Oracle != nil:
		return r.oracle(step.Oracle)
	case step.Add != nil:
		return r.add(step.Add)
	case step.Remove != nil:
		return r.remove(step.Remove)
	case step.Swap != nil:
		return r.swap(step.Swap)
	case step.Transfer != nil:
		return r.transfer(step.Transfer)
	case step.Skim != nil:
		return r.skim(step.Skim)
	default:
		return nil, fmt.Errorf("step has no action")
	}
}

func (r *runner) faucet(s *FaucetStep) (map[string]string, error) {
	addr, err := r.account(s.Account)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", s.Amount)
	if err != nil {
		return nil, err
	}
	ledger, err := r.app.Ledger(s.Denom)
	if err != nil {
		return nil, err
	}

	_, err = r.app.Execute(func(ctx sdk.Context) error {
		return ledger.Mint(ctx, addr, amount)
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"amount": amount.String(), "denom": s.Denom}, nil
}

func (r *runner) oracle(s *OracleStep) (map[string]string, error) {
	price, err := math.LegacyNewDecFromStr(s.Price)
	if err != nil {
		return nil, fmt.Errorf("price: %w", err)
	}

	_, err = r.app.Execute(func(ctx sdk.Context) error {
		return r.app.TWAPKeeper.RecordPrice(ctx, s.Base, s.Quote, price)
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"price": price.String()}, nil
}

func (r *runner) add(s *AddStep) (map[string]string, error) {
	provider, err := r.account(s.Provider)
	if err != nil {
		return nil, err
	}
	amountA, err := parseAmount("amount_a", s.AmountA)
	if err != nil {
		return nil, err
	}
	amountB, err := parseAmount("amount_b", s.AmountB)
	if err != nil {
		return nil, err
	}

	var shares math.Int
	_, err = r.app.Execute(func(ctx sdk.Context) error {
		var err error
		shares, err = r.app.PoolKeeper.AddLiquidity(ctx, provider, amountA, amountB)
		return err
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"shares": shares.String()}, nil
}

func (r *runner) remove(s *RemoveStep) (map[string]string, error) {
	provider, err := r.account(s.Provider)
	if err != nil {
		return nil, err
	}
	shares, err := parseAmount("shares", s.Shares)
	if err != nil {
		return nil, err
	}

	var amountA, amountB math.Int
	_, err = r.app.Execute(func(ctx sdk.Context) error {
		var err error
		amountA, amountB, err = r.app.PoolKeeper.RemoveLiquidity(ctx, provider, shares)
		return err
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"amount_a": amountA.String(), "amount_b": amountB.String()}, nil
}

func (r *runner) swap(s *SwapStep) (map[string]string, error) {
	trader, err := r.account(s.Trader)
	if err != nil {
		return nil, err
	}
	amountIn, err := parseAmount("amount_in", s.AmountIn)
	if err != nil {
		return nil, err
	}
	minAmountOut := math.ZeroInt()
	if s.MinAmountOut != "" {
		if minAmountOut, err = parseAmount("min_amount_out", s.MinAmountOut); err != nil {
			return nil, err
		}
	}

	var amountOut math.Int
	_, err = r.app.Execute(func(ctx sdk.Context) error {
		var err error
		amountOut, err = r.app.PoolKeeper.Swap(ctx, trader, s.AssetIn, amountIn, minAmountOut)
		return err
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"amount_out": amountOut.String()}, nil
}

func (r *runner) transfer(s *TransferStep) (map[string]string, error) {
	from, err := r.account(s.From)
	if err != nil {
		return nil, err
	}
	to, err := r.account(s.To)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", s.Amount)
	if err != nil {
		return nil, err
	}

	_, err = r.app.Execute(func(ctx sdk.Context) error {
		return r.app.PoolKeeper.TransferShares(ctx, from, to, amount)
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"amount": amount.String()}, nil
}

func (r *runner) skim(s *SkimStep) (map[string]string, error) {
	recipient, err := r.account(s.Recipient)
	if err != nil {
		return nil, err
	}

	var excessA, excessB math.Int
	_, err = r.app.Execute(func(ctx sdk.Context) error {
		var err error
		excessA, excessB, err = r.app.PoolKeeper.Skim(ctx, recipient)
		return err
	})
	if err != nil {
		return nil, err
	}
	return map[string]string{"amount_a": excessA.String(), "amount_b": excessB.String()}, nil
}

func (r *runner) summarise(report *Report) error {
	report.Accounts = make(map[string]AccountReport, len(r.accounts))

	err := r.app.Query(func(ctx sdk.Context) error {
		pool, err := r.app.PoolKeeper.GetPool(ctx)
		if err != nil {
			return err
		}
		report.Pool = pool

		for name, addr := range r.accounts {
			shares, err := r.app.PoolKeeper.ShareBalance(ctx, addr)
			if err != nil {
				return err
			}
			report.Accounts[name] = AccountReport{
				Address:  addr.String(),
				BalanceA: r.app.LedgerA.BalanceOf(ctx, addr).String(),
				BalanceB: r.app.LedgerB.BalanceOf(ctx, addr).String(),
				Shares:   shares.String(),
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("summarise: %w", err)
	}

	report.Invariants.Message, report.Invariants.Broken = r.app.CheckInvariants()
	return nil
}
