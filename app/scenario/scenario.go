// Package scenario replays scripted pool sessions against a fresh in-memory
// app. Scenarios are YAML documents listing steps such as faucet, oracle,
// add, remove, swap, transfer, skim and advance; accounts are referred to by
// name.
package scenario

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paw-chain/pairpool/app"
)

// DefaultStartTime is the block time of the first step unless the scenario
// sets start_time.
var DefaultStartTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Scenario is a scripted session.
type Scenario struct {
	Name      string     `yaml:"name"`
	StartTime *time.Time `yaml:"start_time,omitempty"`
	Config    *Overrides `yaml:"config,omitempty"`
	Steps     []Step     `yaml:"steps"`
}

// Overrides replace parts of the app configuration for one scenario.
type Overrides struct {
	DenomA       *string        `yaml:"denom_a,omitempty"`
	DenomB       *string        `yaml:"denom_b,omitempty"`
	FeeBpsA      *uint32        `yaml:"fee_bps_a,omitempty"`
	FeeBpsB      *uint32        `yaml:"fee_bps_b,omitempty"`
	OracleWindow *time.Duration `yaml:"oracle_window,omitempty"`
}

// Step is a single action. Exactly one action field must be set.
type Step struct {
	Faucet   *FaucetStep   `yaml:"faucet,omitempty"`
	Oracle   *OracleStep   `yaml:"oracle,omitempty"`
	Add      *AddStep      `yaml:"add,omitempty"`
	Remove   *RemoveStep   `yaml:"remove,omitempty"`
	Swap     *SwapStep     `yaml:"swap,omitempty"`
	Transfer *TransferStep `yaml:"transfer,omitempty"`
	Skim     *SkimStep     `yaml:"skim,omitempty"`
	Advance  time.Duration `yaml:"advance,omitempty"`

	// ExpectError makes the step pass only if it fails with an error
	// containing this text.
	ExpectError string `yaml:"expect_error,omitempty"`
}

type FaucetStep struct {
	Account string `yaml:"account"`
	Denom   string `yaml:"denom"`
	Amount  string `yaml:"amount"`
}

type OracleStep struct {
	Base  string `yaml:"base"`
	Quote string `yaml:"quote"`
	Price string `yaml:"price"`
}

type AddStep struct {
	Provider string `yaml:"provider"`
	AmountA  string `yaml:"amount_a"`
	AmountB  string `yaml:"amount_b"`
}

type RemoveStep struct {
	Provider string `yaml:"provider"`
	Shares   string `yaml:"shares"`
}

type SwapStep struct {
	Trader       string `yaml:"trader"`
	AssetIn      string `yaml:"asset_in"`
	AmountIn     string `yaml:"amount_in"`
	MinAmountOut string `yaml:"min_amount_out"`
}

type TransferStep struct {
	From   string `yaml:"from"`
	To     string `yaml:"to"`
	Amount string `yaml:"amount"`
}

type SkimStep struct {
	Recipient string `yaml:"recipient"`
}

// Load decodes and validates a scenario.
func Load(r io.Reader) (Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Validate checks that every step names exactly one action.
func (sc Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("scenario has no steps")
	}
	for i, step := range sc.Steps {
		if n := step.actions(); n != 1 {
			return fmt.Errorf("step %d: expected exactly one action, got %d", i+1, n)
		}
		if step.Advance < 0 {
			return fmt.Errorf("step %d: cannot advance by %s", i+1, step.Advance)
		}
	}
	return nil
}

// Apply returns cfg with the scenario's overrides.
func (sc Scenario) Apply(cfg app.Config) app.Config {
	o := sc.Config
	if o == nil {
		return cfg
	}
	if o.DenomA != nil {
		cfg.DenomA = *o.DenomA
	}
	if o.DenomB != nil {
		cfg.DenomB = *o.DenomB
	}
	if o.FeeBpsA != nil {
		cfg.FeeBpsA = *o.FeeBpsA
	}
	if o.FeeBpsB != nil {
		cfg.FeeBpsB = *o.FeeBpsB
	}
	if o.OracleWindow != nil {
		cfg.OracleWindow = *o.OracleWindow
	}
	return cfg
}

func (s Step) actions() int {
	n := 0
	for _, set := range []bool{
		s.Faucet != nil, s.Oracle != nil, s.Add != nil, s.Remove != nil,
		s.Swap != nil, s.Transfer != nil, s.Skim != nil, s.Advance != 0,
	} {
		if set {
			n++
		}
	}
	return n
}

// Action names the step's action.
func (s Step) Action() string {
	switch {
	case s.Faucet != nil:
		return "faucet"
	case s.Oracle != nil:
		return "oracle"
	case s.Add != nil:
		return "add"
	case s.Remove != nil:
		return "remove"
	case s.Swap != nil:
		return "swap"
	case s.Transfer != nil:
		return "transfer"
	case s.Skim != nil:
		return "skim"
	case s.Advance != 0:
		return "advance"
	default:
		return "none"
	}
}
