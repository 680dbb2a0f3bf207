package cmd

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"
	"github.com/spf13/cobra"

	poolkeeper "github.com/paw-chain/pairpool/x/pool/keeper"
)

// QuoteResult is the output of `pairpoold quote`.
type QuoteResult struct {
	ReserveIn      string `json:"reserve_in"`
	ReserveOut     string `json:"reserve_out"`
	AmountIn       string `json:"amount_in"`
	AmountInNet    string `json:"amount_in_after_fee"`
	AmountOut      string `json:"amount_out"`
	SpotPrice      string `json:"spot_price"`
	ExecutionPrice string `json:"execution_price"`
}

// QuoteCmd prices a swap against arbitrary reserves without touching state.
func QuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute a constant-product swap quote with the 0.3% fee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reserveIn, err := intFlag(cmd, "reserve-in")
			if err != nil {
				return err
			}
			reserveOut, err := intFlag(cmd, "reserve-out")
			if err != nil {
				return err
			}
			amountIn, err := intFlag(cmd, "amount-in")
			if err != nil {
				return err
			}

			result, err := Quote(reserveIn, reserveOut, amountIn)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().String("reserve-in", "", "reserve of the input asset")
	cmd.Flags().String("reserve-out", "", "reserve of the output asset")
	cmd.Flags().String("amount-in", "", "input amount")
	_ = cmd.MarkFlagRequired("reserve-in")
	_ = cmd.MarkFlagRequired("reserve-out")
	_ = cmd.MarkFlagRequired("amount-in")

	return cmd
}

// Quote prices amountIn against the given reserves.
func Quote(reserveIn, reserveOut, amountIn math.Int) (QuoteResult, error) {
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return QuoteResult{}, fmt.Errorf("reserves must be positive")
	}
	if !amountIn.IsPositive() {
		return QuoteResult{}, fmt.Errorf("amount in must be positive")
	}

	net, err := poolkeeper.ApplySwapFee(amountIn)
	if err != nil {
		return QuoteResult{}, err
	}
	amountOut, err := poolkeeper.CalculateSwapOutput(amountIn, reserveIn, reserveOut)
	if err != nil {
		return QuoteResult{}, err
	}

	return QuoteResult{
		ReserveIn:      reserveIn.String(),
		ReserveOut:     reserveOut.String(),
		AmountIn:       amountIn.String(),
		AmountInNet:    net.String(),
		AmountOut:      amountOut.String(),
		SpotPrice:      math.LegacyNewDecFromInt(reserveOut).QuoInt(reserveIn).String(),
		ExecutionPrice: math.LegacyNewDecFromInt(amountOut).QuoInt(amountIn).String(),
	}, nil
}

func intFlag(cmd *cobra.Command, name string) (math.Int, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return math.Int{}, err
	}
	v, ok := math.NewIntFromString(raw)
	if !ok {
		return math.Int{}, fmt.Errorf("--%s: %q is not an integer", name, raw)
	}
	return v, nil
}
