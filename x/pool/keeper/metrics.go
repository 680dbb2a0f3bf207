package keeper

import (
	"math/big"
	"sync"

	"cosmossdk.io/math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paw-chain/pairpool/x/pool/types"
)

// PoolMetrics holds all Prometheus metrics for the pool module
type PoolMetrics struct {
	// Swap metrics
	SwapsTotal *prometheus.CounterVec
	SwapVolume *prometheus.CounterVec

	// Liquidity metrics
	LiquidityOps *prometheus.CounterVec
	PoolReserves *prometheus.GaugeVec
	TotalShares  prometheus.Gauge

	// Security metrics
	GuardRejections *prometheus.CounterVec
}

var (
	poolMetricsOnce sync.Once
	poolMetrics     *PoolMetrics
)

// NewPoolMetrics creates and registers pool metrics (singleton pattern)
func NewPoolMetrics() *PoolMetrics {
	poolMetricsOnce.Do(func() {
		poolMetrics = &PoolMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pairpool",
					Subsystem: "pool",
					Name:      "swaps_total",
					Help:      "Total number of swaps attempted",
				},
				[]string{"asset_in", "status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pairpool",
					Subsystem: "pool",
					Name:      "swap_volume_total",
					Help:      "Total measured swap input in base units",
				},
				[]string{"denom"},
			),
			LiquidityOps: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pairpool",
					Subsystem: "pool",
					Name:      "liquidity_ops_total",
					Help:      "Liquidity and share operations by outcome",
				},
				[]string{"op", "status"},
			),
			PoolReserves: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "pairpool",
					Subsystem: "pool",
					Name:      "pool_reserves",
					Help:      "Current pool reserves",
				},
				[]string{"denom"},
			),
			TotalShares: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "pairpool",
					Subsystem: "pool",
					Name:      "pool_total_shares",
					Help:      "Current LP share supply",
				},
			),
			GuardRejections: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "pairpool",
					Subsystem: "pool",
					Name:      "guard_rejections_total",
					Help:      "Calls rejected by the reentrancy guard",
				},
				[]string{"operation"},
			),
		}
	})
	return poolMetrics
}

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (m *PoolMetrics) recordLiquidityOp(op string, err error) {
	m.LiquidityOps.WithLabelValues(op, statusLabel(err)).Inc()
}

func (m *PoolMetrics) recordSwap(assetIn string, err error) {
	m.SwapsTotal.WithLabelValues(assetIn, statusLabel(err)).Inc()
}

// observePool mirrors persisted state into the gauges. Values beyond float64
// precision are approximated.
func (m *PoolMetrics) observePool(pool types.Pool) {
	m.PoolReserves.WithLabelValues(pool.DenomA).Set(intToFloat(pool.ReserveA))
	m.PoolReserves.WithLabelValues(pool.DenomB).Set(intToFloat(pool.ReserveB))
	m.TotalShares.Set(intToFloat(pool.TotalShares))
}

func (m *PoolMetrics) addSwapVolume(denom string, amount math.Int) {
	m.SwapVolume.WithLabelValues(denom).Add(intToFloat(amount))
}

func intToFloat(i math.Int) float64 {
	if i.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(i.BigInt()).Float64()
	return f
}
