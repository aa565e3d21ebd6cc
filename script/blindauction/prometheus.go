// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"math/big"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	opCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blind_auction_ops_total",
		Help: "Blind auction operations by name and result",
	}, []string{"op", "result"})

	phaseGauge = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "blind_auction_phase",
		Help: "Committed auction phase: 0 paused, 1 bidding, 2 reveal, 3 claim",
	}, func() float64 {
		inst := GetBlindAuctionGlobInst()
		if inst == nil || inst.stateCreator == nil {
			return 0
		}
		return float64(inst.GetPhase(inst.stateCreator.NewReader()))
	})

	escrowGauge = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "blind_auction_escrow_balance",
		Help: "Committed balance of the auction account, in whole units",
	}, func() float64 {
		inst := GetBlindAuctionGlobInst()
		if inst == nil || inst.stateCreator == nil {
			return 0
		}
		f, _ := new(big.Float).Quo(
			new(big.Float).SetInt(inst.stateCreator.NewReader().GetBalance(AuctionAccountAddr)),
			big.NewFloat(1e18)).Float64()
		return f
	})
)

func init() {
	prometheus.MustRegister(opCounter, phaseGauge, escrowGauge)
}
