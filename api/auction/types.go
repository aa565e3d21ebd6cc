// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script/blindauction"
)

// Summary is the auction configuration and where it stands.
type Summary struct {
	Phase        string                `json:"phase"`
	PhaseNumber  uint32                `json:"phaseNumber"`
	Owner        meter.Address         `json:"owner"`
	MinStake     *math.HexOrDecimal256 `json:"minStake"`
	OutbidPolicy string                `json:"outbidPolicy"`
	Balance      *math.HexOrDecimal256 `json:"balance"`
	Address      meter.Address         `json:"address"`
}

// SealedBid is the escrow behind a commitment.
type SealedBid struct {
	Commitment meter.Bytes32         `json:"commitment"`
	Active     bool                  `json:"active"`
	Bidder     *meter.Address        `json:"bidder"`
	Stake      *math.HexOrDecimal256 `json:"stake"`
	Forfeited  bool                  `json:"forfeited"`
}

// HighestBid on an item, nil when nobody revealed yet.
type HighestBid struct {
	Bidder meter.Address         `json:"bidder"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Item is the auction view of one item.
type Item struct {
	ID         uint64         `json:"id"`
	Exists     bool           `json:"exists"`
	Owner      *meter.Address `json:"owner"`
	Claimed    bool           `json:"claimed"`
	HighestBid *HighestBid    `json:"highestBid"`
}

// Audit compares the engine balance with its obligations.
type Audit struct {
	Balance     *math.HexOrDecimal256 `json:"balance"`
	ActiveStake *math.HexOrDecimal256 `json:"activeStake"`
	Winning     *math.HexOrDecimal256 `json:"winning"`
	Locked      *math.HexOrDecimal256 `json:"locked"`
	Forfeited   *math.HexOrDecimal256 `json:"forfeited"`
	Solvent     bool                  `json:"solvent"`
	Balanced    bool                  `json:"balanced"`
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	h := math.HexOrDecimal256(*new(big.Int).Set(v))
	return &h
}

func convertSealedBid(c meter.Bytes32, b *blindauction.SealedBid, forfeited bool) *SealedBid {
	sb := &SealedBid{Commitment: c, Active: b.Active(), Stake: hexOrDecimal(b.Stake), Forfeited: forfeited}
	if sb.Active {
		bidder := b.Bidder
		sb.Bidder = &bidder
	}
	return sb
}

func convertAudit(r *blindauction.AuditReport) *Audit {
	return &Audit{
		Balance:     hexOrDecimal(r.Balance),
		ActiveStake: hexOrDecimal(r.ActiveStake),
		Winning:     hexOrDecimal(r.Winning),
		Locked:      hexOrDecimal(r.Locked),
		Forfeited:   hexOrDecimal(r.Forfeited),
		Solvent:     r.Solvent,
		Balanced:    r.Balanced,
	}
}
