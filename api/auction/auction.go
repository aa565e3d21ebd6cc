// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auction

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/meterio/sealed-auction/api/utils"
	"github.com/meterio/sealed-auction/builtin/items"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/meterio/sealed-auction/state"
	"github.com/pkg/errors"
)

type Auction struct {
	stateCreator *state.Creator
	engine       *blindauction.BlindAuction
}

func New(stateCreator *state.Creator, engine *blindauction.BlindAuction) *Auction {
	return &Auction{
		stateCreator,
		engine,
	}
}

func (at *Auction) handleGetSummary(w http.ResponseWriter, req *http.Request) error {
	st := at.stateCreator.NewReader()
	phase := at.engine.CurrentPhase(st)
	summary := &Summary{
		Phase:        phase.String(),
		PhaseNumber:  uint32(phase),
		Owner:        at.engine.GetOwner(st),
		MinStake:     hexOrDecimal(at.engine.GetMinStake(st)),
		OutbidPolicy: at.engine.GetOutbidPolicy(st).String(),
		Balance:      hexOrDecimal(st.GetBalance(blindauction.AuctionAccountAddr)),
		Address:      blindauction.AuctionAccountAddr,
	}
	if err := st.Err(); err != nil {
		return err
	}
	return utils.WriteJSON(w, summary)
}

// handleGetCommitment computes a commitment, so clients need not reimplement the hash.
func (at *Auction) handleGetCommitment(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	itemID, err := strconv.ParseUint(query.Get("item"), 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "item"))
	}
	amount, ok := math.ParseBig256(query.Get("amount"))
	if !ok {
		return utils.BadRequest(errors.New("amount: invalid number"))
	}
	if amount.Sign() < 0 {
		return utils.BadRequest(errors.New("amount: negative"))
	}
	bidder, err := meter.ParseAddress(query.Get("bidder"))
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "bidder"))
	}
	return utils.WriteJSON(w, map[string]string{
		"commitment": blindauction.CommitmentOf(itemID, amount, bidder).String(),
	})
}

func (at *Auction) handleGetSealedBid(w http.ResponseWriter, req *http.Request) error {
	c, err := meter.ParseBytes32(mux.Vars(req)["commitment"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "commitment"))
	}
	st := at.stateCreator.NewReader()
	bid := at.engine.SealedBidByCommitment(st, c)
	forfeited := at.engine.GetAccounting(st).Forfeits(bid)
	if err := st.Err(); err != nil {
		return err
	}
	return utils.WriteJSON(w, convertSealedBid(c, bid, forfeited))
}

func (at *Auction) handleGetItem(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	st := at.stateCreator.NewReader()
	reg := items.New(items.ItemsAddr, st)

	item := &Item{
		ID:      id,
		Exists:  reg.Exists(id),
		Claimed: at.engine.IsClaimed(st, id),
	}
	if reg.IsOwned(id) {
		owner := reg.OwnerOf(id)
		item.Owner = &owner
	}
	if hb := at.engine.HighestBidForItem(st, id); hb.Exists() {
		item.HighestBid = &HighestBid{Bidder: hb.Bidder, Amount: hexOrDecimal(hb.Amount)}
	}
	if err := st.Err(); err != nil {
		return err
	}
	return utils.WriteJSON(w, item)
}

func (at *Auction) handleGetAudit(w http.ResponseWriter, req *http.Request) error {
	st := at.stateCreator.NewReader()
	report := at.engine.Audit(st)
	if err := st.Err(); err != nil {
		return err
	}
	return utils.WriteJSON(w, convertAudit(report))
}

func (at *Auction) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetSummary))
	sub.Path("/commitment").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetCommitment))
	sub.Path("/bids/{commitment}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetSealedBid))
	sub.Path("/items/{id}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetItem))
	sub.Path("/audit").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(at.handleGetAudit))
}
