// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/meterio/sealed-auction/api/utils"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script"
	"github.com/meterio/sealed-auction/state"
	"github.com/pkg/errors"
)

type Accounts struct {
	stateCreator *state.Creator
	se           *script.ScriptEngine
}

func New(stateCreator *state.Creator, se *script.ScriptEngine) *Accounts {
	return &Accounts{
		stateCreator,
		se,
	}
}

func (a *Accounts) getAccount(addr meter.Address) (*Account, error) {
	state := a.stateCreator.NewReader()
	b := state.GetBalance(addr)
	if err := state.Err(); err != nil {
		return nil, err
	}
	return &Account{
		Balance:      math.HexOrDecimal256(*b),
		BalanceUnits: meter.FormatUnits(b),
		IsModule:     a.se.IsModuleAccount(addr),
	}, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := meter.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	acc, err := a.getAccount(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
