// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"github.com/meterio/sealed-auction/script/blindauction"
)

const (
	BLIND_AUCTION_MODULE_NAME = string("blindauction")
	BLIND_AUCTION_MODULE_ID   = uint32(1001)
)

func ModuleBlindAuctionInit(se *ScriptEngine, items blindauction.RegistryFunc) *blindauction.BlindAuction {
	ba := blindauction.NewBlindAuction(se.stateCreator, items)
	if ba == nil {
		panic("init blind auction module failed")
	}

	mod := &Module{
		modName:    BLIND_AUCTION_MODULE_NAME,
		modID:      BLIND_AUCTION_MODULE_ID,
		modAddr:    blindauction.AuctionAccountAddr,
		modHandler: ba.Handler,
	}
	if err := se.modReg.Register(BLIND_AUCTION_MODULE_ID, mod); err != nil {
		panic("register blind auction module failed")
	}

	se.logger.Info("ScriptEngine", "started module", mod.modName)
	return ba
}
