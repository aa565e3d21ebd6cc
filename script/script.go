// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package script

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script/blindauction"
	setypes "github.com/meterio/sealed-auction/script/types"
	"github.com/meterio/sealed-auction/state"
)

var (
	// ScriptPrefix marks clause data addressed to the script engine.
	ScriptPrefix = [4]byte{0xff, 0xff, 0xff, 0xff}
)

// global data
type ScriptEngine struct {
	stateCreator *state.Creator
	logger       *slog.Logger
	modReg       Registry
	auction      *blindauction.BlindAuction
}

func NewScriptEngine(sc *state.Creator, items blindauction.RegistryFunc) *ScriptEngine {
	se := &ScriptEngine{
		stateCreator: sc,
		logger:       slog.Default().With("pkg", "se"),
	}

	// start all sub modules
	se.auction = ModuleBlindAuctionInit(se, items)
	return se
}

func (se *ScriptEngine) BlindAuction() *blindauction.BlindAuction {
	return se.auction
}

// IsScriptData reports whether clause data carries a script.
func IsScriptData(data []byte) bool {
	return len(data) >= len(ScriptPrefix) && bytes.Equal(data[:len(ScriptPrefix)], ScriptPrefix[:])
}

// IsModuleAccount reports whether addr belongs to a registered module.
// Module accounts only take value through their handlers.
func (se *ScriptEngine) IsModuleAccount(addr meter.Address) bool {
	for _, m := range se.modReg.All() {
		if m.modAddr == addr {
			return true
		}
	}
	return false
}

// HandleScriptData dispatches data, with ScriptPrefix already stripped, to its module.
func (se *ScriptEngine) HandleScriptData(senv *setypes.ScriptEnv, data []byte, to *meter.Address, gas uint64) (seOutput *setypes.ScriptEngineOutput, leftOverGas uint64, err error) {
	if len(data) < len(ScriptPattern) || !bytes.Equal(data[:len(ScriptPattern)], ScriptPattern[:]) {
		n := len(ScriptPattern)
		if len(data) < n {
			n = len(data)
		}
		err := fmt.Errorf("pattern mismatch, pattern = %v", hex.EncodeToString(data[:n]))
		se.logger.Debug("bad script data", "err", err)
		return nil, gas, err
	}
	script, err := DecodeScriptData(data[len(ScriptPattern):])
	if err != nil {
		se.logger.Debug("decode script message failed", "err", err)
		return nil, gas, err
	}

	header := script.Header

	mod, find := se.modReg.Find(header.GetModID())
	if !find {
		err := fmt.Errorf("could not address module %v", header.GetModID())
		se.logger.Debug("unknown module", "err", err)
		return nil, gas, err
	}
	se.logger.Debug("script header", "header", header.ToString(), "module", mod.ToString())

	//module handler
	seOutput, leftOverGas, err = mod.modHandler(senv, script.Payload, to, gas)
	return
}

// EncodeScriptData wraps a module body into clause data.
func EncodeScriptData(body interface{}) ([]byte, error) {
	var modID uint32
	switch body.(type) {
	case blindauction.BlindAuctionBody, *blindauction.BlindAuctionBody:
		modID = BLIND_AUCTION_MODULE_ID
	default:
		return []byte{}, errors.New("unrecognized body")
	}
	payload, err := rlp.EncodeToBytes(body)
	if err != nil {
		return []byte{}, err
	}
	s := new(Builder).SetModID(modID).SetPayload(payload).Build()
	data, err := rlp.EncodeToBytes(s)
	if err != nil {
		return []byte{}, err
	}
	scriptBytes := make([]byte, 0, len(ScriptPrefix)+len(ScriptPattern)+len(data))
	scriptBytes = append(scriptBytes, ScriptPrefix[:]...)
	scriptBytes = append(scriptBytes, ScriptPattern[:]...)
	scriptBytes = append(scriptBytes, data...)
	return scriptBytes, nil
}

func DecodeScriptData(bytes []byte) (*ScriptData, error) {
	script := ScriptData{}
	err := rlp.DecodeBytes(bytes, &script)
	return &script, err
}
