// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/meterio/sealed-auction/api/utils"
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/packer"
	"github.com/meterio/sealed-auction/tx"
	"github.com/pkg/errors"
)

type Transactions struct {
	chain  *chain.Chain
	packer *packer.Packer
}

func New(chain *chain.Chain, packer *packer.Packer) *Transactions {
	return &Transactions{
		chain,
		packer,
	}
}

func (t *Transactions) getTransactionByID(txID meter.Bytes32) (*Transaction, error) {
	trx, meta, err := t.chain.GetTrunkTransaction(txID)
	if err != nil {
		if t.chain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	blk, err := t.chain.GetBlock(meta.BlockID)
	if err != nil {
		return nil, err
	}
	return convertTransaction(trx, blk.Header())
}

//GetTransactionReceiptByID get tx's receipt
func (t *Transactions) getTransactionReceiptByID(txID meter.Bytes32) (*Receipt, error) {
	trx, meta, err := t.chain.GetTrunkTransaction(txID)
	if err != nil {
		if t.chain.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	receipt, _, err := t.chain.GetTransactionReceipt(txID)
	if err != nil {
		return nil, err
	}
	blk, err := t.chain.GetBlock(meta.BlockID)
	if err != nil {
		return nil, err
	}
	return convertReceipt(receipt, blk.Header(), trx)
}

func (t *Transactions) sendTx(w http.ResponseWriter, trx *tx.Transaction) error {
	receipt, err := t.packer.Submit(trx)
	if err != nil {
		if packer.IsBadTx(err) {
			return utils.BadRequest(err)
		}
		if packer.IsKnownTx(err) {
			return utils.Forbidden(err)
		}
		return err
	}
	return utils.WriteJSON(w, map[string]interface{}{
		"id":       trx.ID().String(),
		"reverted": receipt.Reverted,
	})
}

func (t *Transactions) handleSendTransaction(w http.ResponseWriter, req *http.Request) error {
	var rawTx *RawTx
	if err := utils.ParseJSON(req.Body, &rawTx); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if rawTx == nil {
		return utils.BadRequest(errors.New("body: empty body"))
	}
	trx, err := rawTx.decode()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}
	return t.sendTx(w, trx)
}

func (t *Transactions) handleGetTransactionByID(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	txID, err := meter.ParseBytes32(id)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	trx, err := t.getTransactionByID(txID)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, trx)
}

func (t *Transactions) handleGetTransactionReceiptByID(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	txID, err := meter.ParseBytes32(id)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	receipt, err := t.getTransactionReceiptByID(txID)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (t *Transactions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods("POST").HandlerFunc(utils.WrapHandlerFunc(t.handleSendTransaction))
	sub.Path("/{id}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransactionByID))
	sub.Path("/{id}/receipt").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(t.handleGetTransactionReceiptByID))
}
