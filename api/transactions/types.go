// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transactions

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/tx"
)

// Clause for json marshal
type Clause struct {
	To    *meter.Address       `json:"to"`
	Value math.HexOrDecimal256 `json:"value"`
	Data  string               `json:"data"`
}

//Clauses array of clauses.
type Clauses []Clause

//ConvertClause convert a raw clause into a json format clause
func convertClause(c *tx.Clause) Clause {
	return Clause{
		c.To(),
		math.HexOrDecimal256(*c.Value()),
		hexutil.Encode(c.Data()),
	}
}

//Transaction transaction
type Transaction struct {
	ID       meter.Bytes32        `json:"id"`
	ChainTag byte                 `json:"chainTag"`
	Origin   meter.Address        `json:"origin"`
	Nonce    math.HexOrDecimal64  `json:"nonce"`
	Gas      uint64               `json:"gas"`
	GasPrice math.HexOrDecimal256 `json:"gasPrice"`
	Clauses  Clauses              `json:"clauses"`
	Meta     TxMeta               `json:"meta"`
}

// RawTx a raw transaction, rlp encoded and hex prefixed
type RawTx struct {
	Raw string `json:"raw"`
}

func (rtx *RawTx) decode() (*tx.Transaction, error) {
	data, err := hexutil.Decode(rtx.Raw)
	if err != nil {
		return nil, err
	}
	var trx *tx.Transaction
	if err := rlp.DecodeBytes(data, &trx); err != nil {
		return nil, err
	}
	return trx, nil
}

// EncodeRawTx renders trx the way POST /transactions expects it.
func EncodeRawTx(trx *tx.Transaction) (*RawTx, error) {
	data, err := rlp.EncodeToBytes(trx)
	if err != nil {
		return nil, err
	}
	return &RawTx{Raw: hexutil.Encode(data)}, nil
}

// TxMeta locates a tx in the chain.
type TxMeta struct {
	BlockID        meter.Bytes32 `json:"blockID"`
	BlockNumber    uint32        `json:"blockNumber"`
	BlockTimestamp uint64        `json:"blockTimestamp"`
}

// LogMeta locates an event or transfer in the chain.
type LogMeta struct {
	BlockID        meter.Bytes32 `json:"blockID"`
	BlockNumber    uint32        `json:"blockNumber"`
	BlockTimestamp uint64        `json:"blockTimestamp"`
	TxID           meter.Bytes32 `json:"txID"`
	TxOrigin       meter.Address `json:"txOrigin"`
}

//convertTransaction convert a raw transaction into a json format transaction
func convertTransaction(trx *tx.Transaction, header *block.Header) (*Transaction, error) {
	origin, err := trx.Origin()
	if err != nil {
		return nil, err
	}
	cls := make(Clauses, len(trx.Clauses()))
	for i, c := range trx.Clauses() {
		cls[i] = convertClause(c)
	}
	return &Transaction{
		ID:       trx.ID(),
		ChainTag: trx.ChainTag(),
		Origin:   origin,
		Nonce:    math.HexOrDecimal64(trx.Nonce()),
		Gas:      trx.Gas(),
		GasPrice: math.HexOrDecimal256(*trx.GasPrice()),
		Clauses:  cls,
		Meta: TxMeta{
			BlockID:        header.ID(),
			BlockNumber:    header.Number(),
			BlockTimestamp: header.Timestamp(),
		},
	}, nil
}

// Receipt for json marshal
type Receipt struct {
	GasUsed      uint64                `json:"gasUsed"`
	GasPayer     meter.Address         `json:"gasPayer"`
	Paid         *math.HexOrDecimal256 `json:"paid"`
	Reward       *math.HexOrDecimal256 `json:"reward"`
	Reverted     bool                  `json:"reverted"`
	RevertReason string                `json:"revertReason,omitempty"`
	Meta         LogMeta               `json:"meta"`
	Outputs      []*Output             `json:"outputs"`
}

// Output output of clause execution.
type Output struct {
	Events    []*Event    `json:"events"`
	Transfers []*Transfer `json:"transfers"`
	Data      string      `json:"data"`
}

// Event event.
type Event struct {
	Address meter.Address   `json:"address"`
	Topics  []meter.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
}

// Transfer transfer log.
type Transfer struct {
	Sender    meter.Address         `json:"sender"`
	Recipient meter.Address         `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	h := math.HexOrDecimal256(*new(big.Int).Set(v))
	return &h
}

// ConvertEvent converts a ledger event for json marshal.
func ConvertEvent(e *tx.Event) *Event {
	return &Event{
		Address: e.Address,
		Topics:  append([]meter.Bytes32(nil), e.Topics...),
		Data:    hexutil.Encode(e.Data),
	}
}

// ConvertTransfer converts a ledger transfer for json marshal.
func ConvertTransfer(t *tx.Transfer) *Transfer {
	return &Transfer{
		Sender:    t.Sender,
		Recipient: t.Recipient,
		Amount:    hexOrDecimal(t.Amount),
	}
}

func convertReceipt(receipt *tx.Receipt, header *block.Header, trx *tx.Transaction) (*Receipt, error) {
	origin, err := trx.Origin()
	if err != nil {
		return nil, err
	}
	r := &Receipt{
		GasUsed:      receipt.GasUsed,
		GasPayer:     receipt.GasPayer,
		Paid:         hexOrDecimal(receipt.Paid),
		Reward:       hexOrDecimal(receipt.Reward),
		Reverted:     receipt.Reverted,
		RevertReason: receipt.RevertReason,
		Meta: LogMeta{
			header.ID(),
			header.Number(),
			header.Timestamp(),
			trx.ID(),
			origin,
		},
		Outputs: make([]*Output, 0, len(receipt.Outputs)),
	}
	for _, output := range receipt.Outputs {
		otp := &Output{
			Events:    make([]*Event, len(output.Events)),
			Transfers: make([]*Transfer, len(output.Transfers)),
			Data:      hexutil.Encode(output.Data),
		}
		for j, e := range output.Events {
			otp.Events[j] = ConvertEvent(e)
		}
		for j, t := range output.Transfers {
			otp.Transfers[j] = ConvertTransfer(t)
		}
		r.Outputs = append(r.Outputs, otp)
	}
	return r, nil
}
