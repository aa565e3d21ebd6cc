// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/tx"
)

// Block is an immutable block type.
type Block struct {
	header *Header
	txs    tx.Transactions
}

// Compose compose a block with all needed components
// Note: This method is usually to recover a block by its portions, and the TxsRoot is not verified.
func Compose(header *Header, txs tx.Transactions) *Block {
	return &Block{
		header: &Header{Body: header.Body},
		txs:    append(tx.Transactions(nil), txs...),
	}
}

// Header returns the block header.
func (b *Block) Header() *Header {
	return b.header
}

// Transactions returns a copy of transactions.
func (b *Block) Transactions() tx.Transactions {
	return append(tx.Transactions(nil), b.txs...)
}

// EncodeRLP implements rlp.Encoder.
func (b *Block) EncodeRLP(w io.Writer) error {
	if b == nil {
		w.Write([]byte{0xC0})
		return nil
	}
	return rlp.Encode(w, []interface{}{
		&b.header.Body,
		b.txs,
	})
}

// DecodeRLP implements rlp.Decoder.
func (b *Block) DecodeRLP(s *rlp.Stream) error {
	payload := struct {
		HeaderBody HeaderBody
		Txs        tx.Transactions
	}{}
	if err := s.Decode(&payload); err != nil {
		return err
	}
	*b = Block{
		header: &Header{Body: payload.HeaderBody},
		txs:    payload.Txs,
	}
	return nil
}

func (b *Block) String() string {
	return fmt.Sprintf("Block(%v) %v\nTransactions: %v", b.header.Number(), b.header, b.txs)
}

// TxsRootOf hashes the ids of txs in order.
func TxsRootOf(txs tx.Transactions) meter.Bytes32 {
	ids := make([]meter.Bytes32, 0, len(txs))
	for _, t := range txs {
		ids = append(ids, t.ID())
	}
	return meter.Blake2bRLP(ids)
}
