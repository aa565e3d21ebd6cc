// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/kv"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/tx"
)

var (
	blockPrefix         = []byte("b")    // (prefix, block id) -> block
	txMetaPrefix        = []byte("t")    // (prefix, tx id) -> tx location
	blockReceiptsPrefix = []byte("r")    // (prefix, block id) -> receipts
	hashKeyPrefix       = []byte("hash") // (prefix, block num) -> block id

	bestBlockKey = []byte("best") // best block id
)

func numberAsKey(num uint32) []byte {
	var key [4]byte
	binary.BigEndian.PutUint32(key[:], num)
	return key[:]
}

func prefixed(prefix []byte, key []byte) []byte {
	return append(append([]byte(nil), prefix...), key...)
}

// TxMeta contains information about a tx is settled.
type TxMeta struct {
	BlockID meter.Bytes32

	// Index the position of the tx in block's txs.
	Index uint64 // rlp require uint64.

	Reverted bool
}

func saveRLP(w kv.Putter, key []byte, val interface{}) error {
	data, err := rlp.EncodeToBytes(val)
	if err != nil {
		return err
	}
	return w.Put(key, data)
}

func loadRLP(r kv.Getter, key []byte, val interface{}) error {
	data, err := r.Get(key)
	if err != nil {
		return err
	}
	return rlp.DecodeBytes(data, val)
}

// loadBestBlockID returns the best block ID on trunk.
func loadBestBlockID(r kv.Getter) (meter.Bytes32, error) {
	data, err := r.Get(bestBlockKey)
	if err != nil {
		return meter.Bytes32{}, err
	}
	return meter.BytesToBytes32(data), nil
}

// saveBestBlockID save the best block ID on trunk.
func saveBestBlockID(w kv.Putter, id meter.Bytes32) error {
	return w.Put(bestBlockKey, id[:])
}

func loadBlock(r kv.Getter, id meter.Bytes32) (*block.Block, error) {
	var b block.Block
	if err := loadRLP(r, prefixed(blockPrefix, id[:]), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// saveBlock saves the block and indexes it on trunk by number.
func saveBlock(w kv.Putter, b *block.Block) error {
	id := b.Header().ID()
	if err := saveRLP(w, prefixed(blockPrefix, id[:]), b); err != nil {
		return err
	}
	return w.Put(prefixed(hashKeyPrefix, numberAsKey(b.Header().Number())), id[:])
}

func loadTrunkBlockID(r kv.Getter, num uint32) (meter.Bytes32, error) {
	data, err := r.Get(prefixed(hashKeyPrefix, numberAsKey(num)))
	if err != nil {
		return meter.Bytes32{}, err
	}
	return meter.BytesToBytes32(data), nil
}

// saveTxMetas saves locations of txs.
func saveTxMetas(w kv.Putter, b *block.Block, receipts tx.Receipts) error {
	id := b.Header().ID()
	for i, t := range b.Transactions() {
		txID := t.ID()
		meta := TxMeta{BlockID: id, Index: uint64(i), Reverted: receipts[i].Reverted}
		if err := saveRLP(w, prefixed(txMetaPrefix, txID[:]), &meta); err != nil {
			return err
		}
	}
	return nil
}

func loadTxMeta(r kv.Getter, txID meter.Bytes32) (*TxMeta, error) {
	var meta TxMeta
	if err := loadRLP(r, prefixed(txMetaPrefix, txID[:]), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func saveBlockReceipts(w kv.Putter, blockID meter.Bytes32, receipts tx.Receipts) error {
	return saveRLP(w, prefixed(blockReceiptsPrefix, blockID[:]), receipts)
}

func loadBlockReceipts(r kv.Getter, blockID meter.Bytes32) (tx.Receipts, error) {
	var receipts tx.Receipts
	if err := loadRLP(r, prefixed(blockReceiptsPrefix, blockID[:]), &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}
