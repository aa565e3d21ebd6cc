// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chain

import (
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	lru "github.com/hashicorp/golang-lru"
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/kv"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/state"
	"github.com/meterio/sealed-auction/tx"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	blockCacheLimit    = 512
	receiptsCacheLimit = 512
)

var (
	log = slog.Default().With("pkg", "chain")
)

var errNotFound = errors.New("not found")
var ErrParentMismatch = errors.New("parent is not the best block")
var (
	bestHeightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "best_height",
		Help: "BestBlock height",
	})
)

func init() {
	prometheus.MustRegister(bestHeightGauge)
}

// NewBlockEvent is published after a block is persisted.
type NewBlockEvent struct {
	Block    *block.Block
	Receipts tx.Receipts
}

// Chain describes a persistent, linear block chain.
// It's thread-safe.
type Chain struct {
	kv           kv.GetPutter
	genesisBlock *block.Block
	bestBlock    *block.Block
	tag          byte
	caches       caches
	rw           sync.RWMutex
	feed         event.Feed
	scope        event.SubscriptionScope
}

type caches struct {
	blocks   *lru.Cache
	receipts *lru.Cache
}

// New create an instance of Chain.
func New(kv kv.GetPutter, genesisBlock *block.Block) (*Chain, error) {
	if genesisBlock.Header().Number() != 0 {
		return nil, errors.New("genesis number != 0")
	}
	if len(genesisBlock.Transactions()) != 0 {
		return nil, errors.New("genesis block should not have transactions")
	}

	var bestBlock *block.Block
	genesisID := genesisBlock.Header().ID()
	if bestBlockID, err := loadBestBlockID(kv); err != nil {
		if !kv.IsNotFound(err) {
			return nil, err
		}
		// no genesis yet
		batch := kv.NewBatch()
		if err := saveBlock(batch, genesisBlock); err != nil {
			return nil, err
		}
		if err := saveBlockReceipts(batch, genesisID, tx.Receipts{}); err != nil {
			return nil, err
		}
		if err := saveBestBlockID(batch, genesisID); err != nil {
			return nil, err
		}
		if err := batch.Write(); err != nil {
			return nil, err
		}
		bestBlock = genesisBlock
	} else {
		existGenesisID, err := loadTrunkBlockID(kv, 0)
		if err != nil {
			return nil, err
		}
		if existGenesisID != genesisID {
			return nil, errors.New("genesis mismatch")
		}
		bestBlock, err = loadBlock(kv, bestBlockID)
		if err != nil {
			return nil, err
		}
	}
	bestHeightGauge.Set(float64(bestBlock.Header().Number()))

	blocks, _ := lru.New(blockCacheLimit)
	receipts, _ := lru.New(receiptsCacheLimit)
	return &Chain{
		kv:           kv,
		genesisBlock: genesisBlock,
		bestBlock:    bestBlock,
		tag:          genesisID[31],
		caches:       caches{blocks, receipts},
	}, nil
}

// IsInitialized reports whether r already holds a chain.
// The genesis state must be committed only when it does not.
func IsInitialized(r kv.Getter) (bool, error) {
	return r.Has(bestBlockKey)
}

// Tag returns chain tag, which is the last byte of genesis id.
func (c *Chain) Tag() byte {
	return c.tag
}

// GenesisBlock returns genesis block.
func (c *Chain) GenesisBlock() *block.Block {
	return c.genesisBlock
}

// BestBlock returns the newest block on trunk.
func (c *Chain) BestBlock() *block.Block {
	c.rw.RLock()
	defer c.rw.RUnlock()
	return c.bestBlock
}

// AddBlock persists a block on top of the best block together with its
// receipts and the state changes it made, in one batch.
func (c *Chain) AddBlock(newBlock *block.Block, receipts tx.Receipts, stage *state.Stage) error {
	c.rw.Lock()
	header := newBlock.Header()
	if header.ParentID() != c.bestBlock.Header().ID() {
		c.rw.Unlock()
		return ErrParentMismatch
	}
	if len(receipts) != len(newBlock.Transactions()) {
		c.rw.Unlock()
		return errors.New("receipts do not match txs")
	}

	id := header.ID()
	batch := c.kv.NewBatch()
	err := func() error {
		if err := saveBlock(batch, newBlock); err != nil {
			return errors.WithMessage(err, "save block")
		}
		if err := saveTxMetas(batch, newBlock, receipts); err != nil {
			return errors.WithMessage(err, "save tx metas")
		}
		if err := saveBlockReceipts(batch, id, receipts); err != nil {
			return errors.WithMessage(err, "save receipts")
		}
		if err := saveBestBlockID(batch, id); err != nil {
			return errors.WithMessage(err, "save best block")
		}
		return errors.WithMessage(stage.CommitTo(batch), "commit state")
	}()
	if err != nil {
		c.rw.Unlock()
		return err
	}

	c.caches.blocks.Add(id, newBlock)
	c.caches.receipts.Add(id, receipts)
	c.bestBlock = newBlock
	bestHeightGauge.Set(float64(header.Number()))
	c.rw.Unlock()

	log.Debug("block added", "number", header.Number(), "id", id, "txs", len(receipts))
	c.feed.Send(&NewBlockEvent{Block: newBlock, Receipts: receipts})
	return nil
}

// SubscribeNewBlock delivers every block added after the call.
// Slow receivers hold up AddBlock, so ch should be buffered and drained.
func (c *Chain) SubscribeNewBlock(ch chan<- *NewBlockEvent) event.Subscription {
	return c.scope.Track(c.feed.Subscribe(ch))
}

// Close ends all subscriptions.
func (c *Chain) Close() {
	c.scope.Close()
}

// GetBlock get block by id.
func (c *Chain) GetBlock(id meter.Bytes32) (*block.Block, error) {
	if cached, ok := c.caches.blocks.Get(id); ok {
		return cached.(*block.Block), nil
	}
	b, err := loadBlock(c.kv, id)
	if err != nil {
		return nil, err
	}
	c.caches.blocks.Add(id, b)
	return b, nil
}

// GetTrunkBlock get block on trunk by number.
func (c *Chain) GetTrunkBlock(num uint32) (*block.Block, error) {
	id, err := loadTrunkBlockID(c.kv, num)
	if err != nil {
		return nil, err
	}
	return c.GetBlock(id)
}

// GetBlockReceipts get all tx receipts in the block for given block id.
func (c *Chain) GetBlockReceipts(id meter.Bytes32) (tx.Receipts, error) {
	if cached, ok := c.caches.receipts.Get(id); ok {
		return cached.(tx.Receipts), nil
	}
	receipts, err := loadBlockReceipts(c.kv, id)
	if err != nil {
		return nil, err
	}
	c.caches.receipts.Add(id, receipts)
	return receipts, nil
}

// GetTransactionMeta get tx meta info by tx id.
func (c *Chain) GetTransactionMeta(txID meter.Bytes32) (*TxMeta, error) {
	return loadTxMeta(c.kv, txID)
}

// HasTransaction reports whether a tx with the id was already included.
func (c *Chain) HasTransaction(txID meter.Bytes32) (bool, error) {
	if _, err := loadTxMeta(c.kv, txID); err != nil {
		if c.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetTrunkTransaction get transaction and its location by id.
func (c *Chain) GetTrunkTransaction(txID meter.Bytes32) (*tx.Transaction, *TxMeta, error) {
	meta, err := loadTxMeta(c.kv, txID)
	if err != nil {
		return nil, nil, err
	}
	b, err := c.GetBlock(meta.BlockID)
	if err != nil {
		return nil, nil, err
	}
	txs := b.Transactions()
	if meta.Index >= uint64(len(txs)) {
		return nil, nil, errors.New("tx index out of range")
	}
	return txs[meta.Index], meta, nil
}

// GetTransactionReceipt get receipt and tx location by tx id.
func (c *Chain) GetTransactionReceipt(txID meter.Bytes32) (*tx.Receipt, *TxMeta, error) {
	meta, err := loadTxMeta(c.kv, txID)
	if err != nil {
		return nil, nil, err
	}
	receipts, err := c.GetBlockReceipts(meta.BlockID)
	if err != nil {
		return nil, nil, err
	}
	if meta.Index >= uint64(len(receipts)) {
		return nil, nil, errors.New("receipt index out of range")
	}
	return receipts[meta.Index], meta, nil
}

// IsNotFound returns if an error means not found.
func (c *Chain) IsNotFound(err error) bool {
	return err == errNotFound || c.kv.IsNotFound(errors.Cause(err))
}
