// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package items

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/state"
)

var (
	// ItemsAddr is the account holding the registry storage.
	ItemsAddr = meter.BytesToAddress([]byte("item-registry-account"))

	catalogueKey = meter.Blake2b([]byte("catalogue-size"))
	minterKey    = meter.Blake2b([]byte("minter"))

	ErrUnknownItem  = errors.New("item does not exist")
	ErrAlreadyOwned = errors.New("item already has an owner")
	ErrNotMinter    = errors.New("caller is not the registry minter")
	ErrZeroOwner    = errors.New("owner must not be the zero address")
)

func ownerKey(id uint64) meter.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return meter.Blake2b([]byte("owner-of"), b[:])
}

func balanceKey(addr meter.Address) meter.Bytes32 {
	return meter.Blake2b([]byte("balance-of"), addr.Bytes())
}

// Registry binder of the item registry account.
// Items are identified by 0..CatalogueSize-1 and have at most one owner.
type Registry struct {
	addr  meter.Address
	state *state.State
}

func New(addr meter.Address, state *state.State) *Registry {
	return &Registry{addr, state}
}

func (r *Registry) getUint64(key meter.Bytes32) (v uint64) {
	r.state.DecodeStorage(r.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &v)
	})
	return
}

func (r *Registry) setUint64(key meter.Bytes32, v uint64) {
	r.state.EncodeStorage(r.addr, key, func() ([]byte, error) {
		if v == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(v)
	})
}

func (r *Registry) getAddress(key meter.Bytes32) (addr meter.Address) {
	r.state.DecodeStorage(r.addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &addr)
	})
	return
}

func (r *Registry) setAddress(key meter.Bytes32, addr meter.Address) {
	r.state.EncodeStorage(r.addr, key, func() ([]byte, error) {
		if addr.IsZero() {
			return nil, nil
		}
		return rlp.EncodeToBytes(&addr)
	})
}

// Init sets up the catalogue and the only account allowed to mint.
func (r *Registry) Init(catalogueSize uint64, minter meter.Address) {
	r.setUint64(catalogueKey, catalogueSize)
	r.setAddress(minterKey, minter)
}

func (r *Registry) CatalogueSize() uint64 {
	return r.getUint64(catalogueKey)
}

func (r *Registry) Minter() meter.Address {
	return r.getAddress(minterKey)
}

func (r *Registry) Exists(id uint64) bool {
	return id < r.CatalogueSize()
}

func (r *Registry) OwnerOf(id uint64) meter.Address {
	return r.getAddress(ownerKey(id))
}

func (r *Registry) IsOwned(id uint64) bool {
	return !r.OwnerOf(id).IsZero()
}

// BalanceOf returns how many items addr owns.
func (r *Registry) BalanceOf(addr meter.Address) *big.Int {
	return new(big.Int).SetUint64(r.getUint64(balanceKey(addr)))
}

// Mint assigns an unowned item to its first owner. Only the minter may mint.
func (r *Registry) Mint(by meter.Address, id uint64, to meter.Address) error {
	if by != r.Minter() {
		return ErrNotMinter
	}
	return r.mint(id, to)
}

// Premint assigns an owner at genesis, bypassing the minter check.
func (r *Registry) Premint(id uint64, to meter.Address) error {
	return r.mint(id, to)
}

func (r *Registry) mint(id uint64, to meter.Address) error {
	if !r.Exists(id) {
		return ErrUnknownItem
	}
	if to.IsZero() {
		return ErrZeroOwner
	}
	if r.IsOwned(id) {
		return ErrAlreadyOwned
	}
	r.setAddress(ownerKey(id), to)
	r.setUint64(balanceKey(to), r.getUint64(balanceKey(to))+1)
	return r.state.Err()
}

// Minter is the registry seen through the eyes of its minter account.
type Minter struct {
	*Registry
	by meter.Address
}

func NewMinter(state *state.State, by meter.Address) *Minter {
	return &Minter{New(ItemsAddr, state), by}
}

// TransferOwnership mints the item to its winner.
func (m *Minter) TransferOwnership(id uint64, to meter.Address) error {
	return m.Mint(m.by, id, to)
}
