// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/meter"
)

var (
	errIntrinsicGasOverflow = errors.New("intrinsic gas overflow")
	errNoClause             = errors.New("tx has no clause")
)

// Transaction is an immutable tx type.
type Transaction struct {
	body body

	cache struct {
		signingHash atomic.Value
		origin      atomic.Value
		id          atomic.Value
	}
}

// body describes details of a tx.
type body struct {
	ChainTag  byte
	Nonce     uint64
	Gas       uint64
	GasPrice  *big.Int
	Clauses   []*Clause
	Signature []byte
}

// ChainTag returns chain tag.
func (t *Transaction) ChainTag() byte {
	return t.body.ChainTag
}

// Nonce returns nonce value.
func (t *Transaction) Nonce() uint64 {
	return t.body.Nonce
}

// Gas returns gas provision for this tx.
func (t *Transaction) Gas() uint64 {
	return t.body.Gas
}

// GasPrice returns the price of one unit of gas.
func (t *Transaction) GasPrice() *big.Int {
	if t.body.GasPrice == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(t.body.GasPrice)
}

// Clauses returns caluses in tx.
func (t *Transaction) Clauses() []*Clause {
	return append([]*Clause(nil), t.body.Clauses...)
}

// Signature returns signature.
func (t *Transaction) Signature() []byte {
	return append([]byte(nil), t.body.Signature...)
}

// TotalValue sums the value carried by all clauses.
func (t *Transaction) TotalValue() *big.Int {
	sum := new(big.Int)
	for _, c := range t.body.Clauses {
		sum.Add(sum, c.body.Value)
	}
	return sum
}

// SigningHash returns hash of tx excludes signature.
func (t *Transaction) SigningHash() (hash meter.Bytes32) {
	if cached := t.cache.signingHash.Load(); cached != nil {
		return cached.(meter.Bytes32)
	}
	defer func() { t.cache.signingHash.Store(hash) }()

	hw := meter.NewBlake2b()
	rlp.Encode(hw, []interface{}{
		t.body.ChainTag,
		t.body.Nonce,
		t.body.Gas,
		t.body.GasPrice,
		t.body.Clauses,
	})
	hw.Sum(hash[:0])
	return
}

// Origin extract address of tx originator from signature.
func (t *Transaction) Origin() (origin meter.Address, err error) {
	if cached := t.cache.origin.Load(); cached != nil {
		return cached.(meter.Address), nil
	}
	defer func() {
		if err == nil {
			t.cache.origin.Store(origin)
		}
	}()

	hash := t.SigningHash()
	pub, err := crypto.SigToPub(hash[:], t.body.Signature)
	if err != nil {
		return meter.Address{}, err
	}
	return meter.Address(crypto.PubkeyToAddress(*pub)), nil
}

// ID returns id of tx.
// ID = hash(signingHash, origin).
// It returns zero Bytes32 if origin not resolvable.
func (t *Transaction) ID() (id meter.Bytes32) {
	if cached := t.cache.id.Load(); cached != nil {
		return cached.(meter.Bytes32)
	}
	defer func() { t.cache.id.Store(id) }()

	origin, err := t.Origin()
	if err != nil {
		return
	}
	return meter.Blake2b(t.SigningHash().Bytes(), origin.Bytes())
}

// WithSignature create a new tx with signature set.
func (t *Transaction) WithSignature(sig []byte) *Transaction {
	newTx := Transaction{
		body: t.body,
	}
	// copy sig
	newTx.body.Signature = append([]byte(nil), sig...)
	return &newTx
}

// Sign signs the tx with the given private key.
func (t *Transaction) Sign(key *ecdsa.PrivateKey) (*Transaction, error) {
	sig, err := crypto.Sign(t.SigningHash().Bytes(), key)
	if err != nil {
		return nil, err
	}
	return t.WithSignature(sig), nil
}

// IntrinsicGas returns intrinsic gas of tx.
func (t *Transaction) IntrinsicGas() (uint64, error) {
	if len(t.body.Clauses) == 0 {
		return 0, errNoClause
	}
	n := uint64(len(t.body.Clauses))
	if n > (^uint64(0)-meter.TxGas)/meter.ClauseGas {
		return 0, errIntrinsicGasOverflow
	}
	return meter.TxGas + n*meter.ClauseGas, nil
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var body body
	if err := s.Decode(&body); err != nil {
		return err
	}
	*t = Transaction{body: body}
	return nil
}

func (t *Transaction) String() string {
	var originStr = "N/A"
	if origin, err := t.Origin(); err == nil {
		originStr = origin.String()
	}
	return fmt.Sprintf(`
	Tx(%v)
	Origin:         %v
	Clauses:        %v
	Gas:            %v
	GasPrice:       %v
	ChainTag:       %v
	Nonce:          %v
	Signature:      0x%x
`, t.ID(), originStr, t.body.Clauses, t.body.Gas, t.body.GasPrice, t.body.ChainTag, t.body.Nonce, t.body.Signature)
}

// Transactions a slice of transactions.
type Transactions []*Transaction
