// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"log/slog"
	"math/big"

	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script"
	setypes "github.com/meterio/sealed-auction/script/types"
	"github.com/meterio/sealed-auction/state"
	"github.com/meterio/sealed-auction/tx"
	"github.com/meterio/sealed-auction/xenv"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	log = slog.Default().With("pkg", "rt")

	errInsufficientBalance = errors.New("insufficient balance for transfer")
	errModuleAccount       = errors.New("module account only accepts script data")

	txCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "runtime_txs_total",
		Help: "Executed transactions by outcome",
	}, []string{"outcome"})
	gasUsedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "runtime_gas_used_total",
		Help: "Gas used by executed transactions",
	})
)

func init() {
	prometheus.MustRegister(txCounter, gasUsedCounter)
}

// Output output of clause execution.
type Output struct {
	Data        []byte
	Events      tx.Events
	Transfers   tx.Transfers
	LeftOverGas uint64
	Err         error // failure of the clause, the whole tx reverts on it
}

type TransactionExecutor struct {
	HasNextClause func() bool
	NextClause    func() (gasUsed uint64, output *Output, err error)
	Finalize      func() (*tx.Receipt, error)
}

// Runtime executes transactions against a state, dispatching script clauses
// to the script engine.
type Runtime struct {
	se           *script.ScriptEngine
	state        *state.State
	ctx          *xenv.BlockContext
	baseGasPrice *big.Int
}

// New create a Runtime object.
func New(
	se *script.ScriptEngine,
	state *state.State,
	ctx *xenv.BlockContext,
	baseGasPrice *big.Int,
) *Runtime {
	if baseGasPrice == nil {
		baseGasPrice = new(big.Int)
	}
	return &Runtime{
		se:           se,
		state:        state,
		ctx:          ctx,
		baseGasPrice: new(big.Int).Set(baseGasPrice),
	}
}

func (rt *Runtime) State() *state.State         { return rt.state }
func (rt *Runtime) Context() *xenv.BlockContext { return rt.ctx }

// ExecuteClause executes a single clause. The clause value is delivered to
// the target before its script runs.
func (rt *Runtime) ExecuteClause(
	clause *tx.Clause,
	clauseIndex uint32,
	gas uint64,
	txCtx *xenv.TransactionContext,
) *Output {
	to := clause.To()
	if to == nil {
		return &Output{LeftOverGas: gas, Err: errNoTarget}
	}

	value := clause.Value()
	var transfers tx.Transfers
	if value.Sign() > 0 {
		if !rt.state.Transfer(txCtx.Origin, *to, value) {
			return &Output{LeftOverGas: gas, Err: errInsufficientBalance}
		}
		transfers = append(transfers, &tx.Transfer{
			Sender:    txCtx.Origin,
			Recipient: *to,
			Amount:    value,
		})
	}

	data := clause.Data()
	if !script.IsScriptData(data) {
		if rt.se != nil && rt.se.IsModuleAccount(*to) {
			return &Output{LeftOverGas: gas, Err: errModuleAccount}
		}
		// plain transfer, covered by the intrinsic gas
		return &Output{Transfers: transfers, LeftOverGas: gas}
	}

	if rt.se == nil {
		return &Output{LeftOverGas: gas, Err: errors.New("script engine is not initialized")}
	}

	senv := setypes.NewScriptEnv(rt.state, rt.ctx, txCtx, to, value)
	seOutput, leftOverGas, err := rt.se.HandleScriptData(senv, data[len(script.ScriptPrefix):], to, gas)
	if err != nil {
		log.Debug("clause failed", "tx", txCtx.ID, "clause", clauseIndex, "err", err)
		return &Output{Data: []byte(err.Error()), LeftOverGas: leftOverGas, Err: err}
	}

	output := &Output{
		Data:        seOutput.GetData(),
		Events:      seOutput.GetEvents(),
		Transfers:   append(transfers, seOutput.GetTransfers()...),
		LeftOverGas: leftOverGas,
	}
	return output
}

// ExecuteTransaction executes a transaction.
// If some clause failed, receipt.Outputs will be nil and the receipt is marked reverted.
func (rt *Runtime) ExecuteTransaction(trx *tx.Transaction) (receipt *tx.Receipt, err error) {
	executor, err := rt.PrepareTransaction(trx)
	if err != nil {
		return nil, err
	}

	for executor.HasNextClause() {
		if _, _, err := executor.NextClause(); err != nil {
			return nil, err
		}
	}
	return executor.Finalize()
}

// PrepareTransaction prepare to execute tx.
func (rt *Runtime) PrepareTransaction(trx *tx.Transaction) (*TransactionExecutor, error) {
	resolvedTx, err := ResolveTransaction(trx)
	if err != nil {
		return nil, err
	}

	gasPrice, payer, returnGas, err := resolvedTx.BuyGas(rt.state, rt.baseGasPrice)
	if err != nil {
		return nil, err
	}

	// ResolveTransaction has checked that tx.Gas() >= IntrinsicGas
	leftOverGas := trx.Gas() - resolvedTx.IntrinsicGas

	// checkpoint to be reverted when clause failure.
	checkpoint := rt.state.NewCheckpoint()

	txCtx := resolvedTx.ToContext(gasPrice)

	txOutputs := make([]*tx.Output, 0, len(resolvedTx.Clauses))
	reverted := false
	revertReason := ""
	finalized := false

	hasNext := func() bool {
		return !reverted && len(txOutputs) < len(resolvedTx.Clauses)
	}

	return &TransactionExecutor{
		HasNextClause: hasNext,
		NextClause: func() (gasUsed uint64, output *Output, err error) {
			if !hasNext() {
				return 0, nil, errors.New("no more clause")
			}
			nextClauseIndex := uint32(len(txOutputs))
			output = rt.ExecuteClause(resolvedTx.Clauses[nextClauseIndex], nextClauseIndex, leftOverGas, txCtx)
			gasUsed = leftOverGas - output.LeftOverGas
			leftOverGas = output.LeftOverGas

			if output.Err != nil {
				// revert all executed clauses
				rt.state.RevertTo(checkpoint)
				reverted = true
				revertReason = output.Err.Error()
				txOutputs = nil
				return
			}
			txOutputs = append(txOutputs, &tx.Output{
				Events:    output.Events,
				Transfers: output.Transfers,
				Data:      output.Data,
			})
			return
		},
		Finalize: func() (*tx.Receipt, error) {
			if hasNext() {
				return nil, errors.New("not all clauses processed")
			}
			if finalized {
				return nil, errors.New("already finalized")
			}
			finalized = true

			receipt := &tx.Receipt{
				Reverted:     reverted,
				RevertReason: revertReason,
				Outputs:      txOutputs,
				GasUsed:      trx.Gas() - leftOverGas,
				GasPayer:     payer,
			}
			receipt.Paid = new(big.Int).Mul(new(big.Int).SetUint64(receipt.GasUsed), gasPrice)

			returnGas(leftOverGas)

			// the whole fee goes to the beneficiary
			reward := new(big.Int).Set(receipt.Paid)
			rt.state.AddBalance(rt.ctx.Beneficiary, reward)
			receipt.Reward = reward

			if reverted {
				txCounter.WithLabelValues("reverted").Inc()
			} else {
				txCounter.WithLabelValues("ok").Inc()
			}
			gasUsedCounter.Add(float64(receipt.GasUsed))
			return receipt, nil
		},
	}, nil
}

// BaseGasPrice returns the lowest gas price a tx may offer.
func (rt *Runtime) BaseGasPrice() *big.Int {
	return new(big.Int).Set(rt.baseGasPrice)
}

// IsModuleAccount reports whether addr is served by the script engine.
func (rt *Runtime) IsModuleAccount(addr meter.Address) bool {
	return rt.se != nil && rt.se.IsModuleAccount(addr)
}
