// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package blindauction

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/meterio/sealed-auction/builtin/items"
	"github.com/meterio/sealed-auction/lvldb"
	"github.com/meterio/sealed-auction/meter"
	setypes "github.com/meterio/sealed-auction/script/types"
	"github.com/meterio/sealed-auction/state"
	"github.com/meterio/sealed-auction/xenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = meter.BytesToAddress([]byte("owner"))
	bidder1  = meter.BytesToAddress([]byte("bidder1"))
	bidder2  = meter.BytesToAddress([]byte("bidder2"))
	stranger = meter.BytesToAddress([]byte("stranger"))

	funding = meter.MustParseUnits("10")
)

func units(s string) *big.Int {
	return meter.MustParseUnits(s)
}

func assertAmount(t *testing.T, want, got *big.Int, msgAndArgs ...interface{}) {
	t.Helper()
	if want.Cmp(got) != 0 {
		assert.Fail(t, fmt.Sprintf("amount mismatch: want %v, got %v", want, got), msgAndArgs...)
	}
}

type testAuction struct {
	t      *testing.T
	st     *state.State
	engine *BlindAuction
	nonce  uint64
}

func newTestAuction(t *testing.T, registry RegistryFunc) *testAuction {
	db, _ := lvldb.NewMem()
	sc := state.NewCreator(db)
	st := sc.NewState()

	if registry == nil {
		registry = func(st *state.State) ItemRegistry {
			return items.NewMinter(st, AuctionAccountAddr)
		}
	}
	engine := NewBlindAuction(sc, registry)
	engine.Init(st, owner, meter.InitialMinStake, OutbidRefund)
	items.New(items.ItemsAddr, st).Init(meter.DefaultCatalogueSize, AuctionAccountAddr)

	for _, addr := range []meter.Address{owner, bidder1, bidder2, stranger} {
		st.SetBalance(addr, new(big.Int).Set(funding))
	}
	return &testAuction{t: t, st: st, engine: engine}
}

// exec credits value to the auction account and runs one operation, reverting
// the credit when the operation fails.
func (ta *testAuction) exec(caller meter.Address, value *big.Int, body *BlindAuctionBody) (*setypes.ScriptEngineOutput, error) {
	if value == nil {
		value = new(big.Int)
	}
	payload, err := rlp.EncodeToBytes(body)
	require.NoError(ta.t, err)

	ta.nonce++
	chk := ta.st.NewCheckpoint()
	if !ta.st.Transfer(caller, AuctionAccountAddr, value) {
		ta.t.Fatalf("caller %v cannot afford %v", caller, value)
	}
	env := setypes.NewScriptEnv(ta.st,
		&xenv.BlockContext{Number: uint32(ta.nonce)},
		&xenv.TransactionContext{ID: meter.Blake2b(be64(ta.nonce)), Origin: caller, GasPrice: new(big.Int), Nonce: ta.nonce},
		&AuctionAccountAddr, value)

	to := AuctionAccountAddr
	out, _, err := ta.engine.Handler(env, payload, &to, meter.ClauseGas*2)
	if err != nil {
		ta.st.RevertTo(chk)
	}
	return out, err
}

func (ta *testAuction) setPhase(p Phase) {
	_, err := ta.exec(owner, nil, NewSetPhaseBody(p))
	require.NoError(ta.t, err)
}

func (ta *testAuction) place(bidder meter.Address, itemID uint64, amount, stake *big.Int) meter.Bytes32 {
	c := CommitmentOf(itemID, amount, bidder)
	_, err := ta.exec(bidder, stake, NewPlaceBidBody(c))
	require.NoError(ta.t, err)
	return c
}

func (ta *testAuction) balance(addr meter.Address) *big.Int {
	return ta.st.GetBalance(addr)
}

// spent is how much addr has paid out of its funding.
func (ta *testAuction) spent(addr meter.Address) *big.Int {
	return new(big.Int).Sub(funding, ta.balance(addr))
}

func TestScenarioWinWithSurplusRefund(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	c := ta.place(bidder1, 0, units("0.1"), units("0.2"))

	assertAmount(t, units("0.2"), ta.spent(bidder1))
	bid := ta.engine.SealedBidByCommitment(ta.st, c)
	assert.True(t, bid.Active())
	assert.Equal(t, bidder1, bid.Bidder)

	ta.setPhase(PhaseReveal)
	out, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)

	hb := ta.engine.HighestBidForItem(ta.st, 0)
	assert.Equal(t, bidder1, hb.Bidder)
	assertAmount(t, units("0.1"), hb.Amount)
	assertAmount(t, units("0.1"), ta.spent(bidder1))
	assert.False(t, ta.engine.SealedBidByCommitment(ta.st, c).Active())

	events := out.GetEvents()
	require.Len(t, events, 1)
	assert.Equal(t, RevealBidEvent, events[0].Topics[0])
	data, err := DecodeRevealBidData(events[0].Data)
	require.NoError(t, err)
	assertAmount(t, units("0.1"), data.Amount)
	assert.Equal(t, c, data.Commitment)

	transfers := out.GetTransfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, bidder1, transfers[0].Recipient)
	assertAmount(t, units("0.1"), transfers[0].Amount)
}

func TestScenarioLowerRevealRefunded(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	ta.place(bidder1, 0, units("0.1"), units("0.2"))
	ta.place(bidder2, 0, units("0.05"), units("0.2"))

	ta.setPhase(PhaseReveal)
	_, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)

	out, err := ta.exec(bidder2, nil, NewUnsealBidBody(0, units("0.05")))
	require.NoError(t, err)
	assert.Empty(t, out.GetEvents())
	assertAmount(t, big.NewInt(0), ta.spent(bidder2))

	hb := ta.engine.HighestBidForItem(ta.st, 0)
	assert.Equal(t, bidder1, hb.Bidder)
	assertAmount(t, units("0.1"), hb.Amount)
}

func TestEqualRevealKeepsIncumbent(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	ta.place(bidder1, 0, units("0.1"), units("0.2"))
	c := ta.place(bidder2, 0, units("0.1"), units("0.2"))

	ta.setPhase(PhaseReveal)
	_, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)

	out, err := ta.exec(bidder2, units("0.05"), NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)
	assert.Empty(t, out.GetEvents())
	assert.False(t, ta.engine.SealedBidByCommitment(ta.st, c).Active())

	transfers := out.GetTransfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, bidder2, transfers[0].Recipient)
	assertAmount(t, units("0.25"), transfers[0].Amount, "stake and extra come back")
	assertAmount(t, big.NewInt(0), ta.spent(bidder2))

	hb := ta.engine.HighestBidForItem(ta.st, 0)
	assert.Equal(t, bidder1, hb.Bidder)
	assertAmount(t, units("0.1"), hb.Amount)
	assertAmount(t, units("0.1"), ta.balance(AuctionAccountAddr))
}

func TestUnsealNegativeAmount(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseReveal)

	env := setypes.NewScriptEnv(ta.st, &xenv.BlockContext{}, &xenv.TransactionContext{Origin: bidder1}, &AuctionAccountAddr, new(big.Int))
	body := &BlindAuctionBody{Opcode: OP_UNSEAL_BID, Amount: big.NewInt(-1)}
	_, err := ta.engine.HandleUnsealBid(env, body, meter.ClauseGas)
	assert.Equal(t, ErrBidNotActiveOrMismatch, err)
}

func TestScenarioTopUpOnReveal(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	c := ta.place(bidder1, 0, units("0.5"), units("0.2"))

	ta.setPhase(PhaseReveal)
	_, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.5")))
	assert.ErrorIs(t, err, ErrInsufficientRevealFunds)
	assert.True(t, ta.engine.SealedBidByCommitment(ta.st, c).Active(), "failed reveal must not consume the commitment")
	assertAmount(t, units("0.2"), ta.spent(bidder1))

	out, err := ta.exec(bidder1, units("0.3"), NewUnsealBidBody(0, units("0.5")))
	require.NoError(t, err)
	assert.Empty(t, out.GetTransfers())

	hb := ta.engine.HighestBidForItem(ta.st, 0)
	assert.Equal(t, bidder1, hb.Bidder)
	assertAmount(t, units("0.5"), hb.Amount)
	assertAmount(t, units("0.5"), ta.spent(bidder1))
}

func TestScenarioClaim(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	ta.place(bidder1, 0, units("0.1"), units("0.2"))
	ta.setPhase(PhaseReveal)
	_, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)

	_, err = ta.exec(bidder1, nil, NewClaimItemBody(0))
	assert.ErrorIs(t, err, ErrWrongPhase)

	ta.setPhase(PhaseClaim)
	for _, who := range []meter.Address{bidder2, stranger, owner} {
		_, err = ta.exec(who, nil, NewClaimItemBody(0))
		assert.ErrorIs(t, err, ErrNotHighestBidder)
	}

	out, err := ta.exec(bidder1, nil, NewClaimItemBody(0))
	require.NoError(t, err)
	require.Len(t, out.GetEvents(), 1)
	assert.Equal(t, ItemClaimedEvent, out.GetEvents()[0].Topics[0])
	assert.True(t, ta.engine.IsClaimed(ta.st, 0))
	assert.Equal(t, bidder1, items.New(items.ItemsAddr, ta.st).OwnerOf(0))

	_, err = ta.exec(bidder1, nil, NewClaimItemBody(0))
	assert.ErrorIs(t, err, ErrAlreadyClaimed)

	_, err = ta.exec(bidder2, nil, NewClaimItemBody(1))
	assert.ErrorIs(t, err, ErrNotHighestBidder)
}

func TestScenarioOwnerOnly(t *testing.T) {
	ta := newTestAuction(t, nil)
	for _, p := range []Phase{PhasePaused, PhaseBidding, PhaseReveal, PhaseClaim} {
		ta.setPhase(p)

		_, err := ta.exec(stranger, nil, NewSetPhaseBody(PhaseBidding))
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = ta.exec(stranger, nil, NewWithdrawProceedsBody())
		assert.ErrorIs(t, err, ErrUnauthorized)
		_, err = ta.exec(stranger, nil, NewTransferOwnershipBody(stranger))
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, p, ta.engine.CurrentPhase(ta.st))
	}

	_, err := ta.exec(owner, nil, NewSetPhaseBody(Phase(9)))
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestPlaceBid(t *testing.T) {
	ta := newTestAuction(t, nil)
	c := CommitmentOf(0, units("0.1"), bidder1)

	_, err := ta.exec(bidder1, units("0.2"), NewPlaceBidBody(c))
	assert.ErrorIs(t, err, ErrWrongPhase)
	assertAmount(t, big.NewInt(0), ta.spent(bidder1))

	ta.setPhase(PhaseBidding)
	_, err = ta.exec(bidder1, units("0.19"), NewPlaceBidBody(c))
	assert.ErrorIs(t, err, ErrInsufficientCollateral)

	out, err := ta.exec(bidder1, units("0.2"), NewPlaceBidBody(c))
	require.NoError(t, err)
	require.Len(t, out.GetEvents(), 1)
	ev := out.GetEvents()[0]
	assert.Equal(t, []meter.Bytes32{CreateBidEvent, c, addressTopic(bidder1)}, ev.Topics)

	_, err = ta.exec(bidder2, units("0.3"), NewPlaceBidBody(c))
	assert.ErrorIs(t, err, ErrCommitmentAlreadyActive)
	assertAmount(t, big.NewInt(0), ta.spent(bidder2))

	assertAmount(t, units("0.2"), ta.balance(AuctionAccountAddr))
}

func TestWithdrawBid(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	c := ta.place(bidder1, 3, units("1"), units("0.4"))

	_, err := ta.exec(bidder2, nil, NewWithdrawBidBody(c))
	assert.ErrorIs(t, err, ErrNotBidder)

	_, err = ta.exec(bidder1, units("0.1"), NewWithdrawBidBody(c))
	assert.ErrorIs(t, err, ErrValueNotAccepted)

	out, err := ta.exec(bidder1, nil, NewWithdrawBidBody(c))
	require.NoError(t, err)
	assert.Equal(t, WithdrawBidEvent, out.GetEvents()[0].Topics[0])
	assertAmount(t, big.NewInt(0), ta.spent(bidder1))
	assertAmount(t, big.NewInt(0), ta.balance(AuctionAccountAddr))

	_, err = ta.exec(bidder1, nil, NewWithdrawBidBody(c))
	assert.ErrorIs(t, err, ErrBidInactive)
	_, err = ta.exec(bidder2, nil, NewWithdrawBidBody(c))
	assert.ErrorIs(t, err, ErrBidInactive)

	// the commitment can be reused once released
	ta.place(bidder1, 3, units("1"), units("0.4"))
	ta.setPhase(PhaseReveal)
	_, err = ta.exec(bidder1, nil, NewWithdrawBidBody(c))
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestUnsealTwiceFails(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	ta.place(bidder1, 0, units("0.1"), units("0.2"))
	ta.setPhase(PhaseReveal)

	_, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)
	_, err = ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	assert.ErrorIs(t, err, ErrBidNotActiveOrMismatch)

	// revealed values that do not match the commitment
	ta.setPhase(PhaseBidding)
	ta.place(bidder2, 0, units("0.3"), units("0.2"))
	ta.setPhase(PhaseReveal)
	_, err = ta.exec(bidder2, nil, NewUnsealBidBody(0, units("0.31")))
	assert.ErrorIs(t, err, ErrBidNotActiveOrMismatch)
	_, err = ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.3")))
	assert.ErrorIs(t, err, ErrBidNotActiveOrMismatch)
}

func TestOvertakeRefundsIncumbent(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	ta.place(bidder1, 0, units("0.1"), units("0.2"))
	ta.place(bidder2, 0, units("0.15"), units("0.2"))
	ta.setPhase(PhaseReveal)

	_, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)
	out, err := ta.exec(bidder2, nil, NewUnsealBidBody(0, units("0.15")))
	require.NoError(t, err)

	assertAmount(t, big.NewInt(0), ta.spent(bidder1))
	assertAmount(t, units("0.15"), ta.spent(bidder2))
	assert.Len(t, out.GetTransfers(), 2)

	report := ta.engine.Audit(ta.st)
	assertAmount(t, units("0.15"), report.Winning)
	assert.True(t, report.Solvent)
	assert.True(t, report.Balanced)
}

func TestOvertakeUnderLockup(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.engine.SetOutbidPolicy(ta.st, OutbidLockup)
	ta.setPhase(PhaseBidding)
	ta.place(bidder1, 0, units("0.1"), units("0.2"))
	ta.place(bidder2, 0, units("0.15"), units("0.2"))
	ta.setPhase(PhaseReveal)

	_, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)
	_, err = ta.exec(bidder2, nil, NewUnsealBidBody(0, units("0.15")))
	require.NoError(t, err)

	assertAmount(t, units("0.1"), ta.spent(bidder1))
	report := ta.engine.Audit(ta.st)
	assertAmount(t, units("0.1"), report.Locked)
	assertAmount(t, units("0.15"), report.Winning)
	assert.True(t, report.Balanced)
}

func TestRevealForUnavailableItem(t *testing.T) {
	ta := newTestAuction(t, nil)
	require.NoError(t, items.New(items.ItemsAddr, ta.st).Premint(5, stranger))

	ta.setPhase(PhaseBidding)
	ta.place(bidder1, 5, units("1"), units("0.2"))
	ta.place(bidder1, meter.DefaultCatalogueSize, units("1"), units("0.2"))
	ta.place(bidder2, 7, big.NewInt(0), units("0.2"))
	ta.setPhase(PhaseReveal)

	_, err := ta.exec(bidder1, units("0.8"), NewUnsealBidBody(5, units("1")))
	require.NoError(t, err)
	_, err = ta.exec(bidder1, nil, NewUnsealBidBody(meter.DefaultCatalogueSize, units("1")))
	require.NoError(t, err)
	_, err = ta.exec(bidder2, nil, NewUnsealBidBody(7, big.NewInt(0)))
	require.NoError(t, err)

	assertAmount(t, big.NewInt(0), ta.spent(bidder1))
	assertAmount(t, big.NewInt(0), ta.spent(bidder2))
	assert.False(t, ta.engine.HighestBidForItem(ta.st, 5).Exists())
	assert.False(t, ta.engine.HighestBidForItem(ta.st, 7).Exists())
	assertAmount(t, big.NewInt(0), ta.balance(AuctionAccountAddr))
}

func TestWithdrawProceeds(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	ta.place(bidder1, 0, units("0.1"), units("0.2"))
	ta.place(bidder2, 1, units("0.3"), units("0.5"))
	ta.setPhase(PhaseReveal)
	_, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)
	_, err = ta.exec(bidder2, nil, NewUnsealBidBody(1, units("0.3")))
	require.NoError(t, err)

	_, err = ta.exec(owner, nil, NewWithdrawProceedsBody())
	assert.ErrorIs(t, err, ErrWrongPhase)

	ta.setPhase(PhaseClaim)
	out, err := ta.exec(owner, nil, NewWithdrawProceedsBody())
	require.NoError(t, err)
	assert.Equal(t, ProceedsWithdrawnEvent, out.GetEvents()[0].Topics[0])
	assertAmount(t, new(big.Int).Add(funding, units("0.4")), ta.balance(owner))
	assertAmount(t, big.NewInt(0), ta.balance(AuctionAccountAddr))

	// claims still work after the sweep
	_, err = ta.exec(bidder2, nil, NewClaimItemBody(1))
	require.NoError(t, err)
}

func TestTransferOwnership(t *testing.T) {
	ta := newTestAuction(t, nil)

	_, err := ta.exec(owner, nil, NewTransferOwnershipBody(meter.Address{}))
	assert.ErrorIs(t, err, ErrInvalidOwner)

	out, err := ta.exec(owner, nil, NewTransferOwnershipBody(stranger))
	require.NoError(t, err)
	assert.Equal(t, OwnershipTransferredEvent, out.GetEvents()[0].Topics[0])
	assert.Equal(t, stranger, ta.engine.GetOwner(ta.st))

	_, err = ta.exec(owner, nil, NewSetPhaseBody(PhaseBidding))
	assert.ErrorIs(t, err, ErrUnauthorized)
	ta.exec(stranger, nil, NewSetPhaseBody(PhaseBidding))
	assert.Equal(t, PhaseBidding, ta.engine.CurrentPhase(ta.st))
}

func TestAccountingThroughLifecycle(t *testing.T) {
	ta := newTestAuction(t, nil)
	check := func() {
		report := ta.engine.Audit(ta.st)
		assert.True(t, report.Solvent, report.ToString())
		assert.True(t, report.Balanced, report.ToString())
	}

	ta.setPhase(PhaseBidding)
	c1 := ta.place(bidder1, 0, units("0.3"), units("0.2"))
	check()
	ta.place(bidder2, 0, units("0.25"), units("0.5"))
	check()
	ta.place(stranger, 1, units("0.1"), units("0.2"))
	check()
	_, err := ta.exec(bidder1, nil, NewWithdrawBidBody(c1))
	require.NoError(t, err)
	check()
	ta.place(bidder1, 0, units("0.3"), units("0.2"))
	check()

	ta.setPhase(PhaseReveal)
	_, err = ta.exec(bidder2, nil, NewUnsealBidBody(0, units("0.25")))
	require.NoError(t, err)
	check()
	_, err = ta.exec(bidder1, units("0.1"), NewUnsealBidBody(0, units("0.3")))
	require.NoError(t, err)
	check()

	report := ta.engine.Audit(ta.st)
	assertAmount(t, units("0.2"), report.ActiveStake)
	assertAmount(t, units("0.3"), report.Winning)
	assertAmount(t, units("0.5"), report.Balance)
}

func TestSweepForfeitsUnrevealedStakes(t *testing.T) {
	ta := newTestAuction(t, nil)
	ta.setPhase(PhaseBidding)
	ta.place(bidder1, 0, units("0.1"), units("0.2"))
	forfeited := ta.place(bidder2, 1, units("0.3"), units("0.5"))
	ta.setPhase(PhaseReveal)
	_, err := ta.exec(bidder1, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)

	ta.setPhase(PhaseClaim)
	_, err = ta.exec(owner, nil, NewWithdrawProceedsBody())
	require.NoError(t, err)
	assertAmount(t, new(big.Int).Add(funding, units("0.6")), ta.balance(owner))

	report := ta.engine.Audit(ta.st)
	assert.True(t, report.Solvent, report.ToString())
	assert.True(t, report.Balanced, report.ToString())
	assertAmount(t, big.NewInt(0), report.ActiveStake)
	assertAmount(t, units("0.5"), report.Forfeited)

	// the record stays visible but can no longer be paid out
	bid := ta.engine.SealedBidByCommitment(ta.st, forfeited)
	assert.True(t, bid.Active())
	assert.True(t, ta.engine.GetAccounting(ta.st).Forfeits(bid))

	ta.setPhase(PhaseBidding)
	fresh := ta.place(bidder1, 2, units("0.2"), units("0.2"))
	assert.False(t, ta.engine.GetAccounting(ta.st).Forfeits(ta.engine.SealedBidByCommitment(ta.st, fresh)))
	ta.place(bidder2, 0, units("0.3"), units("0.3"))
	_, err = ta.exec(bidder2, nil, NewWithdrawBidBody(forfeited))
	assert.ErrorIs(t, err, ErrStakeForfeited)

	ta.setPhase(PhaseReveal)
	_, err = ta.exec(bidder2, nil, NewUnsealBidBody(1, units("0.3")))
	assert.ErrorIs(t, err, ErrStakeForfeited)
	assert.True(t, ta.engine.SealedBidByCommitment(ta.st, forfeited).Active())

	// item 0 was paid for by the sweep, a later reveal can not displace it
	_, err = ta.exec(bidder2, nil, NewUnsealBidBody(0, units("0.3")))
	require.NoError(t, err)
	hb := ta.engine.HighestBidForItem(ta.st, 0)
	assert.Equal(t, bidder1, hb.Bidder)
	assertAmount(t, units("0.1"), hb.Amount)
	assertAmount(t, units("0.5"), ta.spent(bidder2), "only the forfeited stake is lost")

	assertAmount(t, units("0.2"), ta.balance(AuctionAccountAddr))
	report = ta.engine.Audit(ta.st)
	assert.True(t, report.Balanced, report.ToString())
}

type reentrantRegistry struct {
	*items.Minter
	ta  *testAuction
	err error
}

func (r *reentrantRegistry) TransferOwnership(id uint64, to meter.Address) error {
	_, r.err = r.ta.exec(to, nil, NewWithdrawProceedsBody())
	if r.err != nil {
		return r.err
	}
	return r.Minter.TransferOwnership(id, to)
}

func TestReentrantClaimRejected(t *testing.T) {
	var reg *reentrantRegistry
	ta := newTestAuction(t, func(st *state.State) ItemRegistry {
		return reg
	})
	reg = &reentrantRegistry{Minter: items.NewMinter(ta.st, AuctionAccountAddr), ta: ta}

	ta.setPhase(PhaseBidding)
	ta.place(owner, 0, units("0.1"), units("0.2"))
	ta.setPhase(PhaseReveal)
	_, err := ta.exec(owner, nil, NewUnsealBidBody(0, units("0.1")))
	require.NoError(t, err)
	ta.setPhase(PhaseClaim)

	before := ta.balance(AuctionAccountAddr)
	_, err = ta.exec(owner, nil, NewClaimItemBody(0))
	assert.ErrorIs(t, err, ErrReentrant)
	assert.ErrorIs(t, reg.err, ErrReentrant)
	assert.False(t, ta.engine.IsClaimed(ta.st, 0))
	assertAmount(t, before, ta.balance(AuctionAccountAddr))

	// the guard is released after the failed call
	_, err = ta.exec(owner, nil, NewWithdrawProceedsBody())
	assert.NoError(t, err)
}

func TestCommitmentOf(t *testing.T) {
	a := CommitmentOf(1, units("0.1"), bidder1)
	assert.Equal(t, a, CommitmentOf(1, units("0.1"), bidder1))
	assert.NotEqual(t, a, CommitmentOf(2, units("0.1"), bidder1))
	assert.NotEqual(t, a, CommitmentOf(1, units("0.2"), bidder1))
	assert.NotEqual(t, a, CommitmentOf(1, units("0.1"), bidder2))
	assert.Equal(t, CommitmentOf(1, nil, bidder1), CommitmentOf(1, big.NewInt(0), bidder1))
	assert.Panics(t, func() { CommitmentOf(1, big.NewInt(-1), bidder1) })
}

func TestHandlerRejectsBadInput(t *testing.T) {
	ta := newTestAuction(t, nil)
	env := setypes.NewScriptEnv(ta.st, &xenv.BlockContext{}, &xenv.TransactionContext{Origin: owner}, &AuctionAccountAddr, new(big.Int))

	_, gas, err := ta.engine.Handler(env, []byte{0x01, 0x02}, &AuctionAccountAddr, 100)
	assert.Error(t, err)
	assert.Equal(t, uint64(100), gas)

	payload, _ := rlp.EncodeToBytes(&BlindAuctionBody{Opcode: 99})
	_, _, err = ta.engine.Handler(env, payload, &AuctionAccountAddr, 100)
	assert.Equal(t, ErrInvalidOpcode, err)

	payload, _ = rlp.EncodeToBytes(NewSetPhaseBody(PhaseBidding))
	other := meter.BytesToAddress([]byte("other"))
	_, _, err = ta.engine.Handler(env, payload, &other, 100)
	assert.Equal(t, ErrWrongModuleAddress, err)
}

func TestParsePhase(t *testing.T) {
	p, err := ParsePhase("reveal")
	assert.NoError(t, err)
	assert.Equal(t, PhaseReveal, p)
	p, err = ParsePhase("3")
	assert.NoError(t, err)
	assert.Equal(t, PhaseClaim, p)
	_, err = ParsePhase("4")
	assert.Equal(t, ErrUnknownPhase, err)
	assert.Equal(t, "Phase(7)", Phase(7).String())
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "ok", ErrorCode(nil))
	assert.Equal(t, "wrong_phase", ErrorCode(wrongPhase(PhaseClaim, PhaseBidding)))
	assert.Equal(t, "reentrant", ErrorCode(ErrReentrant))
	assert.Equal(t, "stake_forfeited", ErrorCode(ErrStakeForfeited))
}
