// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"math/rand"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/meterio/sealed-auction/api/transactions"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/meterio/sealed-auction/tx"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

func parseAmount(ctx *cli.Context, flag cli.StringFlag) (*big.Int, error) {
	v := ctx.String(flag.Name)
	if v == "" {
		return nil, fmt.Errorf("missing flag -%s", flag.Name)
	}
	amount, err := meter.ParseUnits(v)
	if err != nil {
		return nil, errors.WithMessage(err, flag.Name)
	}
	return amount, nil
}

func commitmentAction(ctx *cli.Context) error {
	amount, err := parseAmount(ctx, amountFlag)
	if err != nil {
		return err
	}
	bidder, err := meter.ParseAddress(ctx.String(bidderFlag.Name))
	if err != nil {
		return errors.WithMessage(err, bidderFlag.Name)
	}
	fmt.Println(blindauction.CommitmentOf(ctx.Uint64(itemFlag.Name), amount, bidder))
	return nil
}

func keygenAction(ctx *cli.Context) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	if out := ctx.String(outFlag.Name); out != "" {
		if err := crypto.SaveECDSA(out, key); err != nil {
			return errors.Wrap(err, "save key")
		}
		fmt.Println("Key saved:", out)
	} else {
		fmt.Println("Private key:", hex.EncodeToString(crypto.FromECDSA(key)))
	}
	fmt.Println("Address:", meter.Address(crypto.PubkeyToAddress(key.PublicKey)))
	return nil
}

// auctionBody builds the operation named by -op.
func auctionBody(ctx *cli.Context, sender meter.Address) (*blindauction.BlindAuctionBody, error) {
	switch op := strings.ToLower(ctx.String(opFlag.Name)); op {
	case "set-phase":
		phase, err := blindauction.ParsePhase(ctx.String(phaseFlag.Name))
		if err != nil {
			return nil, errors.WithMessage(err, phaseFlag.Name)
		}
		return blindauction.NewSetPhaseBody(phase), nil
	case "place-bid", "withdraw-bid":
		var commitment meter.Bytes32
		if s := ctx.String(commitmentFlag.Name); s != "" {
			c, err := meter.ParseBytes32(s)
			if err != nil {
				return nil, errors.WithMessage(err, commitmentFlag.Name)
			}
			commitment = c
		} else {
			// seal item and amount for the signer
			amount, err := parseAmount(ctx, amountFlag)
			if err != nil {
				return nil, err
			}
			commitment = blindauction.CommitmentOf(ctx.Uint64(itemFlag.Name), amount, sender)
		}
		if op == "place-bid" {
			return blindauction.NewPlaceBidBody(commitment), nil
		}
		return blindauction.NewWithdrawBidBody(commitment), nil
	case "unseal":
		amount, err := parseAmount(ctx, amountFlag)
		if err != nil {
			return nil, err
		}
		return blindauction.NewUnsealBidBody(ctx.Uint64(itemFlag.Name), amount), nil
	case "claim":
		return blindauction.NewClaimItemBody(ctx.Uint64(itemFlag.Name)), nil
	case "withdraw-proceeds":
		return blindauction.NewWithdrawProceedsBody(), nil
	case "transfer-ownership":
		newOwner, err := meter.ParseAddress(ctx.String(newOwnerFlag.Name))
		if err != nil {
			return nil, errors.WithMessage(err, newOwnerFlag.Name)
		}
		return blindauction.NewTransferOwnershipBody(newOwner), nil
	case "":
		return nil, fmt.Errorf("missing flag -%s", opFlag.Name)
	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

func rawTxAction(ctx *cli.Context) error {
	key, err := crypto.LoadECDSA(ctx.String(keyFileFlag.Name))
	if err != nil {
		return errors.Wrap(err, "load key")
	}
	sender := meter.Address(crypto.PubkeyToAddress(key.PublicKey))

	body, err := auctionBody(ctx, sender)
	if err != nil {
		return err
	}
	data, err := script.EncodeScriptData(body)
	if err != nil {
		return err
	}
	value, err := meter.ParseUnits(ctx.String(valueFlag.Name))
	if err != nil {
		return errors.WithMessage(err, valueFlag.Name)
	}

	gene := selectGenesis(ctx)
	gasPrice := gene.BaseGasPrice()
	if s := ctx.String(gasPriceFlag.Name); s != "" {
		p, ok := new(big.Int).SetString(s, 0)
		if !ok || p.Sign() < 0 {
			return fmt.Errorf("invalid -%s", gasPriceFlag.Name)
		}
		gasPrice = p
	}
	nonce := ctx.Uint64(nonceFlag.Name)
	if !ctx.IsSet(nonceFlag.Name) {
		nonce = rand.Uint64()
	}
	genesisID := gene.ID()

	trx, err := new(tx.Builder).
		ChainTag(genesisID[31]).
		Nonce(nonce).
		Gas(ctx.Uint64(gasFlag.Name)).
		GasPrice(gasPrice).
		Clause(tx.NewClause(&blindauction.AuctionAccountAddr).WithValue(value).WithData(data)).
		Build().
		Sign(key)
	if err != nil {
		return err
	}
	raw, err := transactions.EncodeRawTx(trx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"id":  trx.ID(),
		"op":  body.GetOpName(body.Opcode),
		"raw": raw.Raw,
	})
}
