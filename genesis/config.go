// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"
	"os"

	"github.com/meterio/sealed-auction/builtin/items"
	"github.com/meterio/sealed-auction/meter"
	"github.com/meterio/sealed-auction/script/blindauction"
	"github.com/meterio/sealed-auction/state"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Account is a funded account at launch.
type Account struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"` // whole units, e.g. "1000.5"
}

// PreOwnedItem is an item minted before the auction opens.
type PreOwnedItem struct {
	Item  uint64 `yaml:"item"`
	Owner string `yaml:"owner"`
}

// Config describes the initial ledger and auction setup.
type Config struct {
	Name          string         `yaml:"name"`
	LaunchTime    uint64         `yaml:"launchTime"`
	Owner         string         `yaml:"owner"`
	MinStake      string         `yaml:"minStake"`
	CatalogueSize uint64         `yaml:"catalogueSize"`
	OutbidPolicy  string         `yaml:"outbidPolicy"`
	BaseGasPrice  string         `yaml:"baseGasPrice"`
	PreOwned      []PreOwnedItem `yaml:"preOwned"`
	Accounts      []Account      `yaml:"accounts"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse genesis config")
	}
	return &cfg, nil
}

type resolvedConfig struct {
	owner         meter.Address
	minStake      *big.Int
	catalogueSize uint64
	policy        blindauction.OutbidPolicy
	baseGasPrice  *big.Int
	preOwned      map[uint64]meter.Address
	balances      map[meter.Address]*big.Int
}

func (c *Config) resolve() (*resolvedConfig, error) {
	r := &resolvedConfig{
		minStake:      new(big.Int).Set(meter.InitialMinStake),
		catalogueSize: meter.DefaultCatalogueSize,
		baseGasPrice:  new(big.Int).Set(meter.InitialBaseGasPrice),
		preOwned:      make(map[uint64]meter.Address),
		balances:      make(map[meter.Address]*big.Int),
	}

	owner, err := meter.ParseAddress(c.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if owner.IsZero() {
		return nil, errors.New("owner: zero address")
	}
	r.owner = owner

	if c.MinStake != "" {
		if r.minStake, err = meter.ParseUnits(c.MinStake); err != nil {
			return nil, errors.Wrap(err, "minStake")
		}
	}
	if c.BaseGasPrice != "" {
		if r.baseGasPrice, err = meter.ParseUnits(c.BaseGasPrice); err != nil {
			return nil, errors.Wrap(err, "baseGasPrice")
		}
	}
	if c.CatalogueSize != 0 {
		r.catalogueSize = c.CatalogueSize
	}
	if c.OutbidPolicy != "" {
		if r.policy, err = blindauction.ParseOutbidPolicy(c.OutbidPolicy); err != nil {
			return nil, errors.Wrap(err, "outbidPolicy")
		}
	}

	for _, po := range c.PreOwned {
		if po.Item >= r.catalogueSize {
			return nil, errors.Errorf("preOwned: item %v outside catalogue of %v", po.Item, r.catalogueSize)
		}
		if _, dup := r.preOwned[po.Item]; dup {
			return nil, errors.Errorf("preOwned: item %v listed twice", po.Item)
		}
		addr, err := meter.ParseAddress(po.Owner)
		if err != nil {
			return nil, errors.Wrapf(err, "preOwned: item %v", po.Item)
		}
		r.preOwned[po.Item] = addr
	}

	for _, acc := range c.Accounts {
		addr, err := meter.ParseAddress(acc.Address)
		if err != nil {
			return nil, errors.Wrap(err, "accounts")
		}
		bal, err := meter.ParseUnits(acc.Balance)
		if err != nil {
			return nil, errors.Wrapf(err, "accounts: balance of %v", addr)
		}
		if prev, ok := r.balances[addr]; ok {
			bal.Add(bal, prev)
		}
		r.balances[addr] = bal
	}
	return r, nil
}

// NewGenesis builds the genesis described by the config.
func NewGenesis(c *Config) (*Genesis, error) {
	r, err := c.resolve()
	if err != nil {
		return nil, err
	}

	builder := new(Builder).
		GasLimit(meter.MaxTxGas).
		Timestamp(c.LaunchTime).
		State(func(state *state.State) error {
			for addr, bal := range r.balances {
				state.SetBalance(addr, bal)
			}

			reg := items.New(items.ItemsAddr, state)
			reg.Init(r.catalogueSize, blindauction.AuctionAccountAddr)
			for id, owner := range r.preOwned {
				if err := reg.Premint(id, owner); err != nil {
					return errors.Wrapf(err, "premint item %v", id)
				}
			}

			blindauction.InitGenesis(state, r.owner, r.minStake, r.policy)
			return nil
		})

	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}

	name := c.Name
	if name == "" {
		name = "custom"
	}
	log.Debug("genesis prepared", "name", name, "id", id, "owner", r.owner, "items", r.catalogueSize, "policy", r.policy)
	return &Genesis{builder, id, name, r.owner, r.baseGasPrice}, nil
}
