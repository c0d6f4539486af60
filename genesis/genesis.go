// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis loads the initial ledger setup: pool parameters and
// prefunded account balances.
package genesis

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lockstake/lockstake/bank"
	"github.com/lockstake/lockstake/ledger/pool"
	"github.com/lockstake/lockstake/lockstake"
)

// Config is the genesis file layout.
type Config struct {
	Pool     PoolConfig `yaml:"pool"`
	Accounts []Account  `yaml:"accounts"`
}

// PoolConfig selects the pool parameters stored at first start.
type PoolConfig struct {
	RewardRate       uint64   `yaml:"rewardRate"`
	EarlyWithdrawFee uint64   `yaml:"earlyWithdrawFee"`
	ConversionRate   uint64   `yaml:"conversionRate"`
	AvailablePeriods []uint32 `yaml:"availablePeriods"`
}

// Account prefunds one address. Balances are decimal strings so very
// large values round-trip exactly.
type Account struct {
	Address   string `yaml:"address"`
	Principal string `yaml:"principal,omitempty"`
	Reward    string `yaml:"reward,omitempty"`
}

// Default returns a config with protocol default pool parameters and no
// prefunded accounts.
func Default() *Config {
	return &Config{
		Pool: PoolConfig{
			RewardRate:       lockstake.DefaultRewardRate,
			EarlyWithdrawFee: lockstake.DefaultEarlyWithdrawFee,
			ConversionRate:   lockstake.DefaultConversionRate,
			AvailablePeriods: append([]uint32(nil), lockstake.DefaultAvailablePeriods...),
		},
	}
}

// Load reads and validates a genesis file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis file")
	}
	return Parse(data)
}

// Parse decodes and validates genesis config bytes.
func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "parse genesis file")
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func parseBalance(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, errors.Errorf("invalid balance %q", s)
	}
	return v, nil
}

func (c *Config) validate() error {
	if len(c.Pool.AvailablePeriods) == 0 {
		return errors.New("genesis: no available periods")
	}
	for _, acc := range c.Accounts {
		if _, err := lockstake.ParseAddress(acc.Address); err != nil {
			return errors.Wrapf(err, "genesis: account %q", acc.Address)
		}
		if _, err := parseBalance(acc.Principal); err != nil {
			return errors.Wrapf(err, "genesis: account %q", acc.Address)
		}
		if _, err := parseBalance(acc.Reward); err != nil {
			return errors.Wrapf(err, "genesis: account %q", acc.Address)
		}
	}
	return nil
}

// PoolParams converts the pool section for ledger initialization.
func (c *Config) PoolParams() pool.Config {
	return pool.Config{
		RewardRate:       c.Pool.RewardRate,
		EarlyWithdrawFee: c.Pool.EarlyWithdrawFee,
		ConversionRate:   c.Pool.ConversionRate,
		AvailablePeriods: c.Pool.AvailablePeriods,
	}
}

// Apply mints the prefunded balances. The caller commits the state.
func (c *Config) Apply(bk *bank.Bank) error {
	for _, acc := range c.Accounts {
		addr, err := lockstake.ParseAddress(acc.Address)
		if err != nil {
			return err
		}
		principal, err := parseBalance(acc.Principal)
		if err != nil {
			return err
		}
		if principal.Sign() > 0 {
			if err := bk.Mint(lockstake.AssetPrincipal, addr, principal); err != nil {
				return err
			}
		}
		reward, err := parseBalance(acc.Reward)
		if err != nil {
			return err
		}
		if reward.Sign() > 0 {
			if err := bk.Mint(lockstake.AssetReward, addr, reward); err != nil {
				return err
			}
		}
	}
	return nil
}
