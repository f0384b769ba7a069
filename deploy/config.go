// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deploy

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/tokenfarm/thor"
)

const (
	// SoloNetwork is the local network where price feeds are mocked.
	SoloNetwork = "solo"
	// RewardTokenName names the reward token in bindings.
	RewardTokenName = "dapp_token"
)

// Amount is an integer amount in YAML, either plain wei ("1000") or whole units ("1000 ether").
type Amount big.Int

// NewAmount wraps v.
func NewAmount(v *big.Int) *Amount {
	return (*Amount)(new(big.Int).Set(v))
}

// Int returns the amount as big integer.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(a))
}

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = Amount(*v)
	return nil
}

func (a *Amount) MarshalYAML() (any, error) {
	v := (*big.Int)(a)
	if q, r := new(big.Int).QuoRem(v, thor.Ether, new(big.Int)); r.Sign() == 0 && q.Sign() > 0 {
		return q.String() + " ether", nil
	}
	return v.String(), nil
}

// ParseAmount parses "123" as wei and "123 ether" as whole units.
func ParseAmount(s string) (*big.Int, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 || len(fields) > 2 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	v, ok := new(big.Int).SetString(fields[0], 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if len(fields) == 2 {
		if fields[1] != "ether" {
			return nil, fmt.Errorf("invalid unit %q", fields[1])
		}
		v.Mul(v, thor.Ether)
	}
	return v, nil
}

// FeedConfig describes a price feed. Feeds without an address are deployed as mocks on solo.
type FeedConfig struct {
	Name          string  `yaml:"name"`
	Address       string  `yaml:"address,omitempty"`
	Decimals      uint8   `yaml:"decimals"`
	InitialAnswer *Amount `yaml:"initialAnswer,omitempty"`
}

// TokenConfig describes a mock token minted to the deployer.
type TokenConfig struct {
	Name     string  `yaml:"name"`
	Label    string  `yaml:"label"`
	Symbol   string  `yaml:"symbol"`
	Decimals uint8   `yaml:"decimals"`
	Supply   *Amount `yaml:"supply,omitempty"`
}

// Binding allows a token for staking and binds it to a feed.
type Binding struct {
	Token string `yaml:"token"`
	Feed  string `yaml:"feed"`
}

// Config is the deployment configuration.
type Config struct {
	Network       string        `yaml:"network"`
	InitialSupply *Amount       `yaml:"initialSupply"`
	KeptAmount    *Amount       `yaml:"keptAmount"`
	RewardToken   TokenConfig   `yaml:"rewardToken"`
	Feeds         []FeedConfig  `yaml:"feeds"`
	Tokens        []TokenConfig `yaml:"tokens"`
	Bindings      []Binding     `yaml:"bindings"`
}

// DefaultConfig returns the solo deployment: the reward token, two mock feeds answering 2000 and
// the WETH and DAI mock tokens.
func DefaultConfig() *Config {
	return &Config{
		Network:       SoloNetwork,
		InitialSupply: NewAmount(thor.InitialSupply),
		KeptAmount:    NewAmount(thor.KeptAmount),
		RewardToken: TokenConfig{
			Name:     RewardTokenName,
			Label:    "Vianu Token",
			Symbol:   "VIT",
			Decimals: thor.TokenDecimals,
		},
		Feeds: []FeedConfig{
			{Name: "eth_usd_price_feed", Decimals: thor.PriceFeedDecimals, InitialAnswer: NewAmount(thor.InitialPriceFeedValue)},
			{Name: "dai_usd_price_feed", Decimals: thor.PriceFeedDecimals, InitialAnswer: NewAmount(thor.InitialPriceFeedValue)},
		},
		Tokens: []TokenConfig{
			{Name: "weth_token", Label: "Mock WETH", Symbol: "WETH", Decimals: thor.TokenDecimals, Supply: NewAmount(thor.InitialSupply)},
			{Name: "fau_token", Label: "Mock DAI", Symbol: "DAI", Decimals: thor.TokenDecimals, Supply: NewAmount(thor.InitialSupply)},
		},
		Bindings: []Binding{
			{Token: RewardTokenName, Feed: "dai_usd_price_feed"},
			{Token: "fau_token", Feed: "dai_usd_price_feed"},
			{Token: "weth_token", Feed: "eth_usd_price_feed"},
		},
	}
}

// LoadConfig reads a YAML config, missing amounts fall back to the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read deployment config")
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a YAML config.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode deployment config")
	}
	def := DefaultConfig()
	if cfg.Network == "" {
		cfg.Network = def.Network
	}
	if cfg.InitialSupply == nil {
		cfg.InitialSupply = def.InitialSupply
	}
	if cfg.KeptAmount == nil {
		cfg.KeptAmount = def.KeptAmount
	}
	if cfg.RewardToken.Name == "" {
		cfg.RewardToken = def.RewardToken
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// IsSolo reports whether feeds may be mocked.
func (c *Config) IsSolo() bool {
	return c.Network == SoloNetwork
}

// Validate checks amounts and that every binding names a known token and feed.
func (c *Config) Validate() error {
	if c.InitialSupply == nil || c.KeptAmount == nil {
		return errors.New("initial supply and kept amount required")
	}
	if c.KeptAmount.Int().Cmp(c.InitialSupply.Int()) > 0 {
		return errors.New("kept amount exceeds initial supply")
	}
	if c.RewardToken.Name != RewardTokenName {
		return fmt.Errorf("reward token must be named %q", RewardTokenName)
	}

	feeds := make(map[string]bool)
	for _, f := range c.Feeds {
		if feeds[f.Name] {
			return fmt.Errorf("duplicated feed %q", f.Name)
		}
		feeds[f.Name] = true
		if f.Address != "" {
			if _, err := thor.ParseAddress(f.Address); err != nil {
				return errors.Wrapf(err, "feed %q", f.Name)
			}
			continue
		}
		if !c.IsSolo() {
			return fmt.Errorf("feed %q: address required on network %q", f.Name, c.Network)
		}
		if f.InitialAnswer == nil || f.InitialAnswer.Int().Sign() <= 0 {
			return fmt.Errorf("feed %q: positive initial answer required", f.Name)
		}
		if f.Decimals > thor.MaxDecimals {
			return fmt.Errorf("feed %q: decimals out of range", f.Name)
		}
	}

	tokens := map[string]bool{RewardTokenName: true}
	for _, t := range c.Tokens {
		if tokens[t.Name] {
			return fmt.Errorf("duplicated token %q", t.Name)
		}
		tokens[t.Name] = true
		if t.Supply == nil {
			return fmt.Errorf("token %q: supply required", t.Name)
		}
	}

	for _, b := range c.Bindings {
		if !tokens[b.Token] {
			return fmt.Errorf("binding: unknown token %q", b.Token)
		}
		if !feeds[b.Feed] {
			return fmt.Errorf("binding: unknown feed %q", b.Feed)
		}
	}
	return nil
}
