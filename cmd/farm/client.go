// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/farmclient"
	"github.com/vechain/tokenfarm/thor"
)

var stdout io.Writer = os.Stdout

// clientEnv carries what every client command needs.
type clientEnv struct {
	client  *farmclient.Client
	node    *types.Node
	account thor.Address
	out     io.Writer
}

func newClientEnv(ctx *cli.Context) (*clientEnv, error) {
	client := farmclient.New(ctx.String(apiURLFlag.Name))
	node, err := client.Node()
	if err != nil {
		return nil, err
	}
	account := node.Deployer
	if s := ctx.String(accountFlag.Name); s != "" {
		if account, err = thor.ParseAddress(s); err != nil {
			return nil, errors.Wrap(err, "account")
		}
	}
	return &clientEnv{client: client, node: node, account: account, out: stdout}, nil
}

// resolveToken accepts an address or a name of the deployment.
func (e *clientEnv) resolveToken(s string) (thor.Address, error) {
	if addr, err := thor.ParseAddress(s); err == nil {
		return addr, nil
	}
	if s == deploy.RewardTokenName {
		return e.node.RewardToken, nil
	}
	for _, c := range e.node.Tokens {
		if c.Name == s {
			return c.Address, nil
		}
	}
	return thor.Address{}, errors.Errorf("unknown token %q", s)
}

func (e *clientEnv) token(ctx *cli.Context) (thor.Address, error) {
	return e.resolveToken(ctx.String(tokenFlag.Name))
}

func amount(ctx *cli.Context) (*big.Int, error) {
	s := ctx.String(amountFlag.Name)
	if s == "" {
		return nil, errors.Errorf("%s flag not specified", amountFlag.Name)
	}
	return deploy.ParseAmount(s)
}

func (e *clientEnv) printReceipt(r *types.Receipt) {
	fmt.Fprintf(e.out, "%v committed at revision %v, id %v, %v events\n", r.Op, r.Revision, r.ID, len(r.Events))
}

// formatAmount prints v in whole units with decimals digits.
func formatAmount(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	unit := thor.Pow10(decimals)
	whole, frac := new(big.Int).QuoRem(v, unit, new(big.Int))
	if frac.Sign() == 0 {
		return whole.String()
	}
	s := frac.String()
	s = strings.Repeat("0", int(decimals)-len(s)) + s
	return whole.String() + "." + strings.TrimRight(s, "0")
}

func balanceAction(ctx *cli.Context) error {
	env, err := newClientEnv(ctx)
	if err != nil {
		return err
	}
	token, err := env.token(ctx)
	if err != nil {
		return err
	}
	info, err := env.client.Token(token)
	if err != nil {
		return err
	}
	balance, err := env.client.Balance(token, env.account)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.out, "%v %v\n", formatAmount(balance, info.Decimals), info.Symbol)
	return nil
}

func approveAction(ctx *cli.Context) error {
	env, err := newClientEnv(ctx)
	if err != nil {
		return err
	}
	token, err := env.token(ctx)
	if err != nil {
		return err
	}
	amt, err := amount(ctx)
	if err != nil {
		return err
	}
	spender := env.node.Farm
	if s := ctx.String(spenderFlag.Name); s != "" {
		if spender, err = thor.ParseAddress(s); err != nil {
			return errors.Wrap(err, "spender")
		}
	}
	r, err := env.client.Approve(token, env.account, spender, amt)
	if err != nil {
		return err
	}
	env.printReceipt(r)
	return nil
}

func stakeAction(ctx *cli.Context) error {
	env, err := newClientEnv(ctx)
	if err != nil {
		return err
	}
	token, err := env.token(ctx)
	if err != nil {
		return err
	}
	amt, err := amount(ctx)
	if err != nil {
		return err
	}
	r, err := env.client.Approve(token, env.account, env.node.Farm, amt)
	if err != nil {
		return err
	}
	env.printReceipt(r)
	if r, err = env.client.Stake(env.account, token, amt); err != nil {
		return err
	}
	env.printReceipt(r)
	return nil
}

func unstakeAction(ctx *cli.Context) error {
	env, err := newClientEnv(ctx)
	if err != nil {
		return err
	}
	token, err := env.token(ctx)
	if err != nil {
		return err
	}
	r, err := env.client.Unstake(env.account, token)
	if err != nil {
		return err
	}
	env.printReceipt(r)
	return nil
}

func issueRewardsAction(ctx *cli.Context) error {
	env, err := newClientEnv(ctx)
	if err != nil {
		return err
	}
	rewards, err := env.client.IssueRewards(env.account)
	if err != nil {
		return err
	}
	if rewards.Receipt != nil {
		env.printReceipt(rewards.Receipt)
	}
	for _, p := range rewards.Payouts {
		fmt.Fprintf(env.out, "%v %v\n", p.Staker, formatAmount(types.Int(p.Amount), thor.TokenDecimals))
	}
	fmt.Fprintf(env.out, "total %v\n", formatAmount(types.Int(rewards.Total), thor.TokenDecimals))
	return nil
}

func valueAction(ctx *cli.Context) error {
	env, err := newClientEnv(ctx)
	if err != nil {
		return err
	}
	staker, err := env.client.Staker(env.account, true)
	if err != nil {
		return err
	}
	for _, b := range staker.Balances {
		fmt.Fprintf(env.out, "%v %v\n", b.Token, formatAmount(types.Int(b.Amount), thor.TokenDecimals))
	}
	fmt.Fprintf(env.out, "total value %v\n", formatAmount(types.Int(staker.TotalValue), thor.TokenDecimals))
	return nil
}
