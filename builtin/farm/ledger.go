// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"context"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/thor"
)

func balanceKey(token, account thor.Address) thor.Bytes32 {
	return thor.Blake2b(token.Bytes(), account.Bytes())
}

// Stake moves amount of token from caller into the farm. The caller must have approved the farm
// for at least amount, and the token must be allowed with a readable price feed.
func (f *Farm) Stake(ctx context.Context, caller, token thor.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.Newf(reverts.ErrInvalidOperation, "amount must be more than 0")
	}
	if ok, err := f.IsAllowed(token); err != nil {
		return err
	} else if !ok {
		return reverts.Newf(reverts.ErrInvalidOperation, "token %v is currently not allowed", token)
	}
	if _, err := f.price(ctx, token); err != nil {
		return err
	}

	return f.atomic(func() error {
		if err := f.token(token).TransferFrom(f.Address(), caller, f.Address(), amount); err != nil {
			return err
		}

		key := balanceKey(token, caller)
		bal, err := f.stakingBalance.Get(key)
		if err != nil {
			return errors.Wrap(err, "failed to get staking balance")
		}
		if bal.Sign() == 0 {
			unique, err := f.uniqueTokens.Get(caller)
			if err != nil {
				return err
			}
			if err := f.uniqueTokens.Set(caller, unique+1); err != nil {
				return err
			}
		}
		if err := f.stakingBalance.Set(key, bal.Add(bal, amount)); err != nil {
			return err
		}

		if index, err := f.stakerIndex.Get(caller); err != nil {
			return err
		} else if index == 0 {
			index, err := f.stakers.Push(caller)
			if err != nil {
				return err
			}
			if err := f.stakerIndex.Set(caller, index+1); err != nil {
				return err
			}
		}

		total, err := f.TotalStaked(token)
		if err != nil {
			return err
		}
		if err := f.totalStaked.Set(token, total.Add(total, amount)); err != nil {
			return err
		}
		logger.Debug("staked", "staker", caller, "token", token, "amount", amount)
		return f.context.Emit(eventStaked, caller, token, amount)
	})
}

// Unstake returns the whole staked balance of token to caller.
// The caller stays in the stakers list.
func (f *Farm) Unstake(caller, token thor.Address) error {
	key := balanceKey(token, caller)
	bal, err := f.stakingBalance.Get(key)
	if err != nil {
		return errors.Wrap(err, "failed to get staking balance")
	}
	if bal.Sign() == 0 {
		return reverts.Newf(reverts.ErrInvalidOperation, "staking balance cannot be 0")
	}

	return f.atomic(func() error {
		if err := f.token(token).Transfer(f.Address(), caller, bal); err != nil {
			return err
		}
		if err := f.stakingBalance.Set(key, new(big.Int)); err != nil {
			return err
		}

		unique, err := f.uniqueTokens.Get(caller)
		if err != nil {
			return err
		}
		if unique == 0 {
			return reverts.Newf(reverts.ErrInvalidOperation, "unique tokens staked underflow")
		}
		if err := f.uniqueTokens.Set(caller, unique-1); err != nil {
			return err
		}

		total, err := f.TotalStaked(token)
		if err != nil {
			return err
		}
		if total.Cmp(bal) < 0 {
			return reverts.Newf(reverts.ErrInvalidOperation, "total staked underflow")
		}
		if err := f.totalStaked.Set(token, total.Sub(total, bal)); err != nil {
			return err
		}
		logger.Debug("unstaked", "staker", caller, "token", token, "amount", bal)
		return f.context.Emit(eventUnstaked, caller, token, bal)
	})
}

// StakingBalance returns the amount of token staked by account.
func (f *Farm) StakingBalance(token, account thor.Address) (*big.Int, error) {
	return f.stakingBalance.Get(balanceKey(token, account))
}

// UniqueTokensStaked returns the number of distinct tokens account currently stakes.
func (f *Farm) UniqueTokensStaked(account thor.Address) (uint64, error) {
	return f.uniqueTokens.Get(account)
}

// Stakers returns every account that ever staked, in order of first stake.
func (f *Farm) Stakers() ([]thor.Address, error) {
	return f.stakers.All()
}

func (f *Farm) StakerAt(i uint64) (thor.Address, error) {
	return f.stakers.Get(i)
}

func (f *Farm) StakersCount() (uint64, error) {
	return f.stakers.Len()
}

// IsStaker reports whether account ever staked.
func (f *Farm) IsStaker(account thor.Address) (bool, error) {
	index, err := f.stakerIndex.Get(account)
	if err != nil {
		return false, err
	}
	return index > 0, nil
}

// TotalStaked returns the amount of token held by the farm on behalf of stakers.
func (f *Farm) TotalStaked(token thor.Address) (*big.Int, error) {
	return f.totalStaked.Get(token)
}
