// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/lvldb"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/test/datagen"
	"github.com/vechain/tokenfarm/thor"
)

type TestStruct struct {
	Field1 uint64
	Addr1  thor.Address
	Bytes1 thor.Bytes32
}

func newContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(thor.Address{1}, state.NewStater(db).NewState())
}

func TestAddress(t *testing.T) {
	ctx := newContext(t)
	address := NewAddress(ctx, thor.Bytes32{1})

	value := datagen.RandAddress()
	address.Set(&value)

	got, err := address.Get()
	assert.NoError(t, err)
	assert.Equal(t, value, got)

	address.Set(nil)
	got, err = address.Get()
	assert.NoError(t, err)
	assert.Equal(t, thor.Address{}, got)

	assert.Equal(t, thor.Address{1}, ctx.Address())
}

func TestAddress_NegativeCases(t *testing.T) {
	ctx := newContext(t)
	slot := thor.BytesToBytes32([]byte("slot"))

	// invalid RLP makes state.GetStorage fail
	ctx.State().SetRawStorage(ctx.Address(), slot, rlp.RawValue{0xFF})

	addr, err := NewAddress(ctx, slot).Get()
	assert.Equal(t, thor.Address{}, addr)
	assert.Error(t, err)
}

func TestMapping(t *testing.T) {
	ctx := newContext(t)

	balances := NewMapping[thor.Address, *big.Int](ctx, thor.Bytes32{1})
	flags := NewMapping[thor.Address, bool](ctx, thor.Bytes32{2})
	structs := NewMapping[thor.Bytes32, *TestStruct](ctx, thor.Bytes32{3})

	acc := datagen.RandAddress()

	bal, err := balances.Get(acc)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Sign(), "pointer values are never nil")

	require.NoError(t, balances.Set(acc, big.NewInt(42)))
	bal, err = balances.Get(acc)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), bal)

	// same key, different base position
	flag, err := flags.Get(acc)
	require.NoError(t, err)
	assert.False(t, flag)
	require.NoError(t, flags.Set(acc, true))
	flag, err = flags.Get(acc)
	require.NoError(t, err)
	assert.True(t, flag)

	s := &TestStruct{Field1: 7, Addr1: acc, Bytes1: datagen.RandomHash()}
	key := datagen.RandomHash()
	require.NoError(t, structs.Set(key, s))
	got, err := structs.Get(key)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	// zero values clear the slot
	require.NoError(t, balances.Set(acc, big.NewInt(0)))
	raw, err := ctx.State().GetRawStorage(ctx.Address(), balances.position(acc))
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestUint256(t *testing.T) {
	ctx := newContext(t)
	u := NewUint256(ctx, thor.Bytes32{1})

	require.NoError(t, u.Set(big.NewInt(1000)))
	value, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), value)

	require.NoError(t, u.Add(big.NewInt(500)))
	value, err = u.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1500), value)

	require.NoError(t, u.Sub(big.NewInt(200)))
	value, err = u.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1300), value)

	err = u.Sub(big.NewInt(1301))
	assert.True(t, errors.Is(err, reverts.ErrInvalidOperation))
	value, _ = u.Get()
	assert.Equal(t, big.NewInt(1300), value, "failed sub leaves value untouched")

	maxU := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	require.NoError(t, u.Set(maxU))
	assert.True(t, reverts.IsRevertErr(u.Add(big.NewInt(1))))

	assert.True(t, reverts.IsRevertErr(u.Set(new(big.Int).Add(maxU, big.NewInt(1)))))
	assert.True(t, reverts.IsRevertErr(u.Set(big.NewInt(-1))))
}

func TestArray(t *testing.T) {
	ctx := newContext(t)
	arr := NewArray[thor.Address](ctx, thor.Bytes32{9})

	n, err := arr.Len()
	require.NoError(t, err)
	assert.Zero(t, n)

	addrs := datagen.RandAddresses(4)
	for i, a := range addrs {
		idx, err := arr.Push(a)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), idx)
	}

	got, err := arr.Get(3)
	require.NoError(t, err)
	assert.Equal(t, addrs[3], got)

	all, err := arr.All()
	require.NoError(t, err)
	assert.Equal(t, addrs, all)

	_, err = arr.Get(4)
	assert.True(t, errors.Is(err, reverts.ErrInvalidOperation))
}

const testEventsABI = `[
	{"type":"event","name":"Staked","anonymous":false,"inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"token","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}
	]}
]`

func TestEvent(t *testing.T) {
	ev := MustParseEvents(testEventsABI)["Staked"]
	require.NotNil(t, ev)
	assert.Equal(t, thor.Keccak256([]byte("Staked(address,address,uint256)")), ev.ID())

	account, token := datagen.RandAddress(), datagen.RandAddress()
	topics, data, err := ev.Encode(account, token, big.NewInt(5))
	require.NoError(t, err)
	require.Len(t, topics, 3)
	assert.Equal(t, thor.BytesToBytes32(account.Bytes()), topics[1])
	assert.Len(t, data, 32)

	decoded, err := ev.Decode(topics, data)
	require.NoError(t, err)
	assert.Equal(t, account, decoded["account"])
	assert.Equal(t, token, decoded["token"])
	assert.Equal(t, big.NewInt(5), decoded["amount"])

	_, _, err = ev.Encode(account)
	assert.Error(t, err)

	ctx := newContext(t)
	require.NoError(t, ctx.Emit(ev, account, token, big.NewInt(5)))
	events := ctx.State().Events()
	require.Len(t, events, 1)
	assert.Equal(t, ctx.Address(), events[0].Address)
	assert.Equal(t, topics, events[0].Topics)
}

func TestValue(t *testing.T) {
	ctx := newContext(t)
	name := NewValue[string](ctx, thor.Bytes32{4})
	decimals := NewValue[uint8](ctx, thor.Bytes32{5})

	got, err := name.Get()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, name.Set("Vianu Token"))
	require.NoError(t, decimals.Set(18))

	got, err = name.Get()
	require.NoError(t, err)
	assert.Equal(t, "Vianu Token", got)

	d, err := decimals.Get()
	require.NoError(t, err)
	assert.Equal(t, uint8(18), d)
}
