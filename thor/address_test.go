// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"7567d83b7b8d80addcb281a71d54fc7b3364ffed", false},
		{"0X7567D83B7B8D80ADDCB281A71D54FC7B3364FFED", false},
		{"1x7567d83b7b8d80addcb281a71d54fc7b3364ffed", true},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ff", true},
		{"0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz", true},
	}
	for _, tt := range tests {
		addr, err := ParseAddress(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())
	}
}

func TestAddressJSON(t *testing.T) {
	type wrapper struct {
		Addr  Address   `json:"addr"`
		Addrs []Address `json:"addrs"`
	}
	addr := MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	data, err := json.Marshal(wrapper{Addr: addr, Addrs: []Address{addr}})
	require.NoError(t, err)
	assert.Equal(t,
		`{"addr":"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed","addrs":["0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"]}`,
		string(data))

	var decoded wrapper
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded.Addr)
	assert.Equal(t, []Address{addr}, decoded.Addrs)

	assert.Error(t, json.Unmarshal([]byte(`{"addr":"0x01"}`), &decoded))
}

func TestCreateContractAddress(t *testing.T) {
	deployer := MustParseAddress("0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0")
	assert.Equal(t, "0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d", CreateContractAddress(deployer, 0).String())
	for nonce := uint64(0); nonce < 8; nonce++ {
		want := crypto.CreateAddress(common.Address(deployer), nonce)
		assert.Equal(t, Address(want), CreateContractAddress(deployer, nonce))
	}

	assert.NotEqual(t, CreateContractAddress(deployer, 2), CreateContractAddress(deployer, 3))
}

func TestBytes32(t *testing.T) {
	b := Blake2b([]byte("farm"))
	parsed, err := ParseBytes32(b.String())
	require.NoError(t, err)
	assert.Equal(t, b, parsed)
	assert.False(t, b.IsZero())
	assert.True(t, Bytes32{}.IsZero())

	data, err := json.Marshal(b)
	require.NoError(t, err)
	var decoded Bytes32
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, b, decoded)

	_, err = ParseBytes32("0x1234")
	assert.Error(t, err)
}

func TestHashes(t *testing.T) {
	assert.Equal(t,
		"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		Keccak256().String())
	assert.Equal(t,
		"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		Keccak256([]byte("Transfer(address,address,uint256)")).String())
	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
}

func TestUnits(t *testing.T) {
	assert.Equal(t, "1000000000000000000000000000", InitialSupply.String())
	assert.Equal(t, "1000000000000000000000000", KeptAmount.String())
	assert.Equal(t, "2000000000000000000000", InitialPriceFeedValue.String())
	assert.Equal(t, Ether, Pow10(18))
}
