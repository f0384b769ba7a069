// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Bytes32 is a 32 byte word: a hash, a storage slot or an event topic.
type Bytes32 [32]byte

var (
	_ json.Marshaler   = (*Bytes32)(nil)
	_ json.Unmarshaler = (*Bytes32)(nil)
)

// String implements stringer
func (b Bytes32) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

// Bytes returns byte slice form of Bytes32.
func (b Bytes32) Bytes() []byte {
	return b[:]
}

// IsZero returns if Bytes32 has all zero bytes.
func (b Bytes32) IsZero() bool {
	return b == Bytes32{}
}

// MarshalJSON implements json.Marshaler.
func (b Bytes32) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bytes32) UnmarshalJSON(data []byte) error {
	var hex string
	if err := json.Unmarshal(data, &hex); err != nil {
		return err
	}
	parsed, err := ParseBytes32(hex)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// ParseBytes32 parses 64 hex digits, optionally 0x prefixed.
func ParseBytes32(s string) (Bytes32, error) {
	var b Bytes32
	if err := decodeFixedHex(b[:], s); err != nil {
		return Bytes32{}, err
	}
	return b, nil
}

// BytesToBytes32 left pads b to 32 bytes, or keeps its last 32 bytes when longer.
func BytesToBytes32(b []byte) Bytes32 {
	return Bytes32(common.BytesToHash(b))
}

// decodeFixedHex fills dst from s, which must hold exactly len(dst) bytes in hex.
func decodeFixedHex(dst []byte, s string) error {
	if len(s) == len(dst)*2+2 {
		if !strings.EqualFold(s[:2], "0x") {
			return errors.New("invalid prefix")
		}
		s = s[2:]
	}
	if len(s) != len(dst)*2 {
		return errors.New("invalid length")
	}
	_, err := hex.Decode(dst, []byte(s))
	return err
}
