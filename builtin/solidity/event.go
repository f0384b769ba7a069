// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/thor"
)

// Event is a contract event with its ABI definition.
type Event struct {
	abi.Event
}

// MustParseEvents parses the events of an ABI json document, keyed by name.
func MustParseEvents(abiJSON string) map[string]*Event {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(errors.Wrap(err, "parse abi"))
	}
	events := make(map[string]*Event, len(parsed.Events))
	for name, ev := range parsed.Events {
		events[name] = &Event{ev}
	}
	return events
}

// ID returns topics[0] of the event.
func (e *Event) ID() thor.Bytes32 {
	return thor.Bytes32(e.Event.ID)
}

// Encode packs args, given in declaration order, into topics and data.
// Addresses may be given as thor.Address.
func (e *Event) Encode(args ...any) ([]thor.Bytes32, []byte, error) {
	if len(args) != len(e.Inputs) {
		return nil, nil, fmt.Errorf("event %s: want %d args, got %d", e.Name, len(e.Inputs), len(args))
	}
	topics := []thor.Bytes32{e.ID()}
	var values []any
	for i, input := range e.Inputs {
		arg := args[i]
		if addr, ok := arg.(thor.Address); ok {
			arg = common.Address(addr)
		}
		if !input.Indexed {
			values = append(values, arg)
			continue
		}
		hashes, err := abi.MakeTopics([]any{arg})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "event %s: topic %s", e.Name, input.Name)
		}
		topics = append(topics, thor.Bytes32(hashes[0][0]))
	}
	data, err := e.Inputs.NonIndexed().Pack(values...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "event %s: pack", e.Name)
	}
	return topics, data, nil
}

// Decode unpacks topics and data into named fields.
func (e *Event) Decode(topics []thor.Bytes32, data []byte) (map[string]any, error) {
	if len(topics) == 0 || topics[0] != e.ID() {
		return nil, errors.New("topic mismatch")
	}
	out := make(map[string]any, len(e.Inputs))
	if len(data) > 0 {
		if err := e.Inputs.NonIndexed().UnpackIntoMap(out, data); err != nil {
			return nil, err
		}
	}
	var indexed abi.Arguments
	for _, input := range e.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	hashes := make([]common.Hash, 0, len(topics)-1)
	for _, t := range topics[1:] {
		hashes = append(hashes, common.Hash(t))
	}
	if err := abi.ParseTopicsIntoMap(out, indexed, hashes); err != nil {
		return nil, err
	}
	for k, v := range out {
		if addr, ok := v.(common.Address); ok {
			out[k] = thor.Address(addr)
		}
	}
	return out, nil
}
