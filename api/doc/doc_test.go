// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package doc

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	// ensure the version loaded from the yaml file meets the semver format, eg. 1.2.3
	validVersion := regexp.MustCompile(`^\d+(\.\d+){2}$`)

	assert.True(t, validVersion.Match([]byte(Version())))
}

func TestOperationIDs(t *testing.T) {
	oai, err := load()
	require.NoError(t, err)

	seen := make(map[string]bool)
	for path, ops := range oai.Paths {
		for method, op := range ops {
			assert.NotEmpty(t, op.OperationID, "%s %s", method, path)
			assert.False(t, seen[op.OperationID], "duplicated %s", op.OperationID)
			seen[op.OperationID] = true
		}
	}
	assert.True(t, seen["farm_stake"])
	assert.True(t, seen["subscriptions_subscribe"])
}
