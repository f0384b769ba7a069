// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/health"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/test"
	"github.com/vechain/tokenfarm/test/testfarm"
	"github.com/vechain/tokenfarm/thor"
)

func run(t *testing.T, n *Node) (context.CancelFunc, chan error) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- n.Run(ctx)
	}()
	t.Cleanup(cancel)
	return cancel, done
}

func TestRunTracksCommits(t *testing.T) {
	f, err := testfarm.New()
	require.NoError(t, err)
	defer f.Close()

	h := &health.Health{}
	cancel, done := run(t, New(f.Ledger(), h, Options{}))

	require.Eventually(t, func() bool {
		return h.Status().Healthy
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(1), h.Status().LastCommit.Revision)

	_, err = f.Stake(f.Owner(), f.Token("fau_token"), thor.ToWei(1))
	require.NoError(t, err)

	// approve and stake
	assert.Eventually(t, func() bool {
		return h.Status().LastCommit.Revision == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("node did not stop")
	}
}

func TestRunStopsWithLedger(t *testing.T) {
	f, err := testfarm.New()
	require.NoError(t, err)
	defer f.Close()

	_, done := run(t, New(f.Ledger(), &health.Health{}, Options{}))

	// let the loop subscribe
	time.Sleep(50 * time.Millisecond)
	f.Ledger().Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("node did not stop")
	}
}

func TestRunReportsUnavailableFeeds(t *testing.T) {
	down := oracle.Func(func(_ context.Context, feed thor.Address) (*oracle.Price, error) {
		return nil, oracle.Unavailable(feed, errors.New("rpc down"))
	})
	f, err := testfarm.NewBuilder().WithFeeds(ledger.StaticFeeds(down)).Build()
	require.NoError(t, err)
	defer f.Close()

	h := &health.Health{}
	run(t, New(f.Ledger(), h, Options{FeedsCheckInterval: 20 * time.Millisecond}))

	var status *health.Status
	require.NoError(t, test.Retry(func() error {
		status = h.Status()
		if status.Feeds == nil {
			return errors.New("feeds not checked yet")
		}
		return nil
	}, 10*time.Millisecond, 2*time.Second))
	assert.False(t, status.Healthy)
	assert.Contains(t, status.Feeds.Error, "rpc down")
}
