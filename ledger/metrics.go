// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/vechain/tokenfarm/metrics"

var (
	metricOperations        = metrics.LazyLoadCounterVec("ledger_operations_count", []string{"op", "status"})
	metricOperationDuration = metrics.LazyLoadHistogramVec("ledger_operation_duration_ms", []string{"op"}, metrics.BucketOperation)
	metricRevision          = metrics.LazyLoadGauge("ledger_revision")
	metricRewardsIssued     = metrics.LazyLoadCounter("ledger_rewards_issued_count")
)
