// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/vechain/tokenfarm/metrics"
)

var (
	metricQueryDuration        = metrics.LazyLoadHistogram("logdb_query_duration_ms", metrics.BucketQuery)
	metricCriteriaLengthBucket = metrics.LazyLoadHistogramVec("logdb_criteria_length_bucket", []string{"type"}, []int64{0, 2, 5, 10, 25, 100, 1000})
	metricEventQueryParameters = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order"})
	metricOffsetBucket         = metrics.LazyLoadHistogram("logdb_query_offset_bucket", []int64{
		0, 1_000, 5_000, 10_000, 25_000, 50_000, 100_000, 250_000, 500_000, 1_000_000,
	})
	metricLimitBucket = metrics.LazyLoadHistogram("logdb_query_limit_bucket", []int64{
		0, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)

func metricsHandleEventsFilter(filter *EventFilter) {
	if metrics.NoOp() {
		return
	}

	metricCriteriaLengthBucket().ObserveWithLabels(int64(len(filter.CriteriaSet)), map[string]string{"type": "event"})
	if filter.Order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc"})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc"})
	}
	metricOffsetBucket().Observe(int64(min(filter.Options.Offset, 1_000_001)))
	metricLimitBucket().Observe(int64(filter.Options.Limit))

	for _, c := range filter.CriteriaSet {
		paramsUsed := make([]string, 0)
		if c.Address != nil {
			paramsUsed = append(paramsUsed, "address")
		}
		if c.Caller != nil {
			paramsUsed = append(paramsUsed, "caller")
		}
		for i, topic := range c.Topics {
			if topic != nil {
				paramsUsed = append(paramsUsed, "topic"+string(rune('0'+i)))
			}
		}
		metricEventQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})
	}
}
