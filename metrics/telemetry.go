// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"
)

// metrics is the process wide sink. It stays a no-op until InitializePrometheusMetrics.
var metrics = defaultNoopMetrics()

// Metrics creates meters by name. Asking twice for a name returns the same meter.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter
	GetOrCreateHistogramMeter(name string, buckets []int64) HistogramMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateHandler() http.Handler
}

// HTTPHandler serves the collected metrics, nil while disabled.
func HTTPHandler() http.Handler {
	return metrics.GetOrCreateHandler()
}

// NoOp reports whether metrics are disabled.
func NoOp() bool {
	_, ok := metrics.(*noopMetrics)
	return ok
}

// Histogram buckets, in milliseconds unless noted.
var (
	// BucketHTTPReqs covers API handlers, price views wait on the oracle.
	BucketHTTPReqs = []int64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500, 1000, 2000, 5000, 10_000}
	// BucketOperation covers a ledger mutation, from state read to commit.
	BucketOperation = []int64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000}
	// BucketOracle covers one feed read, bounded by the oracle timeout.
	BucketOracle = []int64{0, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10_000}
	// BucketQuery covers an event history query.
	BucketQuery = []int64{0, 1, 5, 10, 50, 100, 500, 1000, 3000, 10_000}
)

// HistogramMeter buckets observed values.
type HistogramMeter interface {
	Observe(int64)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return metrics.GetOrCreateHistogramMeter(name, buckets)
}

// HistogramVecMeter is a HistogramMeter partitioned by labels.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return metrics.GetOrCreateHistogramVecMeter(name, labels, buckets)
}

// CountMeter only grows, it restarts at zero with the process.
type CountMeter interface {
	Add(int64)
}

func Counter(name string) CountMeter { return metrics.GetOrCreateCountMeter(name) }

// CountVecMeter is a CountMeter partitioned by labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

func CounterVec(name string, labels []string) CountVecMeter {
	return metrics.GetOrCreateCountVecMeter(name, labels)
}

// GaugeMeter holds a value that goes up and down, e.g. the latest revision.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

func Gauge(name string) GaugeMeter {
	return metrics.GetOrCreateGaugeMeter(name)
}

// GaugeVecMeter is a GaugeMeter partitioned by labels.
type GaugeVecMeter interface {
	AddWithLabel(int64, map[string]string)
	SetWithLabel(int64, map[string]string)
}

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return metrics.GetOrCreateGaugeVecMeter(name, labels)
}

// LazyLoad defers creating a meter to its first use. Packages declare their meters as
// vars at init, before the command line decides between no-op and prometheus.
func LazyLoad[T any](f func() T) func() T {
	var (
		once  sync.Once
		meter T
	)
	return func() T {
		once.Do(func() { meter = f() })
		return meter
	}
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter { return Histogram(name, buckets) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter { return GaugeVec(name, labels) })
}
