// Copyright (c) 2026 The batchmint developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics provides global access to a set of meters.
// It wraps multiple implementations and defaults to a no-op one, so
// instrumented packages carry no cost unless a backend is enabled.
package metrics

import (
	"net/http"
	"sync"
)

var metrics Metrics = noopMetrics{}

// Metrics defines the interface for metrics service implementations.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateHandler() http.Handler
}

// CountMeter is a cumulative metric that represents a single
// monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

// GaugeMeter is a metric representing a value that can go up and down.
type GaugeMeter interface {
	Set(int64)
}

// Counter returns the counter registered under name.
func Counter(name string) CountMeter { return metrics.GetOrCreateCountMeter(name) }

// Gauge returns the gauge registered under name.
func Gauge(name string) GaugeMeter { return metrics.GetOrCreateGaugeMeter(name) }

// HTTPHandler returns the http handler for retrieving metrics.
func HTTPHandler() http.Handler { return metrics.GetOrCreateHandler() }

// LazyLoad defers the instantiation of a meter, so meters can be
// declared as package vars before the backend is selected.
func LazyLoad[T any](f func() T) func() T {
	var result T
	var once sync.Once
	return func() T {
		once.Do(func() {
			result = f()
		})
		return result
	}
}

// LazyLoadCounter is the deferred counterpart of Counter.
func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter {
		return Counter(name)
	})
}

// LazyLoadGauge is the deferred counterpart of Gauge.
func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter {
		return Gauge(name)
	})
}

type noopMetrics struct{}

type noopMeter struct{}

func (noopMeter) Add(int64) {}
func (noopMeter) Set(int64) {}

func (noopMetrics) GetOrCreateCountMeter(string) CountMeter { return noopMeter{} }
func (noopMetrics) GetOrCreateGaugeMeter(string) GaugeMeter { return noopMeter{} }
func (noopMetrics) GetOrCreateHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})
}
