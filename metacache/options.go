// Copyright 2024 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metacache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Cache when creating it using New.
type Option func(*options)

type options struct {
	now        func() time.Time      // clock, for time travel in tests.
	evictFn    func(key string)      // optional eviction/expiration callback.
	registerer prometheus.Registerer // optional metrics registry.
	name       string                // value of the "cache" metrics label.
	metrics    *cacheMetrics         // nil if not registered.
}

// WithClock sets the function returning the current time, defaulting to
// time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEvictionCallback sets a function that gets called with the key of each
// entry that gets evicted or has expired. The callback is never called while
// holding the cache lock, so it may call into the cache.
func WithEvictionCallback(fn func(key string)) Option {
	return func(o *options) {
		o.evictFn = fn
	}
}

// WithMetrics registers the cache's Prometheus metrics with the specified
// registerer; the metrics are labelled with cache="name". A nil registerer
// leaves metrics disabled.
func WithMetrics(registerer prometheus.Registerer, name string) Option {
	return func(o *options) {
		o.registerer = registerer
		o.name = name
	}
}
