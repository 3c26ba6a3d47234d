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

package enricher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thediveo/ecsfilter"
	"github.com/thediveo/ecsfilter/metacache"
	"golang.org/x/exp/slog"
)

// Defaults of the metadata cache.
const (
	DefaultCacheSize = 1000
	DefaultCacheTTL  = time.Hour
)

// CacheName is the value of the "cache" label of the task metadata cache
// metrics.
const CacheName = "taskmetadata"

// Option configures an Enricher when creating it using New.
type Option func(*options)

type options struct {
	cacheSize    int
	cacheTTL     time.Duration
	cacheOpts    []metacache.Option
	idField      string
	familyPrefix string
	merger       ecsfilter.Merger
	skipFailed   bool
	logger       *slog.Logger
	registerer   prometheus.Registerer
}

// WithCacheSize sets the maximum number of cached task metadata entries,
// defaulting to DefaultCacheSize.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithCacheTTL sets the time-to-live of cached task metadata, defaulting to
// DefaultCacheTTL. A TTL of zero or less never expires cached task metadata.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = ttl
	}
}

// WithCacheOptions passes additional options to the task metadata cache, such
// as a clock for time travel in tests.
func WithCacheOptions(opts ...metacache.Option) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, opts...)
	}
}

// WithIDField switches from taking container IDs from stream tags to taking
// them from the record field at the specified dotted path, such as
// "docker.id". An empty path switches back to stream tags.
func WithIDField(path string) Option {
	return func(o *options) {
		o.idField = path
	}
}

// WithTaskFamilyPrefix sets a prefix to prepend to task families.
func WithTaskFamilyPrefix(prefix string) Option {
	return func(o *options) {
		o.familyPrefix = prefix
	}
}

// WithJSONLogMerge enables or disables merging JSON objects found in the log
// field of records; it is enabled by default.
func WithJSONLogMerge(enable bool) Option {
	return func(o *options) {
		o.merger.JSONLog = enable
	}
}

// WithJSONLogField sets the name of the record field that might contain JSON
// objects to merge.
func WithJSONLogField(name string) Option {
	return func(o *options) {
		if name != "" {
			o.merger.JSONLogField = name
		}
	}
}

// WithNamespaceField sets the name of the record field naming the field JSON
// logs get nested under.
func WithNamespaceField(name string) Option {
	return func(o *options) {
		if name != "" {
			o.merger.NamespaceField = name
		}
	}
}

// WithSkipFailedLookups drops only those records whose task metadata cannot be
// resolved due to container engine failures, instead of failing the whole
// batch.
func WithSkipFailedLookups(skip bool) Option {
	return func(o *options) {
		o.skipFailed = skip
	}
}

// WithLogger sets the logger for diagnostic messages; by default, diagnostic
// messages are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegisterer registers the enricher and cache metrics with the specified
// Prometheus registerer.
func WithRegisterer(registerer prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = registerer
	}
}
