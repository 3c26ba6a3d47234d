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
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/thediveo/ecsfilter"
	"github.com/thediveo/ecsfilter/engineclient"
	"github.com/thediveo/ecsfilter/metacache"
	"golang.org/x/exp/slog"
)

// Enricher enriches batches of log records with the ECS task metadata of the
// containers that emitted them. Enrichers are safe for concurrent use; only
// the task metadata cache is shared between concurrent Filter calls.
type Enricher struct {
	engine     engineclient.EngineClient
	resolver   *Resolver
	extractor  Extractor
	merger     ecsfilter.Merger
	cache      *metacache.Cache[ecsfilter.TaskMetadata]
	skipFailed bool
	log        *slog.Logger
	metrics    *enricherMetrics
}

// New returns a new Enricher looking up container labels using the specified
// container engine client. The Enricher takes ownership of the engine client
// and closes it when the Enricher gets closed.
func New(engine engineclient.EngineClient, opts ...Option) (*Enricher, error) {
	o := options{
		cacheSize: DefaultCacheSize,
		cacheTTL:  DefaultCacheTTL,
		merger:    ecsfilter.NewMerger(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&o)
	}
	e := &Enricher{
		engine:     engine,
		resolver:   NewResolver(engine, o.familyPrefix),
		extractor:  Extractor{Field: o.idField},
		merger:     o.merger,
		skipFailed: o.skipFailed,
		log:        o.logger.With(slog.String("engine", engine.Type())),
	}
	cacheOpts := []metacache.Option{
		metacache.WithEvictionCallback(func(id string) {
			e.log.Debug("dropped cached task metadata", slog.String("container", id))
		}),
	}
	if o.registerer != nil {
		cacheOpts = append(cacheOpts, metacache.WithMetrics(o.registerer, CacheName))
		m, err := newEnricherMetrics(o.registerer)
		if err != nil {
			return nil, errors.Wrap(err, "cannot register enricher metrics")
		}
		e.metrics = m
	}
	cache, err := metacache.New[ecsfilter.TaskMetadata](
		o.cacheSize, o.cacheTTL, append(cacheOpts, o.cacheOpts...)...)
	if err != nil {
		if o.registerer != nil {
			e.metrics.unregister(o.registerer)
		}
		return nil, err
	}
	e.cache = cache
	return e, nil
}

// Type returns the type identifier of the underlying container engine.
func (e *Enricher) Type() string { return e.engine.Type() }

// API returns the API path of the underlying container engine.
func (e *Enricher) API() string { return e.engine.API() }

// Ping checks that the underlying container engine is responding.
func (e *Enricher) Ping(ctx context.Context) error { return e.engine.Ping(ctx) }

// CacheLen returns the number of currently cached task metadata entries,
// including expired entries that haven't been accessed since.
func (e *Enricher) CacheLen() int { return e.cache.Len() }

// Close drops all cached task metadata and closes the container engine client.
func (e *Enricher) Close() {
	e.cache.Purge()
	e.engine.Close()
}

// Filter returns the enriched records of the specified batch, in the same
// order. Records without a container ID get dropped. If resolving the task
// metadata of any container fails, Filter fails the whole batch, unless
// WithSkipFailedLookups has been specified, in which case only the records of
// that container get dropped.
func (e *Enricher) Filter(ctx context.Context, tag string, events []ecsfilter.Event) ([]ecsfilter.Event, error) {
	e.metrics.recordBatch()
	idOf := e.extractor.ForBatch(tag)
	enriched := make([]ecsfilter.Event, 0, len(events))
	for _, event := range events {
		id, ok := idOf(event.Record)
		if !ok {
			e.metrics.recordOutcome(OutcomeNoID)
			continue
		}
		md, err := e.cache.GetOrCompute(id, func() (ecsfilter.TaskMetadata, error) {
			md, err := e.resolver.Resolve(ctx, id)
			if err == nil {
				e.log.Debug("resolved task metadata",
					slog.String("container", id),
					slog.String("task", md.String()))
			}
			return md, err
		})
		if err != nil {
			e.metrics.recordOutcome(OutcomeLookupFailed)
			if !e.skipFailed {
				return nil, err
			}
			e.log.Warn("dropping record",
				slog.String("container", id),
				slog.String("tag", tag),
				slog.String("err", err.Error()))
			continue
		}
		enriched = append(enriched, ecsfilter.Event{
			Time:   event.Time,
			Record: e.merger.Merge(event.Record, md),
		})
		e.metrics.recordOutcome(OutcomeEmitted)
	}
	return enriched, nil
}
