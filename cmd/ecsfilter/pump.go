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

package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/thediveo/ecsfilter"
	"golang.org/x/exp/slog"
)

// maxLineSize is the maximum size of a single input JSON line.
const maxLineSize = 1024 * 1024

// line is a single tagged log event in JSON lines format.
type line struct {
	Tag    string           `json:"tag"`
	Time   time.Time        `json:"time"`
	Record ecsfilter.Record `json:"record"`
}

// filterer filters batches of log events belonging to the same stream tag.
type filterer interface {
	Filter(ctx context.Context, tag string, events []ecsfilter.Event) ([]ecsfilter.Event, error)
}

// pump reads tagged log events as JSON lines from r, groups consecutive events
// with the same tag into batches of at most batchSize events, filters them,
// and writes the resulting events as JSON lines to w. Malformed input lines
// are skipped. pump returns when the input is exhausted, the context gets
// cancelled, or filtering a batch fails.
func pump(ctx context.Context, f filterer, r io.Reader, w io.Writer, batchSize int, log *slog.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	var tag string
	batch := make([]ecsfilter.Event, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		events, err := f.Filter(ctx, tag, batch)
		if err != nil {
			return errors.Wrapf(err, "cannot filter batch with tag '%s'", tag)
		}
		for _, event := range events {
			if err := enc.Encode(line{Tag: tag, Time: event.Time, Record: event.Record}); err != nil {
				return errors.Wrap(err, "cannot write record")
			}
		}
		log.Debug("filtered batch",
			slog.String("tag", tag),
			slog.Int("in", len(batch)),
			slog.Int("out", len(events)))
		batch = batch[:0]
		return bw.Flush()
	}

	lineno := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		lineno++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var l line
		dec := json.NewDecoder(bytes.NewReader(text))
		dec.UseNumber()
		if err := dec.Decode(&l); err != nil {
			log.Warn("skipping malformed line",
				slog.Int("line", lineno),
				slog.String("err", err.Error()))
			continue
		}
		if l.Tag != tag || len(batch) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
			tag = l.Tag
		}
		batch = append(batch, ecsfilter.Event{Time: l.Time, Record: l.Record})
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "cannot read input")
	}
	return flush()
}
