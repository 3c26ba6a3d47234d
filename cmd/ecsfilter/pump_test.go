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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/thediveo/ecsfilter"
	"golang.org/x/exp/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// batchRecorder records the batches it is asked to filter and passes them on
// unchanged, unless it has been told to fail.
type batchRecorder struct {
	tags  []string
	sizes []int
	err   error
}

func (b *batchRecorder) Filter(ctx context.Context, tag string, events []ecsfilter.Event) ([]ecsfilter.Event, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.tags = append(b.tags, tag)
	b.sizes = append(b.sizes, len(events))
	return events, nil
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// decodeLines decodes all JSON lines into lines.
func decodeLines(out *bytes.Buffer) []line {
	GinkgoHelper()
	var lines []line
	dec := json.NewDecoder(out)
	for {
		var l line
		err := dec.Decode(&l)
		if err == io.EOF {
			return lines
		}
		Expect(err).NotTo(HaveOccurred())
		lines = append(lines, l)
	}
}

var _ = Describe("pumping JSON lines", func() {

	It("batches consecutive lines by tag and size", func(ctx context.Context) {
		in := strings.NewReader(`{"tag":"a","record":{"log":"1"}}
{"tag":"a","record":{"log":"2"}}
{"tag":"a","record":{"log":"3"}}

{"tag":"b","record":{"log":"4"}}
{"tag":"a","record":{"log":"5"}}
`)
		var out bytes.Buffer
		b := &batchRecorder{}
		Expect(pump(ctx, b, in, &out, 2, discard)).To(Succeed())
		Expect(b.tags).To(Equal([]string{"a", "a", "b", "a"}))
		Expect(b.sizes).To(Equal([]int{2, 1, 1, 1}))

		lines := decodeLines(&out)
		Expect(lines).To(HaveLen(5))
		for i, l := range lines {
			Expect(l.Record).To(HaveKeyWithValue("log", string(rune('1'+i))))
		}
	})

	It("skips malformed lines", func(ctx context.Context) {
		in := strings.NewReader(`{"tag":"a","record":{"log":"1"}}
this is not JSON
{"tag":"a","record":{"count":42}}
`)
		var out bytes.Buffer
		b := &batchRecorder{}
		Expect(pump(ctx, b, in, &out, 100, discard)).To(Succeed())
		Expect(b.sizes).To(Equal([]int{2}))
		Expect(out.String()).To(ContainSubstring(`"count":42`))
	})

	It("stops on failed batches", func(ctx context.Context) {
		doh := errors.New("doh!")
		var out bytes.Buffer
		err := pump(ctx, &batchRecorder{err: doh},
			strings.NewReader(`{"tag":"a","record":{}}`), &out, 100, discard)
		Expect(err).To(MatchError(doh))
		Expect(err).To(MatchError(ContainSubstring("tag 'a'")))
		Expect(out.Len()).To(BeZero())
	})

	It("stops when cancelled", func(ctx context.Context) {
		ctx, cancel := context.WithCancel(ctx)
		cancel()
		var out bytes.Buffer
		Expect(pump(ctx, &batchRecorder{},
			strings.NewReader(`{"tag":"a","record":{}}`), &out, 100, discard)).To(MatchError(context.Canceled))
	})

})
