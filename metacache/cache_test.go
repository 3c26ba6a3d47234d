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
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gleak"
	. "github.com/thediveo/success"
)

// counted returns a compute function returning the specified value, counting
// how often it has been called.
func counted(calls *int32, value string) func() (string, error) {
	return func() (string, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

var _ = Describe("metadata cache", func() {

	BeforeEach(func() {
		goodgos := Goroutines()
		DeferCleanup(func() {
			Eventually(Goroutines).ShouldNot(HaveLeaked(goodgos))
		})
	})

	It("rejects invalid sizes", func() {
		Expect(New[string](0, 0)).Error().To(MatchError(ContainSubstring("invalid cache size")))
		Expect(New[string](-1, time.Hour)).Error().To(HaveOccurred())
	})

	It("computes only on misses", func() {
		c := Successful(New[string](10, time.Hour))
		var calls int32
		for i := 0; i < 1000; i++ {
			Expect(c.GetOrCompute("foobar123", counted(&calls, "unifi-video"))).To(Equal("unifi-video"))
		}
		Expect(calls).To(Equal(int32(1)))
		Expect(c.Len()).To(Equal(1))
	})

	It("passes on compute errors without caching", func() {
		c := Successful(New[string](10, time.Hour))
		doh := errors.New("doh!")
		Expect(c.GetOrCompute("foo", func() (string, error) { return "", doh })).Error().
			To(MatchError(doh))
		Expect(c.Len()).To(BeZero())

		var calls int32
		Expect(c.GetOrCompute("foo", counted(&calls, "bar"))).To(Equal("bar"))
		Expect(calls).To(Equal(int32(1)))
	})

	When("time travelling", func() {

		var now time.Time
		clock := func() time.Time { return now }

		BeforeEach(func() {
			now = time.Date(2015, 10, 21, 16, 29, 0, 0, time.UTC)
		})

		It("expires entries after their time-to-live", func() {
			c := Successful(New[string](10, 300*time.Second, WithClock(clock)))
			var calls int32
			Expect(c.GetOrCompute("foo", counted(&calls, "bar"))).To(Equal("bar"))
			now = now.Add(299 * time.Second)
			Expect(c.GetOrCompute("foo", counted(&calls, "bar"))).To(Equal("bar"))
			Expect(calls).To(Equal(int32(1)))

			now = now.Add(10 * time.Minute)
			Expect(c.GetOrCompute("foo", counted(&calls, "baz"))).To(Equal("baz"))
			Expect(calls).To(Equal(int32(2)))
		})

		It("doesn't prolong the time-to-live on use", func() {
			c := Successful(New[string](10, 300*time.Second, WithClock(clock)))
			var calls int32
			for i := 0; i < 4; i++ {
				Expect(c.GetOrCompute("foo", counted(&calls, "bar"))).To(Equal("bar"))
				now = now.Add(150 * time.Second)
			}
			Expect(calls).To(Equal(int32(2)))
		})

		It("never expires without time-to-live", func() {
			for _, ttl := range []time.Duration{0, -1} {
				c := Successful(New[string](10, ttl, WithClock(clock)))
				var calls int32
				Expect(c.GetOrCompute("foo", counted(&calls, "bar"))).To(Equal("bar"))
				now = now.Add(100 * 365 * 24 * time.Hour)
				Expect(c.GetOrCompute("foo", counted(&calls, "bar"))).To(Equal("bar"))
				Expect(calls).To(Equal(int32(1)))
			}
		})

		It("reports expired entries", func() {
			var evicted []string
			c := Successful(New[string](10, time.Minute,
				WithClock(clock),
				WithEvictionCallback(func(key string) { evicted = append(evicted, key) })))
			var calls int32
			Expect(c.GetOrCompute("foo", counted(&calls, "bar"))).To(Equal("bar"))
			now = now.Add(2 * time.Minute)
			Expect(c.Len()).To(Equal(1))
			Expect(c.GetOrCompute("foo", counted(&calls, "bar"))).To(Equal("bar"))
			Expect(evicted).To(ConsistOf("foo"))
		})

	})

	It("evicts the least recently used entries", func() {
		var evicted []string
		c := Successful(New[string](2, 0,
			WithEvictionCallback(func(key string) { evicted = append(evicted, key) })))
		var calls int32
		Expect(c.GetOrCompute("a", counted(&calls, "A"))).To(Equal("A"))
		Expect(c.GetOrCompute("b", counted(&calls, "B"))).To(Equal("B"))
		// make "a" the most recently used one, so "b" is next to go.
		Expect(c.GetOrCompute("a", counted(&calls, "A"))).To(Equal("A"))
		Expect(c.GetOrCompute("c", counted(&calls, "C"))).To(Equal("C"))
		Expect(evicted).To(ConsistOf("b"))
		Expect(c.Len()).To(Equal(2))
		Expect(calls).To(Equal(int32(3)))

		Expect(c.GetOrCompute("a", counted(&calls, "A"))).To(Equal("A"))
		Expect(calls).To(Equal(int32(3)))
		Expect(c.GetOrCompute("b", counted(&calls, "B"))).To(Equal("B"))
		Expect(calls).To(Equal(int32(4)))
		Expect(evicted).To(ConsistOf("b", "c"))
	})

	It("purges", func() {
		c := Successful(New[string](10, 0))
		var calls int32
		Expect(c.GetOrCompute("a", counted(&calls, "A"))).To(Equal("A"))
		c.Purge()
		Expect(c.Len()).To(BeZero())
		Expect(c.GetOrCompute("a", counted(&calls, "A"))).To(Equal("A"))
		Expect(calls).To(Equal(int32(2)))
	})

	It("computes each key only once under concurrent load", func() {
		c := Successful(New[string](100, time.Hour))
		var calls int32
		var inflight int32
		gate := make(chan struct{})
		compute := func() (string, error) {
			Expect(atomic.AddInt32(&inflight, 1)).To(Equal(int32(1)))
			defer atomic.AddInt32(&inflight, -1)
			atomic.AddInt32(&calls, 1)
			<-gate
			return "bar", nil
		}
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				Expect(c.GetOrCompute("foo", compute)).To(Equal("bar"))
			}()
		}
		Eventually(func() int32 { return atomic.LoadInt32(&calls) }).Should(Equal(int32(1)))
		close(gate)
		wg.Wait()
		Expect(calls).To(Equal(int32(1)))
	})

	It("computes different keys in parallel", func() {
		c := Successful(New[string](100, time.Hour))
		bComputing := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			Expect(c.GetOrCompute("a", func() (string, error) {
				<-bComputing // would deadlock if "b" had to wait for us.
				return "A", nil
			})).To(Equal("A"))
		}()
		Expect(c.GetOrCompute("b", func() (string, error) {
			close(bComputing)
			return "B", nil
		})).To(Equal("B"))
		Eventually(done).Should(BeClosed())
	})

	It("computes on its own after a joined computation failed", func() {
		c := Successful(New[string](10, 0))
		computing := make(chan struct{})
		fail := make(chan struct{})
		failed := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(failed)
			Expect(c.GetOrCompute("a", func() (string, error) {
				close(computing)
				<-fail
				return "", errors.New("context canceled")
			})).Error().To(HaveOccurred())
		}()
		Eventually(computing).Should(BeClosed())

		joined := make(chan struct{})
		var value string
		var err error
		go func() {
			defer close(joined)
			value, err = c.GetOrCompute("a", func() (string, error) { return "A", nil })
		}()
		Consistently(joined, "100ms").ShouldNot(BeClosed())
		close(fail)
		Eventually(failed).Should(BeClosed())
		Eventually(joined).Should(BeClosed())
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("A"))
		Expect(c.Len()).To(Equal(1))
	})

	It("doesn't cache values computed across a purge", func() {
		c := Successful(New[string](10, 0))
		computing := make(chan struct{})
		release := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			Expect(c.GetOrCompute("a", func() (string, error) {
				close(computing)
				<-release
				return "A", nil
			})).To(Equal("A"))
		}()
		Eventually(computing).Should(BeClosed())
		c.Purge()
		close(release)
		Eventually(done).Should(BeClosed())
		Expect(c.Len()).To(BeZero())

		var calls int32
		Expect(c.GetOrCompute("a", counted(&calls, "A"))).To(Equal("A"))
		Expect(calls).To(Equal(int32(1)))
		Expect(c.Len()).To(Equal(1))
	})

	It("rolls back partially registered metrics", func() {
		reg := prometheus.NewPedanticRegistry()
		clash := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ecsfilter",
			Subsystem:   "cache",
			Name:        "size",
			ConstLabels: prometheus.Labels{"cache": "test"},
			Help:        "Current number of cache entries.",
		})
		Expect(reg.Register(clash)).To(Succeed())
		Expect(New[string](1, 0, WithMetrics(reg, "test"))).Error().To(HaveOccurred())

		Expect(reg.Unregister(clash)).To(BeTrue())
		c := Successful(New[string](1, 0, WithMetrics(reg, "test")))
		Expect(c.opts.metrics).NotTo(BeNil())
	})

	It("maintains metrics", func() {
		reg := prometheus.NewPedanticRegistry()
		c := Successful(New[string](1, 0, WithMetrics(reg, "test")))
		var calls int32
		for i := 0; i < 3; i++ {
			Expect(c.GetOrCompute("a", counted(&calls, "A"))).To(Equal("A"))
		}
		Expect(c.GetOrCompute("b", counted(&calls, "B"))).To(Equal("B"))

		m := c.opts.metrics
		Expect(testutil.ToFloat64(m.hits)).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.misses)).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.evictions)).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.size)).To(Equal(1.0))
		Expect(testutil.GatherAndCount(reg,
			"ecsfilter_cache_hits_total", "ecsfilter_cache_size")).To(Equal(2))

		Expect(New[string](1, 0, WithMetrics(reg, "test"))).Error().
			To(MatchError(ContainSubstring("cannot register cache metrics")))
	})

	It("works without metrics", func() {
		c := Successful(New[string](1, 0, WithMetrics(nil, "")))
		Expect(c.opts.metrics).To(BeNil())
		Expect(c.GetOrCompute("a", func() (string, error) { return fmt.Sprint(42), nil })).
			To(Equal("42"))
	})

})
