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

package cri

import (
	"context"
	"os"
	"path/filepath"

	"github.com/thediveo/ecsfilter"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/ecsfilter/test/matcher"
	. "github.com/thediveo/success"
)

var _ = Describe("CRI enricher", func() {

	It("fails for non-existing endpoints", func() {
		Expect(New(filepath.Join(GinkgoT().TempDir(), "nada.sock"))).Error().To(HaveOccurred())
	})

	It("passes records of unknown containers", func(ctx context.Context) {
		if os.Getuid() != 0 {
			Skip("needs root")
		}
		if _, err := os.Stat(DefaultSocket); err != nil {
			Skip("needs CRI endpoint at " + DefaultSocket)
		}

		enr := Successful(New(""))
		defer enr.Close()
		Expect(enr.Type()).To(Equal(Type))
		Expect(enr.Ping(ctx)).To(Succeed())

		Expect(enr.Filter(ctx, "this-container-does-not-exist", []ecsfilter.Event{
			{Record: ecsfilter.Record{"log": "hellorld"}},
		})).To(ConsistOf(HaveNoTaskMetadata()))
	})

})
