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
	"errors"

	"github.com/thediveo/ecsfilter/engineclient/moby"
	"github.com/thediveo/ecsfilter/test/mockingmoby"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("resolver", func() {

	var mm *mockingmoby.MockingMoby
	var r *Resolver

	BeforeEach(func() {
		mm = mockingmoby.NewMockingMoby()
		mm.AddContainer(mockingmoby.NewECSContainer("42", "ecs-app", "app", "7",
			"arn:aws:ecs:eu-central-1:123456789012:task/cafe"))
		mm.AddContainer(mockingmoby.NewECSContainer("43", "ecs-noarn", "app", "", ""))
		r = NewResolver(moby.NewMobyClient(mm), "prod-")
	})

	It("resolves task metadata", func(ctx context.Context) {
		md := Successful(r.Resolve(ctx, "42"))
		Expect(md.Family).To(Equal("prod-app"))
		Expect(md.Version).To(Equal("7"))
		Expect(md.ID).To(Equal("cafe"))

		md = Successful(r.Resolve(ctx, "43"))
		Expect(md.Family).To(Equal("prod-app"))
		Expect(md.Version).To(BeEmpty())
		Expect(md.ID).To(BeEmpty())
	})

	It("resolves unknown containers to empty task metadata", func(ctx context.Context) {
		Expect(r.Resolve(ctx, "nada")).To(BeZero())
		Expect(mm.Inspections()).To(Equal(1))
	})

	It("returns engine failures", func(ctx context.Context) {
		doh := errors.New("doh!")
		_, err := r.Resolve(mockingmoby.WithHook(ctx, mockingmoby.ContainerInspectPost,
			func(mockingmoby.HookKey) error { return doh }), "42")
		Expect(err).To(MatchError(doh))
		Expect(err).To(MatchError(ContainSubstring("container '42'")))
	})

})
