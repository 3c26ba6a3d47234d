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

package containerd

import (
	"github.com/containerd/containerd"
	"github.com/thediveo/ecsfilter/enricher"
	cdengine "github.com/thediveo/ecsfilter/engineclient/containerd"
)

// Type ID of the container engine handled by this enricher.
const Type = cdengine.Type

// DefaultSocket is containerd's default API endpoint.
const DefaultSocket = "/run/containerd/containerd.sock"

// New returns an Enricher looking up the labels of containers from the
// containerd engine at the specified API endpoint. Plain container IDs are
// looked up in the specified containerd namespace.
//
// When the containerdsock parameter is left empty then containerd's default
// "/run/containerd/containerd.sock" applies. When the namespace is left empty,
// then Docker's "moby" namespace applies.
func New(containerdsock string, namespace string, opts ...enricher.Option) (*enricher.Enricher, error) {
	if containerdsock == "" {
		containerdsock = DefaultSocket
	}
	cdclient, err := containerd.New(containerdsock)
	if err != nil {
		return nil, err
	}
	engine := cdengine.NewContainerdClient(cdclient,
		cdengine.WithNamespace(namespace),
		cdengine.WithAPIPath(containerdsock))
	enr, err := enricher.New(engine, opts...)
	if err != nil {
		engine.Close()
		return nil, err
	}
	return enr, nil
}
