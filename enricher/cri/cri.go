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
	"github.com/thediveo/ecsfilter/enricher"
	engineclient "github.com/thediveo/ecsfilter/engineclient/cri"
)

// Type ID of the container engine handled by this enricher.
const Type = engineclient.Type

// DefaultSocket is the CRI API endpoint of containerd.
const DefaultSocket = "/run/containerd/containerd.sock"

// New returns an Enricher looking up the labels of containers from the CRI
// API-supporting engine at the specified API endpoint. When criapisock is left
// empty, containerd's CRI API endpoint is used.
func New(criapisock string, opts ...enricher.Option) (*enricher.Enricher, error) {
	if criapisock == "" {
		criapisock = DefaultSocket
	}
	criclient, err := engineclient.New(criapisock)
	if err != nil {
		return nil, err
	}
	engine := engineclient.NewCRIClient(criclient)
	enr, err := enricher.New(engine, opts...)
	if err != nil {
		engine.Close()
		return nil, err
	}
	return enr, nil
}
