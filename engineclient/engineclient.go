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

package engineclient

import (
	"context"

	"github.com/pkg/errors"
)

// EngineClient defines the generic methods needed in order to look up the
// labels of containers, regardless of the specific type of engine.
type EngineClient interface {
	// Labels returns the labels of the container with the specified name or
	// ID. If the container engine doesn't know about such a container, then
	// the error returned satisfies IsNoSuchContainer.
	Labels(ctx context.Context, nameorid string) (map[string]string, error)
	// Ping checks that the container engine is reachable and responding.
	Ping(ctx context.Context) error

	// Identifier of the type of container engine, such as "docker.com",
	// "containerd.io", et cetera.
	Type() string
	// Container engine API path.
	API() string

	// Clean up and release any engine client resources, if necessary.
	Close()
}

// ErrNoSuchContainer signals that a container engine does not know about a
// particular container.
var ErrNoSuchContainer = errors.New("no such container")

// NoSuchContainer returns an error for an unknown container with the specified
// name or ID that satisfies IsNoSuchContainer.
func NoSuchContainer(nameorid string) error {
	return errors.Wrapf(ErrNoSuchContainer, "container '%s'", nameorid)
}

// IsNoSuchContainer returns true if the error signals an unknown container.
func IsNoSuchContainer(err error) bool {
	return errors.Is(err, ErrNoSuchContainer)
}
