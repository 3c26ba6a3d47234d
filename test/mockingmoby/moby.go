// Copyright 2021 Harald Albrecht.
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

package mockingmoby

import (
	"context"
	"sync"
	"sync/atomic"
)

// MockingMoby is a mock Docker client implementing only inspecting containers
// (limited information only) and pinging the mocked daemon.
type MockingMoby struct {
	mux        sync.RWMutex
	containers map[string]MockedContainer // mocked containers by ID
	names      map[string]string          // maps names to IDs

	inspections atomic.Int64 // number of container inspections so far
}

// NewMockingMoby returns a new instance of a mock Docker client.
func NewMockingMoby() *MockingMoby {
	return &MockingMoby{
		containers: map[string]MockedContainer{},
		names:      map[string]string{},
	}
}

// DaemonHost returns the host address used by the client
func (mm *MockingMoby) DaemonHost() string { return "mock://mocked" }

// Close closes the mock client, releasing its internal resources.
func (mm *MockingMoby) Close() error {
	return nil
}

// Inspections returns the number of container inspections so far, regardless
// of whether they succeeded or failed.
func (mm *MockingMoby) Inspections() int {
	return int(mm.inspections.Load())
}

// isCtxCancelled returns an error if the specified Context is done, either
// having been cancelled our reached its deadline. Otherwise, returns nil.
func isCtxCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// AddContainer adds a mocked container, replacing any existing mocked
// container with the same ID.
func (mm *MockingMoby) AddContainer(c MockedContainer) {
	mm.mux.Lock()
	defer mm.mux.Unlock()
	mm.containers[c.ID] = c
	mm.names[c.Name] = c.ID
}

// StopContainer stops a mocked container, but does not remove it yet.
func (mm *MockingMoby) StopContainer(nameorid string) {
	if c, ok := mm.lookup(nameorid); ok {
		mm.mux.Lock()
		defer mm.mux.Unlock()
		c.Status = MockedExited
		c.PID = 0
		mm.containers[c.ID] = c
	}
}

// RemoveContainer removes a mocked container.
func (mm *MockingMoby) RemoveContainer(nameorid string) {
	if c, ok := mm.lookup(nameorid); ok {
		mm.mux.Lock()
		defer mm.mux.Unlock()
		delete(mm.containers, c.ID)
		delete(mm.names, c.Name)
	}
}

// lookup returns a mocked container identified either by ID or name. If not
// found, returns false.
func (mm *MockingMoby) lookup(nameorid string) (MockedContainer, bool) {
	mm.mux.RLock()
	defer mm.mux.RUnlock()
	c, ok := mm.containers[nameorid]
	if !ok {
		if nameorid, ok = mm.names[nameorid]; ok {
			c, ok = mm.containers[nameorid]
		}
	}
	return c, ok
}
