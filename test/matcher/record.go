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

package matcher

import (
	"github.com/onsi/gomega/format"
	"github.com/pkg/errors"
	"github.com/onsi/gomega/gcustom"
	"github.com/onsi/gomega/types"
	"github.com/thediveo/ecsfilter"

	o "github.com/onsi/gomega"
)

// BeAnEvent succeeds when the actual value is an ecsfilter.Event and
// additionally all passed matchers also succeed.
func BeAnEvent(matchers ...types.GomegaMatcher) types.GomegaMatcher {
	return o.WithTransform(func(actual ecsfilter.Event) ecsfilter.Event {
		return actual
	}, o.SatisfyAll(matchers...))
}

// HaveRecordField succeeds if the actual value is an ecsfilter.Event or
// ecsfilter.Record that has a (nested) field at the specified dotted path and
// the field's value matches the expected value or matcher.
func HaveRecordField(path string, expected any) types.GomegaMatcher {
	valueMatcher, ok := expected.(types.GomegaMatcher)
	if !ok {
		valueMatcher = o.Equal(expected)
	}
	return gcustom.MakeMatcher(func(actual any) (bool, error) {
		r, err := recordOf(actual)
		if err != nil {
			return false, err
		}
		value, ok := ecsfilter.Lookup(r, path)
		if !ok {
			return false, nil
		}
		return valueMatcher.Match(value)
	}).WithTemplate("Expected:\n{{.FormattedActual}}\n{{.To}} have field {{format .Data 1}}", path)
}

// HaveNoRecordField succeeds if the actual value is an ecsfilter.Event or
// ecsfilter.Record without any (nested) field at the specified dotted path.
func HaveNoRecordField(path string) types.GomegaMatcher {
	return gcustom.MakeMatcher(func(actual any) (bool, error) {
		r, err := recordOf(actual)
		if err != nil {
			return false, err
		}
		_, ok := ecsfilter.Lookup(r, path)
		return !ok, nil
	}).WithTemplate("Expected:\n{{.FormattedActual}}\n{{.To}} lack field {{format .Data 1}}", path)
}

// HaveTaskMetadata succeeds if the actual value is an ecsfilter.Event or
// ecsfilter.Record carrying the specified task family, version, and ID fields.
func HaveTaskMetadata(family, version, id string) types.GomegaMatcher {
	return o.SatisfyAll(
		HaveRecordField(ecsfilter.TaskFamilyField, family),
		HaveRecordField(ecsfilter.TaskVersionField, version),
		HaveRecordField(ecsfilter.TaskIDField, id),
	)
}

// HaveNoTaskMetadata succeeds if the actual value is an ecsfilter.Event or
// ecsfilter.Record without any task metadata fields.
func HaveNoTaskMetadata() types.GomegaMatcher {
	return o.SatisfyAll(
		HaveNoRecordField(ecsfilter.TaskFamilyField),
		HaveNoRecordField(ecsfilter.TaskVersionField),
		HaveNoRecordField(ecsfilter.TaskIDField),
	)
}

func recordOf(actual any) (ecsfilter.Record, error) {
	switch actual := actual.(type) {
	case ecsfilter.Event:
		return actual.Record, nil
	case *ecsfilter.Event:
		if actual == nil {
			return nil, nil
		}
		return actual.Record, nil
	case ecsfilter.Record:
		return actual, nil
	case map[string]any:
		return actual, nil
	}
	return nil, errors.New(format.Message(actual, "to be an ecsfilter.Event or ecsfilter.Record"))
}
