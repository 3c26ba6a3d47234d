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

package ecsfilter

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("merging", func() {

	md := TaskMetadata{Family: "f", Version: "v", ID: "i"}

	It("merges task metadata without touching the original record", func() {
		rec := Record{"log": "Hello World 1", "stream": "stdout"}
		merged := NewMerger().Merge(rec, md)
		Expect(merged).To(Equal(Record{
			"log":            "Hello World 1",
			"stream":         "stdout",
			TaskFamilyField:  "f",
			TaskVersionField: "v",
			TaskIDField:      "i",
		}))
		Expect(rec).To(HaveLen(2))
	})

	It("lets task metadata win over existing fields", func() {
		merged := Merger{}.Merge(Record{TaskFamilyField: "old"}, md)
		Expect(merged).To(HaveKeyWithValue(TaskFamilyField, "f"))
	})

	It("merges into nil records", func() {
		Expect(Merger{}.Merge(nil, md)).To(HaveLen(3))
		Expect(Merger{}.Merge(nil, TaskMetadata{})).To(BeEmpty())
	})

	It("merges well-formed JSON logs", func() {
		merged := NewMerger().Merge(Record{"log": ` {"test_key":"Hello World","n":42} `}, md)
		Expect(merged).To(HaveKeyWithValue("test_key", "Hello World"))
		Expect(merged).To(HaveKeyWithValue("n", json.Number("42")))
		Expect(merged).To(HaveKeyWithValue(TaskIDField, "i"))
	})

	It("lets record fields win over JSON log fields", func() {
		merged := NewMerger().Merge(Record{
			"log":    `{"stream":"json","task_id":"json","k":"v"}`,
			"stream": "stdout",
		}, md)
		Expect(merged).To(HaveKeyWithValue("stream", "stdout"))
		Expect(merged).To(HaveKeyWithValue(TaskIDField, "i"))
		Expect(merged).To(HaveKeyWithValue("k", "v"))
	})

	It("nests JSON logs under a namespace", func() {
		merged := NewMerger().Merge(Record{
			"log":       `{"k":"v"}`,
			"namespace": "app",
		}, md)
		Expect(merged).To(HaveKeyWithValue("app", HaveKeyWithValue("k", "v")))
		Expect(merged).NotTo(HaveKey("k"))
	})

	It("ignores empty namespaces", func() {
		merged := NewMerger().Merge(Record{
			"log":       `{"k":"v"}`,
			"namespace": "",
		}, md)
		Expect(merged).To(HaveKeyWithValue("k", "v"))
	})

	It("leaves malformed JSON logs alone", func() {
		for _, bad := range []string{
			`{"test_key":"Hello World"`,
			`{"test_key":"Hello World", "badnews"}`,
			`{"a", "b"}`,
			`{"a":1}{"b":2}`,
			`{`,
		} {
			merged := NewMerger().Merge(Record{"log": bad}, md)
			Expect(merged).To(HaveKeyWithValue("log", bad))
			Expect(merged).To(HaveLen(4), "for %q", bad)
		}
	})

	It("ignores non-JSON and non-string logs", func() {
		for _, log := range []any{"Hello World", `["a"]`, `"{}"`, 42, nil} {
			merged := NewMerger().Merge(Record{"log": log}, md)
			Expect(merged).To(HaveLen(4), "for %v", log)
		}
		Expect(NewMerger().Merge(Record{"msg": `{"k":"v"}`}, md)).NotTo(HaveKey("k"))
	})

	It("doesn't merge JSON logs when disabled", func() {
		m := NewMerger()
		m.JSONLog = false
		Expect(m.Merge(Record{"log": `{"k":"v"}`}, md)).NotTo(HaveKey("k"))
	})

	It("uses custom field names", func() {
		m := Merger{JSONLog: true, JSONLogField: "message", NamespaceField: "ns"}
		merged := m.Merge(Record{"message": `{"k":"v"}`, "ns": "payload"}, md)
		Expect(merged).To(HaveKeyWithValue("payload", HaveKeyWithValue("k", "v")))
	})

})
