/*
Package ecsfilter enriches the log records of containers belonging to ECS tasks
with information about these tasks: the task definition family, the task
definition version, and the task ID. This task information is taken from the
labels the ECS agent attaches to each container of an ECS task.

In order to keep the load on the container engine as low as possible, task
information is cached per container for a configurable amount of time, see
[github.com/thediveo/ecsfilter/metacache].

# Information Model

  - A log [Record] is a mapping of field names to values, optionally with
    nested records. An [Event] is a timestamped Record, and a batch of log
    records simply is a slice of Events.
  - [TaskMetadata] describes the ECS task a container belongs to. It is
    derived from the container labels [TaskFamilyLabel], [TaskVersionLabel],
    and [TaskARNLabel].
  - A [Merger] merges TaskMetadata into Records and, optionally, also merges
    JSON objects found in a Record's "log" field.

# Enrichment

An [github.com/thediveo/ecsfilter/enricher.Enricher] filters batches of Events:
it derives the container ID for each Event either from the stream tag or from a
(nested) record field, resolves the ID into TaskMetadata by asking the
container engine for the container's labels (unless cached), and finally
merges the TaskMetadata into the Records. Records without container IDs get
dropped.

Please refer to cmd/ecsfilter for a stand-alone filter reading and writing
JSON lines:

	package main

	import (
	    "context"
	    "fmt"
	    "time"

	    "github.com/thediveo/ecsfilter"
	    "github.com/thediveo/ecsfilter/enricher"
	    "github.com/thediveo/ecsfilter/enricher/moby"
	)

	func main() {
	    enr, err := moby.New("unix:///var/run/docker.sock",
	        enricher.WithTaskFamilyPrefix("prod-"))
	    if err != nil {
	        panic(err)
	    }
	    defer enr.Close()

	    events, err := enr.Filter(context.Background(),
	        "docker.5f1a2b3c4d5e",
	        []ecsfilter.Event{{Time: time.Now(), Record: ecsfilter.Record{"log": "hellorld"}}})
	    if err != nil {
	        panic(err)
	    }
	    for _, event := range events {
	        fmt.Println(event.Record)
	    }
	}
*/
package ecsfilter
