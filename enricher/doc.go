/*
Package enricher enriches batches of container log records with the ECS task
metadata of the containers that emitted them.

An [Enricher] processes each record of a batch as follows:

 1. it extracts the container ID, either from the stream tag or from a
    (nested) record field, see [Extractor]. Records without a container ID
    get dropped.
 2. it resolves the container ID into [ecsfilter.TaskMetadata], using a
    per-Enricher cache and on cache misses a [Resolver] querying the
    container engine for the container's labels.
 3. it merges the task metadata into a copy of the record, see
    [ecsfilter.Merger].

The output batch keeps the order of the input batch, minus the dropped
records. By default, failing to resolve any container ID fails the whole
batch; see [WithSkipFailedLookups] for isolating failed lookups to the
records concerned instead.

The engine-specific sub-packages moby, containerd, and cri create Enrichers
for specific types of container engines, given just an API endpoint.
*/
package enricher
