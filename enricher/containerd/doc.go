/*
Package containerd provides an Enricher looking up ECS task metadata from
containerd engines.

# Usage

	import "github.com/thediveo/ecsfilter/enricher/containerd"
	enr, err := containerd.New("", "")

Plain container IDs get looked up in the specified containerd namespace,
defaulting to Docker's "moby" namespace.
*/
package containerd
