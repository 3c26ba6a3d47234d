/*
Package cri provides an Enricher looking up ECS task metadata from CRI
API-supporting engines.

# Usage

	import "github.com/thediveo/ecsfilter/enricher/cri"
	enr, err := cri.New("/path/to/CRI-API-endpoint.sock")

Please note that there is no standard path for CRI API endpoints; if left
empty, containerd's "/run/containerd/containerd.sock" is used.
*/
package cri
