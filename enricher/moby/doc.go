/*
Package moby provides an Enricher looking up ECS task metadata from
Docker/Moby engines.

# Usage

	import "github.com/thediveo/ecsfilter/enricher/moby"
	enr, err := moby.New("")

When the Docker endpoint is left empty, Docker's usual client defaults apply,
such as picking up DOCKER_HOST from the environment or falling back to
"unix:///var/run/docker.sock".
*/
package moby
