/*
Package containerd implements the containerd EngineClient.

# Notes

containerd organizes containers into (containerd) namespaces. Container IDs
can thus be either namespaced IDs in the form of "namespace/id", or plain IDs,
which then are looked up in the configured default namespace. The default
namespace is Docker's "moby" namespace, as ECS container instances run their
task containers using Docker on top of containerd.
*/
package containerd
