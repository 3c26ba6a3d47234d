/*
Package moby implements the Docker EngineClient.

Labels are taken from the container configuration as returned when inspecting
a container. Please note that containers are inspectable even after they have
exited, as long as they haven't been removed yet; this allows enriching the
final log records of already terminated containers.
*/
package moby
