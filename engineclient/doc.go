/*
Package engineclient defines the EngineClient interface between concrete
container engine adaptor implementations and the engine-neutral enricher core:
all the enricher needs from a container engine are the labels of individual
containers.

Sub-packages implement specific container engines adaptors.
*/
package engineclient
