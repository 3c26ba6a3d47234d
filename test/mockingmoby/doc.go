/*
Package mockingmoby is a very minimalist Docker mock client designed for simple
unit tests of the enricher and engine client packages. Only inspecting
containers and pinging the mock daemon is supported, and only very few
container properties are mocked, just to the extend needed for looking up
container labels.

But in contrast to using a real Docker client in unit tests mockingmoby offers
service API hooks which get called at the beginning and end of service API
calls. This can be used to synchronize or fail certain API calls with exact
logical timing without the need to instrument production code under test with
hooks. The service API hooks are passed in via (service) context values.

Additionally, mockingmoby counts the number of container inspections, so unit
tests can check how often the container engine was actually queried.

The mocked containers are not created and destroyed using the standard Docker
client service API but instead using AddContainer and RemoveContainer. In
addition, a mock container can be "stopped" using StopContainer, so it gets into
the "exited" state but still exists.
*/
package mockingmoby
