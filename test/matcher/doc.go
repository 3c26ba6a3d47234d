/*
Package matcher provides Gomega matchers for log events and records enriched
with ECS task metadata.
*/
package matcher
