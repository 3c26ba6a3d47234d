/*
Package metacache provides a capacity-bounded and time-expiring cache for
container metadata, keyed by container IDs (or names).

The only way to read from a [Cache] is [Cache.GetOrCompute]: it either returns a
still-valid cached value or computes the value by calling the passed compute
function, storing the result. Concurrent GetOrCompute calls for the same key
never compute the value simultaneously; instead, they share the result of the
single computation in flight. Calls for different keys don't block each other
while computing.

Entries get evicted when the cache grows beyond its capacity (least recently
used first), and they are considered to be gone as soon as they are older than
the cache's time-to-live. Expired entries are removed lazily on access.
*/
package metacache
