// Component for caching arbitrary data (as JSON strings) with a fixed TTL and purging.
//
// Includes an interface and implementations using redis and in-process memory.
//
// The posting engine uses this to cache author account metadata and recent
// listing fetches, keeping evaluation latency low and load off the upstream
// platform API.
package cachestore
