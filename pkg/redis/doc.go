// Package redis connects go-redis clients with startup retries and exposes a
// readiness probe.
package redis
