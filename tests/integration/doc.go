// Package integration runs the product manager and every relational or
// document repository against real databases started with testcontainers.
// Each test gets its own freshly created database that is dropped afterwards.
//
// Run with: go test -tags=integration ./tests/integration/...
package integration
