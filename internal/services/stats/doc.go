// Package stats caches the singleton stats account: how many cookies have
// been opened by anyone. Initialization is idempotent and every operation is
// safe to call repeatedly.
package stats
