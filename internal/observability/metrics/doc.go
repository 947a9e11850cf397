// Package metrics holds the Prometheus collectors for the ledger client, the
// crack dispatcher and the gesture engine. Each group registers itself with
// the default registry the first time it is requested.
package metrics
