// Package app wires application dependencies for the CLI.
//
// Config is layered from defaults, an optional TOML file and FORTUNE_*
// environment variables. NewWire builds the ledger client, keystore,
// content pool and services from it, and App adds the lazily opened
// signing authority that commands share.
package app
