// Package commands defines the fortune CLI and wires dependencies for subcommands.
//
// Commands
//
//   - init        Create or import the local signing keypair
//   - address     Print the wallet address and fingerprint
//   - derive      Print program derived addresses for a wallet
//   - init-stats  Create the global stats account if it does not exist
//   - stats       Print how many cookies have been opened
//   - crack       Open the next cookie and print its fortune
//   - gesture     Crack cookies with a two-hand pull-apart gesture
//
// # Implementation
//
// The root command loads configuration (defaults, TOML file, FORTUNE_*
// environment, then flags) and builds the dependency graph before any
// subcommand runs. The keystore is only unlocked by commands that sign.
package commands
