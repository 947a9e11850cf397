// Package ledgertest provides an in-memory ledger that speaks the same
// JSON-RPC as a real node and executes the fortune_cookie program.
//
// The emulator verifies signatures and recent blockhashes, runs
// initialize_stats and open_cookie with the program's account constraints
// (seeds, signer, mut, "already in use" on re-init, stats must exist,
// archetype below 4) and mixes fortune ids and rarities from the landing
// slot and the user key exactly as the program does.
//
// Knobs such as ConfirmAfter, SetPreflight, HideStatuses and FailNext let
// tests reach the confirmation, race and network failure paths. Serve it
// with net/http/httptest or through cmd/ledger-sim.
package ledgertest
