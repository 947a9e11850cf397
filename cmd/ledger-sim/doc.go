// Package main runs the in-memory ledger used by the fortune CLI during
// development and tests. It answers the Solana JSON-RPC methods the client
// needs and executes the fortune_cookie program against in-memory accounts.
//
// JSON-RPC (POST /)
//
//	getLatestBlockhash     issue a fresh blockhash valid for 150 slots
//	sendTransaction        verify, simulate and land a base64 transaction
//	getSignatureStatuses   report processed, then confirmed after --confirm-after polls
//	getProgramAccounts     list program accounts with dataSize / memcmp filters
//	getAccountInfo         return account data as base64
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Every landed transaction advances the slot by one; fortune ids and
//     rarities are mixed from that slot.
//   - A lightweight access log records method, path, remote, status, bytes
//     and duration for each request.
//   - The default listen address is :8899.
//
// Point the CLI at it with --rpc http://127.0.0.1:8899.
package main
