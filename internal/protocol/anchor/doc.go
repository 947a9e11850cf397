// Package anchor is the static, versioned description of the fortune_cookie
// program interface: program id, seed tags, instruction and account
// discriminators, argument encoding and fixed-offset account layouts.
//
// # Instructions
//
//   - initialize_stats()        accounts: payer (signer, writable), stats (writable), system program
//   - open_cookie(u8, u64)      accounts: user (signer, writable), cookie (writable), stats (writable), system program
//
// # Accounts
//
//	FortuneCookie  [disc 8][owner 32][archetype 1][fortune_id u64 LE][rarity 1][bump 1]   = 51 bytes
//	Stats          [disc 8][total_opens u64 LE][bump 1]                                 = 17 bytes
//
// Cookie addresses derive from (owner, "cookie", counter u64 LE); the stats
// address from ("stats"). Nothing here is introspected at runtime; a change
// on the program side requires a new InterfaceVersion.
package anchor
