// Package counter resolves the per-user sequence number used as a cookie
// address seed. It is never cached: every call queries the ledger for the
// owner's cookie accounts (51-byte accounts whose bytes 8..40 equal the
// owner) without transferring their data.
package counter
