// Package crack is the single entry point for cracking a cookie, shared by
// the manual command and gesture triggers.
//
// A crack resolves the next counter, derives the cookie address, submits and
// confirms open_cookie, reads the cookie back into a fortune and refreshes
// the stats total. Only one crack runs at a time; an invocation that arrives
// while one is outstanding is ignored. The Dispatcher owns the View (loading
// flag, last error message, last fortune and signature, displayed total) and
// updates the fortune only after a confirmed, re-read cookie.
//
// Protocol drift is latched: once detected, further cracks fail without
// touching the ledger.
package crack
