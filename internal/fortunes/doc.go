// Package fortunes is the read-only content pool that turns an on-chain
// fortune id into text. A pool file lists, per archetype and rarity, an
// ordered set of strings; the fortune id is reduced modulo the list length.
// A default pool is embedded.
package fortunes
