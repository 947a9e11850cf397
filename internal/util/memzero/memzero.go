// Package memzero wipes secret material held in memory once it is no longer
// needed: derived envelope keys, decrypted keystore plaintext and imported
// keypair bytes.
package memzero

// Zero overwrites every byte of each buffer.
func Zero(bufs ...[]byte) {
	for _, b := range bufs {
		clear(b)
	}
}
