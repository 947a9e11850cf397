package crypto

import (
	"encoding/base64"

	"github.com/mr-tron/base58"
)

// B64 returns standard base64 encoding without newlines.
func B64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

// B58 returns the bitcoin-alphabet base58 encoding used for keys and signatures.
func B58(b []byte) string { return base58.Encode(b) }
