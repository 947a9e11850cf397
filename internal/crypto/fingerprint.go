package crypto

import (
	"fortunecookie/internal/domain"
)

// Fingerprint returns a short display form of a public key: the first and
// last four base58 characters.
func Fingerprint(pub domain.PublicKey) domain.Fingerprint {
	s := pub.String()
	if len(s) <= 10 {
		return domain.Fingerprint(s)
	}
	return domain.Fingerprint(s[:4] + ".." + s[len(s)-4:])
}
