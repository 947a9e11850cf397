package crypto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

func TestSignVerify(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	msg := []byte("open cookie")
	sig := Sign(kp.Private, msg)
	if !Verify(kp.Public, msg, sig) {
		t.Fatal("valid signature rejected")
	}
	if Verify(kp.Public, []byte("open cookies"), sig) {
		t.Fatal("signature verified over a different message")
	}
	other, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	if Verify(other.Public, msg, sig) {
		t.Fatal("signature verified under a different key")
	}
}

func TestKeypairFromSecret(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}

	fromSeed, err := KeypairFromSecret(kp.Private[:32])
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if fromSeed != kp {
		t.Fatal("seed did not reproduce the keypair")
	}

	fromFull, err := KeypairFromSecret(kp.Private[:])
	if err != nil {
		t.Fatalf("64-byte secret: %v", err)
	}
	if fromFull != kp {
		t.Fatal("64-byte secret did not reproduce the keypair")
	}

	bad := append([]byte(nil), kp.Private[:]...)
	bad[63] ^= 1
	if _, err := KeypairFromSecret(bad); err == nil {
		t.Fatal("mismatched public half accepted")
	}
	if _, err := KeypairFromSecret(make([]byte, 48)); err == nil {
		t.Fatal("48-byte secret accepted")
	}
}

func TestEncodings(t *testing.T) {
	b := []byte{0, 0, 1, 2, 3}
	if got := B58(b); got != base58.Encode(b) || !strings.HasPrefix(got, "11") {
		t.Fatalf("B58 = %q", got)
	}
	if got := B64([]byte("cookie")); got != "Y29va2ll" {
		t.Fatalf("B64 = %q", got)
	}
}

func TestFingerprint(t *testing.T) {
	kp, err := GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	full := kp.Public.String()
	fp := string(Fingerprint(kp.Public))
	if len(fp) != 10 || fp[:4] != full[:4] || fp[6:] != full[len(full)-4:] || fp[4:6] != ".." {
		t.Fatalf("fingerprint %q of %q", fp, full)
	}
	if !bytes.Equal(kp.Public[:], mustDecode(t, full)) {
		t.Fatal("public key string is not base58")
	}
}

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := base58.Decode(s)
	if err != nil {
		t.Fatal(err)
	}
	return b
}
