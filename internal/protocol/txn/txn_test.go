package txn

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
)

func key(b byte) domain.PublicKey {
	var k domain.PublicKey
	k[0] = b
	return k
}

func TestCompactU16(t *testing.T) {
	cases := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	}
	for _, c := range cases {
		got := appendCompactU16(nil, c.n)
		if !bytes.Equal(got, c.want) {
			t.Fatalf("encode %#x = %x, want %x", c.n, got, c.want)
		}
		v, n, err := readCompactU16(got)
		if err != nil || v != c.n || n != len(c.want) {
			t.Fatalf("decode %x = %d (%d bytes), %v", got, v, n, err)
		}
	}

	if _, _, err := readCompactU16([]byte{0x80}); !errors.Is(err, errTruncated) {
		t.Fatalf("truncated: %v", err)
	}
	if _, _, err := readCompactU16([]byte{0xff, 0xff, 0x04}); !errors.Is(err, errShortVecOverflow) {
		t.Fatalf("overflow: %v", err)
	}
}

func TestNewMessage_AccountOrdering(t *testing.T) {
	payer, roSigner, writable, readonly, program := key(1), key(2), key(3), key(4), key(9)
	ix := Instruction{
		ProgramID: program,
		Accounts: []AccountMeta{
			{PublicKey: readonly},
			{PublicKey: roSigner, IsSigner: true},
			{PublicKey: writable, IsWritable: true},
			{PublicKey: payer, IsWritable: true},
		},
		Data: []byte{1, 2, 3},
	}
	m, err := NewMessage(payer, domain.Hash{7}, ix)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	want := []domain.PublicKey{payer, roSigner, writable, readonly, program}
	if len(m.AccountKeys) != len(want) {
		t.Fatalf("keys = %v", m.AccountKeys)
	}
	for i := range want {
		if m.AccountKeys[i] != want[i] {
			t.Fatalf("key %d = %v, want %v", i, m.AccountKeys[i], want[i])
		}
	}
	if m.Header != (Header{NumRequiredSignatures: 2, NumReadonlySigned: 1, NumReadonlyUnsigned: 2}) {
		t.Fatalf("header = %+v", m.Header)
	}
	for i, w := range []bool{true, false, true, false, false} {
		if m.IsWritable(i) != w {
			t.Fatalf("IsWritable(%d) = %v", i, !w)
		}
	}
	if !m.IsSigner(1) || m.IsSigner(2) {
		t.Fatal("signer flags wrong")
	}

	ci := m.Instructions[0]
	if ci.ProgramIndex != 4 || !bytes.Equal(ci.Accounts, []uint8{3, 1, 2, 0}) {
		t.Fatalf("compiled = %+v", ci)
	}
}

func TestNewMessage_NoPayer(t *testing.T) {
	if _, err := NewMessage(domain.PublicKey{}, domain.Hash{}); !errors.Is(err, errNoPayer) {
		t.Fatalf("err = %v", err)
	}
}

func TestTransaction_SignSerializeDecode(t *testing.T) {
	kp, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	ix := Instruction{
		ProgramID: key(9),
		Accounts:  []AccountMeta{{PublicKey: kp.Public, IsSigner: true, IsWritable: true}, {PublicKey: key(3), IsWritable: true}},
		Data:      bytes.Repeat([]byte{0xab}, 200),
	}
	tx, err := New(kp.Public, domain.Hash{1, 2, 3}, ix)
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Sign(context.Background(), NewKeypairSigner(kp)); err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !tx.VerifySignatures() {
		t.Fatal("signature does not verify")
	}

	raw, err := tx.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Signature() != tx.Signature() || !got.VerifySignatures() {
		t.Fatal("decoded transaction lost its signature")
	}
	if !bytes.Equal(got.Message.Serialize(), tx.Message.Serialize()) {
		t.Fatal("decoded message differs")
	}

	if _, err := Decode(append(raw, 0)); !errors.Is(err, errTrailing) {
		t.Fatalf("trailing: %v", err)
	}
	if _, err := Decode(raw[:len(raw)-1]); err == nil {
		t.Fatal("truncated transaction decoded")
	}

	tampered := append([]byte(nil), raw...)
	tampered[len(tampered)-1] ^= 1
	bad, err := Decode(tampered)
	if err != nil {
		t.Fatal(err)
	}
	if bad.VerifySignatures() {
		t.Fatal("tampered transaction verifies")
	}
}

func TestTransaction_MissingSigner(t *testing.T) {
	kp, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	other, err := crypto.GenerateKeypair()
	if err != nil {
		t.Fatal(err)
	}
	tx, err := New(kp.Public, domain.Hash{}, Instruction{ProgramID: key(9)})
	if err != nil {
		t.Fatal(err)
	}
	if err := tx.Sign(context.Background(), NewKeypairSigner(other)); err == nil {
		t.Fatal("signed without the fee payer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tx.Sign(ctx, NewKeypairSigner(kp)); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled sign: %v", err)
	}
}

func TestTransaction_TooLarge(t *testing.T) {
	tx, err := New(key(1), domain.Hash{}, Instruction{ProgramID: key(9), Data: make([]byte, MaxTransactionSize)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tx.Serialize(); !errors.Is(err, errTooLarge) {
		t.Fatalf("err = %v", err)
	}
}
