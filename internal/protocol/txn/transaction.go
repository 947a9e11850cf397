package txn

import (
	"context"
	"fmt"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
)

// Transaction is a message plus one signature per required signer.
type Transaction struct {
	Signatures []domain.Signature
	Message    Message
}

// New compiles ixs into an unsigned transaction.
func New(payer domain.PublicKey, blockhash domain.Hash, ixs ...Instruction) (*Transaction, error) {
	m, err := NewMessage(payer, blockhash, ixs...)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Signatures: make([]domain.Signature, m.Header.NumRequiredSignatures),
		Message:    m,
	}, nil
}

// Sign collects a signature from each signer over the serialized message.
// Every required signer must be supplied.
func (tx *Transaction) Sign(ctx context.Context, signers ...domain.Signer) error {
	msg := tx.Message.Serialize()
	byKey := make(map[domain.PublicKey]domain.Signer, len(signers))
	for _, s := range signers {
		byKey[s.PublicKey()] = s
	}
	for i, key := range tx.Message.Signers() {
		s, ok := byKey[key]
		if !ok {
			return fmt.Errorf("missing signer %s", key)
		}
		sig, err := s.SignMessage(ctx, msg)
		if err != nil {
			return err
		}
		tx.Signatures[i] = sig
	}
	return nil
}

// Signature returns the first signature, which identifies the transaction.
func (tx *Transaction) Signature() domain.Signature {
	if len(tx.Signatures) == 0 {
		return domain.Signature{}
	}
	return tx.Signatures[0]
}

// Serialize encodes the signed transaction in wire format.
func (tx *Transaction) Serialize() ([]byte, error) {
	if len(tx.Signatures) != int(tx.Message.Header.NumRequiredSignatures) {
		return nil, errBadSigners
	}
	b := appendCompactU16(nil, len(tx.Signatures))
	for _, s := range tx.Signatures {
		b = append(b, s[:]...)
	}
	b = append(b, tx.Message.Serialize()...)
	if len(b) > MaxTransactionSize {
		return nil, errTooLarge
	}
	return b, nil
}

// Decode parses a wire-format transaction.
func Decode(b []byte) (*Transaction, error) {
	r := reader{b: b}
	n := r.compactU16()
	tx := &Transaction{}
	for i := 0; i < n && r.err == nil; i++ {
		var s domain.Signature
		copy(s[:], r.bytes(64))
		tx.Signatures = append(tx.Signatures, s)
	}
	if r.err != nil {
		return nil, r.err
	}
	m, used, err := DecodeMessage(b[r.off:])
	if err != nil {
		return nil, err
	}
	if r.off+used != len(b) {
		return nil, errTrailing
	}
	if len(tx.Signatures) != int(m.Header.NumRequiredSignatures) {
		return nil, errBadSigners
	}
	tx.Message = m
	return tx, nil
}

// VerifySignatures checks every signature against its signer key.
func (tx *Transaction) VerifySignatures() bool {
	msg := tx.Message.Serialize()
	signers := tx.Message.Signers()
	if len(signers) != len(tx.Signatures) {
		return false
	}
	for i, key := range signers {
		if !crypto.Verify(key, msg, tx.Signatures[i]) {
			return false
		}
	}
	return true
}
