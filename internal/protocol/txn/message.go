package txn

import (
	"errors"
	"fmt"

	"fortunecookie/internal/domain"
)

// MaxTransactionSize is the largest serialized transaction the ledger accepts.
const MaxTransactionSize = 1232

var (
	errTruncated  = errors.New("truncated input")
	errNoPayer    = errors.New("fee payer required")
	errBadIndex   = errors.New("account index out of range")
	errTrailing   = errors.New("trailing bytes after message")
	errTooLarge   = fmt.Errorf("transaction exceeds %d bytes", MaxTransactionSize)
	errBadSigners = errors.New("signature count does not match header")
)

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	PublicKey  domain.PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is one program invocation before compilation.
type Instruction struct {
	ProgramID domain.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// Header counts signer and read-only accounts in AccountKeys.
type Header struct {
	NumRequiredSignatures uint8
	NumReadonlySigned     uint8
	NumReadonlyUnsigned   uint8
}

// CompiledInstruction references accounts by index into Message.AccountKeys.
type CompiledInstruction struct {
	ProgramIndex uint8
	Accounts     []uint8
	Data         []byte
}

// Message is a legacy (unversioned) transaction message.
type Message struct {
	Header          Header
	AccountKeys     []domain.PublicKey
	RecentBlockhash domain.Hash
	Instructions    []CompiledInstruction
}

// NewMessage compiles instructions into a message paid for by payer.
//
// Accounts are deduplicated with signer and writable flags merged, then
// ordered writable signers, read-only signers, writable non-signers and
// read-only non-signers, keeping first-seen order inside each group. The
// payer is always first.
func NewMessage(payer domain.PublicKey, blockhash domain.Hash, ixs ...Instruction) (Message, error) {
	if payer.IsZero() {
		return Message{}, errNoPayer
	}

	type entry struct {
		key              domain.PublicKey
		signer, writable bool
	}
	var order []*entry
	seen := map[domain.PublicKey]*entry{}
	add := func(key domain.PublicKey, signer, writable bool) {
		if e, ok := seen[key]; ok {
			e.signer = e.signer || signer
			e.writable = e.writable || writable
			return
		}
		e := &entry{key: key, signer: signer, writable: writable}
		seen[key] = e
		order = append(order, e)
	}

	add(payer, true, true)
	for _, ix := range ixs {
		for _, a := range ix.Accounts {
			add(a.PublicKey, a.IsSigner, a.IsWritable)
		}
		add(ix.ProgramID, false, false)
	}

	var groups [4][]*entry
	for _, e := range order {
		switch {
		case e.signer && e.writable:
			groups[0] = append(groups[0], e)
		case e.signer:
			groups[1] = append(groups[1], e)
		case e.writable:
			groups[2] = append(groups[2], e)
		default:
			groups[3] = append(groups[3], e)
		}
	}

	var m Message
	index := map[domain.PublicKey]uint8{}
	for _, g := range groups {
		for _, e := range g {
			if len(m.AccountKeys) > 255 {
				return Message{}, fmt.Errorf("too many accounts: %d", len(order))
			}
			index[e.key] = uint8(len(m.AccountKeys))
			m.AccountKeys = append(m.AccountKeys, e.key)
		}
	}
	m.Header = Header{
		NumRequiredSignatures: uint8(len(groups[0]) + len(groups[1])),
		NumReadonlySigned:     uint8(len(groups[1])),
		NumReadonlyUnsigned:   uint8(len(groups[3])),
	}
	m.RecentBlockhash = blockhash

	for _, ix := range ixs {
		ci := CompiledInstruction{
			ProgramIndex: index[ix.ProgramID],
			Accounts:     make([]uint8, len(ix.Accounts)),
			Data:         append([]byte(nil), ix.Data...),
		}
		for i, a := range ix.Accounts {
			ci.Accounts[i] = index[a.PublicKey]
		}
		m.Instructions = append(m.Instructions, ci)
	}
	return m, nil
}

// Signers returns the keys that must sign, in signature order.
func (m Message) Signers() []domain.PublicKey {
	return m.AccountKeys[:m.Header.NumRequiredSignatures]
}

// IsWritable reports whether the account at index i is writable.
func (m Message) IsWritable(i int) bool {
	n := len(m.AccountKeys)
	signed := int(m.Header.NumRequiredSignatures)
	if i < signed {
		return i < signed-int(m.Header.NumReadonlySigned)
	}
	return i < n-int(m.Header.NumReadonlyUnsigned)
}

// IsSigner reports whether the account at index i must sign.
func (m Message) IsSigner(i int) bool { return i < int(m.Header.NumRequiredSignatures) }

// Serialize encodes the message as the bytes that signatures cover.
func (m Message) Serialize() []byte {
	b := make([]byte, 0, 256)
	b = append(b, m.Header.NumRequiredSignatures, m.Header.NumReadonlySigned, m.Header.NumReadonlyUnsigned)
	b = appendCompactU16(b, len(m.AccountKeys))
	for _, k := range m.AccountKeys {
		b = append(b, k[:]...)
	}
	b = append(b, m.RecentBlockhash[:]...)
	b = appendCompactU16(b, len(m.Instructions))
	for _, ix := range m.Instructions {
		b = append(b, ix.ProgramIndex)
		b = appendCompactU16(b, len(ix.Accounts))
		b = append(b, ix.Accounts...)
		b = appendCompactU16(b, len(ix.Data))
		b = append(b, ix.Data...)
	}
	return b
}

// DecodeMessage parses a serialized legacy message and returns the bytes consumed.
func DecodeMessage(b []byte) (Message, int, error) {
	var m Message
	r := reader{b: b}
	h := r.bytes(3)
	if r.err != nil {
		return Message{}, 0, r.err
	}
	if h[0]&0x80 != 0 {
		return Message{}, 0, fmt.Errorf("versioned messages are not supported")
	}
	m.Header = Header{NumRequiredSignatures: h[0], NumReadonlySigned: h[1], NumReadonlyUnsigned: h[2]}

	nkeys := r.compactU16()
	for i := 0; i < nkeys && r.err == nil; i++ {
		var k domain.PublicKey
		copy(k[:], r.bytes(32))
		m.AccountKeys = append(m.AccountKeys, k)
	}
	copy(m.RecentBlockhash[:], r.bytes(32))

	nix := r.compactU16()
	for i := 0; i < nix && r.err == nil; i++ {
		var ix CompiledInstruction
		p := r.bytes(1)
		if r.err != nil {
			break
		}
		ix.ProgramIndex = p[0]
		na := r.compactU16()
		ix.Accounts = append([]uint8(nil), r.bytes(na)...)
		nd := r.compactU16()
		ix.Data = append([]byte(nil), r.bytes(nd)...)
		m.Instructions = append(m.Instructions, ix)
	}
	if r.err != nil {
		return Message{}, 0, r.err
	}

	if int(m.Header.NumRequiredSignatures) > len(m.AccountKeys) {
		return Message{}, 0, fmt.Errorf("header: %w", errBadIndex)
	}
	for _, ix := range m.Instructions {
		if int(ix.ProgramIndex) >= len(m.AccountKeys) {
			return Message{}, 0, fmt.Errorf("program: %w", errBadIndex)
		}
		for _, a := range ix.Accounts {
			if int(a) >= len(m.AccountKeys) {
				return Message{}, 0, fmt.Errorf("account: %w", errBadIndex)
			}
		}
	}
	return m, r.off, nil
}

type reader struct {
	b   []byte
	off int
	err error
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.b) {
		r.err = errTruncated
		return nil
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out
}

func (r *reader) compactU16() int {
	if r.err != nil {
		return 0
	}
	v, n, err := readCompactU16(r.b[r.off:])
	if err != nil {
		r.err = err
		return 0
	}
	r.off += n
	return v
}
