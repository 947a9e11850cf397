package anchor

import (
	"encoding/binary"
	"fmt"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/protocol/txn"
)

// InitializeStats builds the instruction that creates the stats account,
// paid for by payer.
func InitializeStats(program, payer domain.PublicKey, stats domain.PublicKey) txn.Instruction {
	return txn.Instruction{
		ProgramID: program,
		Accounts: []txn.AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: stats, IsWritable: true},
			{PublicKey: SystemProgramID},
		},
		Data: append([]byte(nil), InitializeStatsDiscriminator[:]...),
	}
}

// OpenCookie builds the instruction that creates the cookie for
// (user, counter) and bumps the stats counter.
func OpenCookie(
	program, user, cookie, stats domain.PublicKey,
	archetype domain.Archetype,
	counter uint64,
) txn.Instruction {
	return txn.Instruction{
		ProgramID: program,
		Accounts: []txn.AccountMeta{
			{PublicKey: user, IsSigner: true, IsWritable: true},
			{PublicKey: cookie, IsWritable: true},
			{PublicKey: stats, IsWritable: true},
			{PublicKey: SystemProgramID},
		},
		Data: EncodeOpenCookieArgs(archetype, counter),
	}
}

// OpenCookieArgsSize is discriminator + u8 archetype + u64 counter.
const OpenCookieArgsSize = 8 + 1 + 8

// EncodeOpenCookieArgs serializes the open_cookie instruction data.
func EncodeOpenCookieArgs(archetype domain.Archetype, counter uint64) []byte {
	b := make([]byte, OpenCookieArgsSize)
	copy(b, OpenCookieDiscriminator[:])
	b[8] = byte(archetype)
	binary.LittleEndian.PutUint64(b[9:], counter)
	return b
}

// DecodeOpenCookieArgs parses open_cookie instruction data.
func DecodeOpenCookieArgs(data []byte) (domain.Archetype, uint64, error) {
	if len(data) != OpenCookieArgsSize {
		return 0, 0, fmt.Errorf("open_cookie args: want %d bytes, got %d", OpenCookieArgsSize, len(data))
	}
	if Discriminator(data[:8]) != OpenCookieDiscriminator {
		return 0, 0, fmt.Errorf("open_cookie args: discriminator mismatch")
	}
	return domain.Archetype(data[8]), binary.LittleEndian.Uint64(data[9:]), nil
}
