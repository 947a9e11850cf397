package ledgertest

import (
	"bytes"
	"fmt"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/protocol/anchor"
	"fortunecookie/internal/protocol/pda"
	"fortunecookie/internal/protocol/txn"
)

// Anchor framework error codes the emulator can raise.
const (
	codeConstraintSeeds        = anchor.ErrCodeConstraintSeeds
	codeAccountNotInitialized  = 3012
	codeInvalidArchetype       = anchor.ErrCodeInvalidArchetype
	codeInstructionFallback    = 101
	codeAccountNotEnoughKeys   = 3005
	codeConstraintMut          = 2000
	codeAccountNotSigner       = 3010
	codeAccountOwnedByWrongPgm = 3007
)

// rentExempt is the minimum balance for an account of size bytes.
func rentExempt(size int) uint64 { return uint64(128+size) * 6960 }

// FortuneID reproduces the program's fortune id mix for a cookie opened at slot.
func FortuneID(slot uint64, user domain.PublicKey, archetype domain.Archetype, counter uint64) uint64 {
	seed := slot
	for i, b := range user {
		seed += uint64(b) * uint64(i+1)
	}
	seed += uint64(archetype)
	seed += counter
	return seed % 50
}

// RarityFor reproduces the program's rarity roll: 70% common, 20% rare,
// 9% epic, 1% legendary.
func RarityFor(slot uint64, user domain.PublicKey, archetype domain.Archetype) domain.Rarity {
	seed := slot * 7
	for i := range user {
		seed += uint64(user[len(user)-1-i]) * uint64(i+3)
	}
	seed = (seed + uint64(archetype)) * 13
	switch score := seed % 100; {
	case score < 70:
		return domain.RarityCommon
	case score < 90:
		return domain.RarityRare
	case score < 99:
		return domain.RarityEpic
	default:
		return domain.RarityLegendary
	}
}

// txError is an instruction failure in the shape the node reports it.
type txError struct {
	index  int
	custom uint32
	logs   []string
}

func (e *txError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: custom program error: 0x%x", e.index, e.custom)
}

// errJSON is the InstructionError object carried in data.err and statuses.
func (e *txError) errJSON() string {
	return fmt.Sprintf(`{"InstructionError":[%d,{"Custom":%d}]}`, e.index, e.custom)
}

// execution stages account writes for one transaction so a failure
// leaves ledger state untouched.
type execution struct {
	s      *Server
	msg    txn.Message
	slot   uint64
	writes map[domain.PublicKey]*account
	logs   []string
}

func (x *execution) get(k domain.PublicKey) (*account, bool) {
	if a, ok := x.writes[k]; ok {
		return a, true
	}
	a, ok := x.s.accounts[k]
	if !ok {
		return nil, false
	}
	cp := *a
	cp.data = append([]byte(nil), a.data...)
	return &cp, true
}

func (x *execution) put(k domain.PublicKey, a *account) { x.writes[k] = a }

func (x *execution) run(i int, ix txn.CompiledInstruction) *txError {
	program := x.msg.AccountKeys[ix.ProgramIndex]
	if program != x.s.program {
		x.logs = append(x.logs, fmt.Sprintf("Program %s invoke [1]", program), "Program is not executable")
		return &txError{index: i, custom: codeInstructionFallback, logs: x.logs}
	}
	x.logs = append(x.logs, fmt.Sprintf("Program %s invoke [1]", program))
	if len(ix.Data) < 8 {
		return x.fail(i, codeInstructionFallback, "InstructionFallbackNotFound", "Fallback functions are not supported")
	}
	switch anchor.Discriminator(ix.Data[:8]) {
	case anchor.InitializeStatsDiscriminator:
		x.logs = append(x.logs, "Program log: Instruction: InitializeStats")
		return x.initializeStats(i, ix)
	case anchor.OpenCookieDiscriminator:
		x.logs = append(x.logs, "Program log: Instruction: OpenCookie")
		return x.openCookie(i, ix)
	}
	return x.fail(i, codeInstructionFallback, "InstructionFallbackNotFound", "Fallback functions are not supported")
}

func (x *execution) fail(i int, code uint32, name, msg string) *txError {
	x.logs = append(x.logs,
		fmt.Sprintf("Program log: AnchorError occurred. Error Code: %s. Error Number: %d. Error Message: %s.", name, code, msg),
		fmt.Sprintf("Program %s failed: custom program error: 0x%x", x.s.program, code),
	)
	return &txError{index: i, custom: code, logs: x.logs}
}

// accountAt resolves the n-th account of ix and its signer and writable flags.
func (x *execution) accountAt(ix txn.CompiledInstruction, n int) (domain.PublicKey, bool, bool) {
	idx := int(ix.Accounts[n])
	return x.msg.AccountKeys[idx], x.msg.IsSigner(idx), x.msg.IsWritable(idx)
}

// create allocates a program-owned account at addr, failing like the
// system program when it already exists.
func (x *execution) create(i int, addr domain.PublicKey, data []byte) *txError {
	if _, exists := x.get(addr); exists {
		x.logs = append(x.logs,
			"Program 11111111111111111111111111111111 invoke [2]",
			fmt.Sprintf("Allocate: account Address { address: %s, base: None } already in use", addr),
			"Program 11111111111111111111111111111111 failed: custom program error: 0x0",
			fmt.Sprintf("Program %s failed: custom program error: 0x0", x.s.program),
		)
		return &txError{index: i, custom: 0, logs: x.logs}
	}
	x.put(addr, &account{owner: x.s.program, lamports: rentExempt(len(data)), data: data})
	return nil
}

func (x *execution) checkSeeds(i int, addr domain.PublicKey, seeds [][]byte) (uint8, *txError) {
	d, err := pda.FindProgramAddress(seeds, x.s.program)
	if err != nil || d.Address != addr {
		x.logs = append(x.logs, fmt.Sprintf("Program log: Left: %s", addr))
		if err == nil {
			x.logs = append(x.logs, fmt.Sprintf("Program log: Right: %s", d.Address))
		}
		return 0, x.fail(i, codeConstraintSeeds, "ConstraintSeeds", "A seeds constraint was violated")
	}
	return d.Bump, nil
}

func (x *execution) initializeStats(i int, ix txn.CompiledInstruction) *txError {
	if len(ix.Accounts) < 3 {
		return x.fail(i, codeAccountNotEnoughKeys, "AccountNotEnoughKeys", "Not enough account keys given to the instruction")
	}
	if len(ix.Data) != 8 {
		return x.fail(i, 102, "InstructionDidNotDeserialize", "The program could not deserialize the given instruction")
	}
	_, payerSigned, payerWritable := x.accountAt(ix, 0)
	if !payerSigned {
		return x.fail(i, codeAccountNotSigner, "AccountNotSigner", "The given account did not sign")
	}
	if !payerWritable {
		return x.fail(i, codeConstraintMut, "ConstraintMut", "A mut constraint was violated")
	}
	stats, _, _ := x.accountAt(ix, 1)
	bump, terr := x.checkSeeds(i, stats, anchor.StatsSeeds())
	if terr != nil {
		return terr
	}
	if terr := x.create(i, stats, anchor.EncodeStats(domain.StatsRecord{Bump: bump})); terr != nil {
		return terr
	}
	return nil
}

func (x *execution) openCookie(i int, ix txn.CompiledInstruction) *txError {
	if len(ix.Accounts) < 4 {
		return x.fail(i, codeAccountNotEnoughKeys, "AccountNotEnoughKeys", "Not enough account keys given to the instruction")
	}
	archetype, counter, err := anchor.DecodeOpenCookieArgs(ix.Data)
	if err != nil {
		return x.fail(i, 102, "InstructionDidNotDeserialize", "The program could not deserialize the given instruction")
	}
	user, userSigned, userWritable := x.accountAt(ix, 0)
	if !userSigned {
		return x.fail(i, codeAccountNotSigner, "AccountNotSigner", "The given account did not sign")
	}
	if !userWritable {
		return x.fail(i, codeConstraintMut, "ConstraintMut", "A mut constraint was violated")
	}

	cookie, _, _ := x.accountAt(ix, 1)
	cookieBump, terr := x.checkSeeds(i, cookie, anchor.CookieSeeds(user, counter))
	if terr != nil {
		return terr
	}
	// Allocation happens during account validation, before the handler runs.
	if terr := x.create(i, cookie, make([]byte, anchor.CookieAccountSize)); terr != nil {
		return terr
	}

	statsKey, _, _ := x.accountAt(ix, 2)
	statsAcct, ok := x.get(statsKey)
	if !ok {
		return x.fail(i, codeAccountNotInitialized, "AccountNotInitialized",
			"The program expected this account to be already initialized")
	}
	if statsAcct.owner != x.s.program {
		return x.fail(i, codeAccountOwnedByWrongPgm, "AccountOwnedByWrongProgram",
			"The given account is owned by a different program than expected")
	}
	stats, err := anchor.DecodeStats(statsAcct.data)
	if err != nil {
		return x.fail(i, 3002, "AccountDiscriminatorMismatch", "Discriminator did not match what was expected")
	}
	seeds := append(anchor.StatsSeeds(), []byte{stats.Bump})
	if addr, err := pda.CreateProgramAddress(seeds, x.s.program); err != nil || addr != statsKey {
		return x.fail(i, codeConstraintSeeds, "ConstraintSeeds", "A seeds constraint was violated")
	}

	if !archetype.Valid() {
		return x.fail(i, codeInvalidArchetype, "InvalidArchetype", "Invalid archetype (must be 0-3)")
	}

	rec := domain.CookieRecord{
		Owner:     user,
		Archetype: archetype,
		FortuneID: FortuneID(x.slot, user, archetype, counter),
		Rarity:    RarityFor(x.slot, user, archetype),
		Bump:      cookieBump,
	}
	x.put(cookie, &account{owner: x.s.program, lamports: rentExempt(anchor.CookieAccountSize), data: anchor.EncodeCookie(rec)})

	stats.TotalOpens++
	statsAcct.data = anchor.EncodeStats(stats)
	x.put(statsKey, statsAcct)
	return nil
}

// hasPrefix reports whether data at offset begins with want.
func hasPrefix(data []byte, offset uint64, want []byte) bool {
	if offset > uint64(len(data)) {
		return false
	}
	return bytes.HasPrefix(data[offset:], want)
}
