package anchor

import (
	"crypto/sha256"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/protocol/pda"
)

// InterfaceVersion is the version of the fortune_cookie program interface
// this package describes. Layouts and discriminators below are fixed for it.
const InterfaceVersion = "0.1.0"

// DefaultProgramID is the deployed fortune_cookie program.
var DefaultProgramID = domain.MustPublicKey("GpPcUYfhJzGwpN1xwNMHRiEGmj2BnvAtPkZSn2Nyi8n8")

// SystemProgramID owns every freshly created account.
var SystemProgramID = domain.PublicKey{}

// Seed tags, exactly as the program spells them.
const (
	CookieSeed = "cookie"
	StatsSeed  = "stats"
)

// Instruction and account names used to compute discriminators.
const (
	ixInitializeStats = "initialize_stats"
	ixOpenCookie      = "open_cookie"
	acctFortuneCookie = "FortuneCookie"
	acctStats         = "Stats"
)

// Discriminator is the 8-byte prefix that tags instruction data and account data.
type Discriminator [8]byte

// Discriminators, fixed for InterfaceVersion.
var (
	InitializeStatsDiscriminator = instructionDiscriminator(ixInitializeStats)
	OpenCookieDiscriminator      = instructionDiscriminator(ixOpenCookie)
	CookieAccountDiscriminator   = accountDiscriminator(acctFortuneCookie)
	StatsAccountDiscriminator    = accountDiscriminator(acctStats)
)

func instructionDiscriminator(name string) Discriminator {
	return hashPrefix("global:" + name)
}

func accountDiscriminator(name string) Discriminator {
	return hashPrefix("account:" + name)
}

func hashPrefix(s string) Discriminator {
	sum := sha256.Sum256([]byte(s))
	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

// Custom program error codes.
const (
	// ErrCodeInvalidArchetype is returned for an archetype index of 4 or more.
	ErrCodeInvalidArchetype = 6000
	// ErrCodeConstraintSeeds is the framework's seeds constraint violation.
	ErrCodeConstraintSeeds = 2006
)

// CookieSeeds returns the seeds of the cookie owned by owner at counter.
func CookieSeeds(owner domain.PublicKey, counter uint64) [][]byte {
	return [][]byte{owner.Slice(), []byte(CookieSeed), pda.U64LE(counter)}
}

// StatsSeeds returns the seeds of the singleton stats account.
func StatsSeeds() [][]byte {
	return [][]byte{[]byte(StatsSeed)}
}

// CookieAddress derives where the cookie for (owner, counter) lives.
func CookieAddress(program, owner domain.PublicKey, counter uint64) (domain.DerivedAddress, error) {
	return pda.FindProgramAddress(CookieSeeds(owner, counter), program)
}

// StatsAddress derives the singleton stats account.
func StatsAddress(program domain.PublicKey) (domain.DerivedAddress, error) {
	return pda.FindProgramAddress(StatsSeeds(), program)
}
