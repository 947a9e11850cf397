package ledgertest_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
	"fortunecookie/internal/ledger"
	"fortunecookie/internal/ledger/ledgertest"
	"fortunecookie/internal/protocol/anchor"
	"fortunecookie/internal/protocol/txn"
)

var program = anchor.DefaultProgramID

type harness struct {
	srv *ledgertest.Server
	c   *ledger.Client
	kp  domain.Keypair
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := ledgertest.NewServer(program, ledgertest.WithStartSlot(1000))
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)
	kp, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	return &harness{srv: srv, c: ledger.New(hs.URL, ledger.WithHTTPClient(hs.Client())), kp: kp}
}

func (h *harness) send(t *testing.T, ix txn.Instruction) (domain.Signature, error) {
	t.Helper()
	ctx := context.Background()
	bh, err := h.c.LatestBlockhash(ctx)
	require.NoError(t, err)
	tx, err := txn.New(h.kp.Public, bh.Hash, ix)
	require.NoError(t, err)
	require.NoError(t, tx.Sign(ctx, txn.NewKeypairSigner(h.kp)))
	raw, err := tx.Serialize()
	require.NoError(t, err)
	return h.c.SendTransaction(ctx, raw)
}

func (h *harness) initStats(t *testing.T) domain.DerivedAddress {
	t.Helper()
	stats, err := anchor.StatsAddress(program)
	require.NoError(t, err)
	_, err = h.send(t, anchor.InitializeStats(program, h.kp.Public, stats.Address))
	require.NoError(t, err)
	return stats
}

func (h *harness) open(t *testing.T, archetype domain.Archetype, counter uint64) (domain.DerivedAddress, error) {
	t.Helper()
	stats, err := anchor.StatsAddress(program)
	require.NoError(t, err)
	cookie, err := anchor.CookieAddress(program, h.kp.Public, counter)
	require.NoError(t, err)
	_, err = h.send(t, anchor.OpenCookie(program, h.kp.Public, cookie.Address, stats.Address, archetype, counter))
	return cookie, err
}

func TestOpenCookie_WritesRecordAndCountsOpen(t *testing.T) {
	h := newHarness(t)
	stats := h.initStats(t)

	slot := h.srv.Slot()
	cookie, err := h.open(t, domain.ArchetypeVC, 0)
	require.NoError(t, err)

	data, ok := h.srv.Account(cookie.Address)
	require.True(t, ok)
	rec, err := anchor.DecodeCookie(data)
	require.NoError(t, err)
	require.Equal(t, h.kp.Public, rec.Owner)
	require.Equal(t, domain.ArchetypeVC, rec.Archetype)
	require.Equal(t, cookie.Bump, rec.Bump)
	require.Equal(t, ledgertest.FortuneID(slot, h.kp.Public, domain.ArchetypeVC, 0), rec.FortuneID)
	require.Less(t, rec.FortuneID, uint64(50))
	require.Equal(t, ledgertest.RarityFor(slot, h.kp.Public, domain.ArchetypeVC), rec.Rarity)

	raw, ok := h.srv.Account(stats.Address)
	require.True(t, ok)
	st, err := anchor.DecodeStats(raw)
	require.NoError(t, err)
	require.EqualValues(t, 1, st.TotalOpens)
}

func TestOpenCookie_InvalidArchetype(t *testing.T) {
	h := newHarness(t)
	h.initStats(t)

	cookie, err := h.open(t, domain.Archetype(4), 0)
	require.ErrorIs(t, err, domain.ErrSimulationRejected)
	require.Contains(t, err.Error(), "0x1770")
	_, ok := h.srv.Account(cookie.Address)
	require.False(t, ok, "failed simulation must not write state")
}

func TestOpenCookie_SameCounterTwiceIsAlreadyInUse(t *testing.T) {
	h := newHarness(t)
	h.initStats(t)

	_, err := h.open(t, domain.ArchetypeDegen, 0)
	require.NoError(t, err)
	_, err = h.open(t, domain.ArchetypeDegen, 0)
	require.ErrorIs(t, err, domain.ErrAlreadyInitialized)
}

func TestOpenCookie_WrongSeedsRejected(t *testing.T) {
	h := newHarness(t)
	stats := h.initStats(t)

	wrong, err := anchor.CookieAddress(program, h.kp.Public, 5)
	require.NoError(t, err)
	_, err = h.send(t, anchor.OpenCookie(program, h.kp.Public, wrong.Address, stats.Address, domain.ArchetypeDegen, 0))
	require.ErrorIs(t, err, domain.ErrSimulationRejected)

	var rerr *ledger.RPCError
	require.ErrorAs(t, err, &rerr)
	require.Contains(t, rerr.Err, "2006")
}

func TestOpenCookie_StatsMissing(t *testing.T) {
	h := newHarness(t)
	_, err := h.open(t, domain.ArchetypeBuilder, 0)
	require.ErrorIs(t, err, domain.ErrSimulationRejected)
	require.Contains(t, err.Error(), "0xbc4")
}

func TestWithoutPreflight_FailureLandsWithError(t *testing.T) {
	h := newHarness(t)
	h.initStats(t)
	h.srv.SetPreflight(false)

	_, err := h.open(t, domain.ArchetypeFounder, 0)
	require.NoError(t, err)

	stats, err := anchor.StatsAddress(program)
	require.NoError(t, err)
	cookie, err := anchor.CookieAddress(program, h.kp.Public, 0)
	require.NoError(t, err)
	sig, err := h.send(t, anchor.OpenCookie(program, h.kp.Public, cookie.Address, stats.Address, domain.ArchetypeFounder, 0))
	require.NoError(t, err)

	st, ok, err := h.c.SignatureStatus(context.Background(), sig)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, st.Err, "InstructionError")
}

func TestProgramAccounts_FiltersByOwner(t *testing.T) {
	h := newHarness(t)
	h.initStats(t)
	for i := uint64(0); i < 3; i++ {
		_, err := h.open(t, domain.ArchetypeDegen, i)
		require.NoError(t, err)
	}
	// A foreign cookie must not be counted.
	h.srv.PutAccount(domain.PublicKey{1}, program, anchor.EncodeCookie(domain.CookieRecord{Owner: domain.PublicKey{2}}))

	keys, err := h.c.ProgramAccounts(context.Background(), program, anchor.OwnerFilters(h.kp.Public)...)
	require.NoError(t, err)
	require.Len(t, keys, 3)
}

func TestConfirmAfter(t *testing.T) {
	h := newHarness(t)
	h.srv.ConfirmAfter(2)
	stats, err := anchor.StatsAddress(program)
	require.NoError(t, err)
	sig, err := h.send(t, anchor.InitializeStats(program, h.kp.Public, stats.Address))
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		st, ok, err := h.c.SignatureStatus(ctx, sig)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, domain.CommitmentProcessed, st.ConfirmationStatus)
	}
	st, _, err := h.c.SignatureStatus(ctx, sig)
	require.NoError(t, err)
	require.Equal(t, domain.CommitmentConfirmed, st.ConfirmationStatus)
}

func TestRarityTiers(t *testing.T) {
	counts := map[domain.Rarity]int{}
	user := domain.PublicKey{3, 1, 4, 1, 5, 9, 2, 6}
	for slot := uint64(0); slot < 10000; slot++ {
		counts[ledgertest.RarityFor(slot, user, domain.ArchetypeDegen)]++
	}
	for _, r := range []domain.Rarity{domain.RarityCommon, domain.RarityRare, domain.RarityEpic, domain.RarityLegendary} {
		require.Positive(t, counts[r], "rarity %s never rolled", r)
	}
	require.Greater(t, counts[domain.RarityCommon], counts[domain.RarityRare])
}
