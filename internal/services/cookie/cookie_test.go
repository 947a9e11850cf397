package cookie_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
	"fortunecookie/internal/fortunes"
	"fortunecookie/internal/ledger"
	"fortunecookie/internal/ledger/ledgertest"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/protocol/anchor"
	"fortunecookie/internal/protocol/txn"
	"fortunecookie/internal/services/cookie"
	"fortunecookie/internal/services/counter"
)

var program = anchor.DefaultProgramID

type env struct {
	srv      *ledgertest.Server
	client   *ledger.Client
	signer   *txn.KeypairSigner
	sub      *cookie.Submitter
	resolver *cookie.Resolver
	counter  *counter.Service
}

func newEnv(t *testing.T, opts cookie.Options) *env {
	t.Helper()
	srv := ledgertest.NewServer(program)
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)
	c := ledger.New(hs.URL, ledger.WithHTTPClient(hs.Client()))
	kp, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	if opts.PollInterval == 0 {
		opts.PollInterval = 5 * time.Millisecond
	}
	opts.Logger = logging.Discard()
	return &env{
		srv:      srv,
		client:   c,
		signer:   txn.NewKeypairSigner(kp),
		sub:      cookie.NewSubmitter(c, program, opts),
		resolver: cookie.NewResolver(c, program, fortunes.Default()),
		counter:  counter.New(c, program),
	}
}

type decliningSigner struct{ pub domain.PublicKey }

func (d decliningSigner) PublicKey() domain.PublicKey { return d.pub }
func (d decliningSigner) SignMessage(context.Context, []byte) (domain.Signature, error) {
	return domain.Signature{}, domain.ErrSigningDeclined
}

func (e *env) crack(t *testing.T, archetype domain.Archetype) (domain.OpenReceipt, error) {
	t.Helper()
	ctx := context.Background()
	n, err := e.counter.NextCounter(ctx, e.signer.PublicKey())
	require.NoError(t, err)
	addr, err := anchor.CookieAddress(program, e.signer.PublicKey(), n)
	require.NoError(t, err)
	return e.sub.OpenCookie(ctx, e.signer, archetype, n, addr)
}

func TestOpenAndResolve(t *testing.T) {
	e := newEnv(t, cookie.Options{})
	ctx := context.Background()
	_, err := e.sub.InitializeStats(ctx, e.signer)
	require.NoError(t, err)

	seen := map[domain.PublicKey]bool{}
	for i := 0; i < 4; i++ {
		receipt, err := e.crack(t, domain.ArchetypeBuilder)
		require.NoError(t, err)
		require.EqualValues(t, i, receipt.Counter)
		require.False(t, seen[receipt.Cookie.Address], "address reused")
		seen[receipt.Cookie.Address] = true

		f, err := e.resolver.ResolveFortune(ctx, e.signer.PublicKey(), receipt)
		require.NoError(t, err)
		require.Equal(t, domain.ArchetypeBuilder, f.Archetype)
		require.NotEmpty(t, f.Text)
		require.Equal(t, receipt, f.Receipt)
		require.Less(t, f.Record.FortuneID, uint64(50))
	}

	n, err := e.counter.NextCounter(ctx, e.signer.PublicKey())
	require.NoError(t, err)
	require.EqualValues(t, 4, n)
}

func TestOpen_WaitsForConfirmation(t *testing.T) {
	e := newEnv(t, cookie.Options{})
	e.srv.ConfirmAfter(3)
	_, err := e.sub.InitializeStats(context.Background(), e.signer)
	require.NoError(t, err)
	require.GreaterOrEqual(t, e.srv.Calls(ledger.MethodGetSignatureStatuses), 4)
}

func TestOpen_SigningDeclined(t *testing.T) {
	e := newEnv(t, cookie.Options{})
	_, err := e.sub.InitializeStats(context.Background(), e.signer)
	require.NoError(t, err)

	addr, err := anchor.CookieAddress(program, e.signer.PublicKey(), 0)
	require.NoError(t, err)
	_, err = e.sub.OpenCookie(context.Background(), decliningSigner{e.signer.PublicKey()}, domain.ArchetypeVC, 0, addr)
	require.ErrorIs(t, err, domain.ErrSigningDeclined)
	require.Equal(t, 1, e.srv.Calls(ledger.MethodSendTransaction), "declined transaction must not be sent")
}

func TestOpen_ConfirmationTimeout(t *testing.T) {
	e := newEnv(t, cookie.Options{ConfirmTimeout: 50 * time.Millisecond})
	e.srv.HideStatuses(true)
	_, err := e.sub.InitializeStats(context.Background(), e.signer)
	require.ErrorIs(t, err, domain.ErrConfirmationTimeout)
}

func TestOpen_CounterRaceFailsAfterInclusion(t *testing.T) {
	e := newEnv(t, cookie.Options{})
	ctx := context.Background()
	_, err := e.sub.InitializeStats(ctx, e.signer)
	require.NoError(t, err)

	addr, err := anchor.CookieAddress(program, e.signer.PublicKey(), 0)
	require.NoError(t, err)
	_, err = e.sub.OpenCookie(ctx, e.signer, domain.ArchetypeDegen, 0, addr)
	require.NoError(t, err)

	// A second client derived the same counter before the first landed.
	e.srv.SetPreflight(false)
	_, err = e.sub.OpenCookie(ctx, e.signer, domain.ArchetypeDegen, 0, addr)
	require.ErrorIs(t, err, domain.ErrTransactionFailed)
}

func TestOpen_Rejected(t *testing.T) {
	e := newEnv(t, cookie.Options{})
	addr, err := anchor.CookieAddress(program, e.signer.PublicKey(), 0)
	require.NoError(t, err)
	_, err = e.sub.OpenCookie(context.Background(), e.signer, domain.ArchetypeDegen, 0, addr)
	require.ErrorIs(t, err, domain.ErrSimulationRejected)
}

func TestOpen_NoSigner(t *testing.T) {
	e := newEnv(t, cookie.Options{})
	_, err := e.sub.OpenCookie(context.Background(), nil, domain.ArchetypeDegen, 0, domain.DerivedAddress{})
	require.ErrorIs(t, err, domain.ErrNoSigner)
}

func TestResolve_DriftDetected(t *testing.T) {
	e := newEnv(t, cookie.Options{})
	ctx := context.Background()
	_, err := e.sub.InitializeStats(ctx, e.signer)
	require.NoError(t, err)
	receipt, err := e.crack(t, domain.ArchetypeFounder)
	require.NoError(t, err)

	bad := receipt
	bad.Cookie.Bump++
	_, err = e.resolver.ResolveFortune(ctx, e.signer.PublicKey(), bad)
	require.ErrorIs(t, err, domain.ErrProtocolDrift)

	_, err = e.resolver.ResolveFortune(ctx, domain.PublicKey{1}, receipt)
	require.ErrorIs(t, err, domain.ErrProtocolDrift)

	data, ok := e.srv.Account(receipt.Cookie.Address)
	require.True(t, ok)
	data[0] ^= 0xff
	e.srv.PutAccount(receipt.Cookie.Address, program, data)
	_, err = e.resolver.ResolveFortune(ctx, e.signer.PublicKey(), receipt)
	require.ErrorIs(t, err, domain.ErrProtocolDrift)
}

func TestResolve_RarityOutOfRangeFallsBackToCommon(t *testing.T) {
	e := newEnv(t, cookie.Options{})
	ctx := context.Background()
	addr, err := anchor.CookieAddress(program, e.signer.PublicKey(), 0)
	require.NoError(t, err)
	rec := domain.CookieRecord{
		Owner:     e.signer.PublicKey(),
		Archetype: domain.ArchetypeVC,
		FortuneID: 37,
		Rarity:    domain.Rarity(200),
		Bump:      addr.Bump,
	}
	e.srv.PutAccount(addr.Address, program, anchor.EncodeCookie(rec))

	f, err := e.resolver.ResolveFortune(ctx, e.signer.PublicKey(), domain.OpenReceipt{Cookie: addr, Archetype: domain.ArchetypeVC})
	require.NoError(t, err)
	require.Equal(t, domain.RarityCommon, f.Rarity)
	want, err := fortunes.Default().Pick(domain.ArchetypeVC, domain.RarityCommon, 37)
	require.NoError(t, err)
	require.Equal(t, want, f.Text)
}

func TestResolve_Missing(t *testing.T) {
	e := newEnv(t, cookie.Options{})
	addr, err := anchor.CookieAddress(program, e.signer.PublicKey(), 0)
	require.NoError(t, err)
	_, err = e.resolver.ResolveFortune(context.Background(), e.signer.PublicKey(), domain.OpenReceipt{Cookie: addr})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
