package crack_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"fortunecookie/internal/crypto"
	"fortunecookie/internal/domain"
	"fortunecookie/internal/fortunes"
	"fortunecookie/internal/ledger"
	"fortunecookie/internal/ledger/ledgertest"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/observability/metrics"
	"fortunecookie/internal/protocol/anchor"
	"fortunecookie/internal/protocol/txn"
	"fortunecookie/internal/services/cookie"
	"fortunecookie/internal/services/counter"
	"fortunecookie/internal/services/crack"
	"fortunecookie/internal/services/stats"
)

var program = anchor.DefaultProgramID

type env struct {
	srv    *ledgertest.Server
	signer *txn.KeypairSigner
	cfg    crack.Config
}

func newEnv(t *testing.T) *env {
	t.Helper()
	srv := ledgertest.NewServer(program)
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)
	c := ledger.New(hs.URL, ledger.WithHTTPClient(hs.Client()))
	kp, err := crypto.GenerateKeypair()
	require.NoError(t, err)
	sub := cookie.NewSubmitter(c, program, cookie.Options{PollInterval: 5 * time.Millisecond, Logger: logging.Discard()})
	signer := txn.NewKeypairSigner(kp)
	return &env{
		srv:    srv,
		signer: signer,
		cfg: crack.Config{
			Program:   program,
			Signer:    signer,
			Counter:   counter.New(c, program),
			Submitter: sub,
			Resolver:  cookie.NewResolver(c, program, fortunes.Default()),
			Stats:     stats.New(c, sub, program, logging.Discard()),
			Choose:    crack.Fixed(domain.ArchetypeBuilder),
			Logger:    logging.Discard(),
		},
	}
}

func TestCrack_SequentialCounters(t *testing.T) {
	e := newEnv(t)
	d := crack.New(e.cfg)
	ctx := context.Background()
	require.NoError(t, d.InitializeStats(ctx))

	for i := uint64(0); i < 3; i++ {
		v, ok := d.Crack(ctx)
		require.True(t, ok)
		require.Empty(t, v.LastError)
		require.False(t, v.Loading)
		require.NotNil(t, v.Fortune)
		require.Equal(t, i, v.Fortune.Receipt.Counter)
		require.Equal(t, domain.ArchetypeBuilder, v.Fortune.Archetype)
		require.NotEmpty(t, v.Fortune.Text)
		require.Equal(t, v.Fortune.Receipt.Signature, v.Signature)
		require.True(t, v.TotalKnown)
		require.Equal(t, i+1, v.Total)

		want, err := anchor.CookieAddress(program, e.signer.PublicKey(), i)
		require.NoError(t, err)
		_, exists := e.srv.Account(want.Address)
		require.True(t, exists, "cookie %d", i)
	}
}

func TestCrack_RandomChooserUsesValidArchetype(t *testing.T) {
	e := newEnv(t)
	e.cfg.Choose = crack.Random()
	d := crack.New(e.cfg)
	ctx := context.Background()
	require.NoError(t, d.InitializeStats(ctx))

	v, ok := d.Crack(ctx)
	require.True(t, ok)
	require.Empty(t, v.LastError)
	require.True(t, v.Fortune.Archetype.Valid())
}

func TestCrack_NoSigner(t *testing.T) {
	e := newEnv(t)
	e.cfg.Signer = nil
	d := crack.New(e.cfg)

	v, ok := d.Crack(context.Background())
	require.True(t, ok)
	require.Equal(t, crack.MsgNoWallet, v.LastError)
	require.Nil(t, v.Fortune)
	require.Zero(t, e.srv.Calls(ledger.MethodSendTransaction))
}

func TestCrack_StatsNotReady(t *testing.T) {
	e := newEnv(t)
	d := crack.New(e.cfg)

	v, _ := d.Crack(context.Background())
	require.Equal(t, crack.MsgStatsNotReady, v.LastError)
	require.Zero(t, e.srv.Calls(ledger.MethodSendTransaction))
}

type decliner struct{ pub domain.PublicKey }

func (d decliner) PublicKey() domain.PublicKey { return d.pub }
func (decliner) SignMessage(context.Context, []byte) (domain.Signature, error) {
	return domain.Signature{}, domain.ErrSigningDeclined
}

func TestCrack_Declined(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, crack.New(e.cfg).InitializeStats(ctx))

	e.cfg.Signer = decliner{pub: e.signer.PublicKey()}
	d := crack.New(e.cfg)
	v, _ := d.Crack(ctx)
	require.Equal(t, crack.MsgDeclined, v.LastError)
	require.Equal(t, 1, e.srv.Calls(ledger.MethodSendTransaction), "only the stats init was sent")
}

func TestCrack_FailureKeepsPreviousFortune(t *testing.T) {
	e := newEnv(t)
	d := crack.New(e.cfg)
	ctx := context.Background()
	require.NoError(t, d.InitializeStats(ctx))

	first, _ := d.Crack(ctx)
	require.NotNil(t, first.Fortune)

	e.srv.FailNext(ledger.MethodGetProgramAccounts, ledger.ErrorObject{Code: ledger.CodeInternal, Message: "boom"})
	v, _ := d.Crack(ctx)
	require.Equal(t, crack.MsgFailed, v.LastError)
	require.Equal(t, first.Fortune, v.Fortune)
	require.False(t, v.Loading)
}

// gate blocks NextCounter until released.
type gate struct {
	domain.CounterResolver
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gate) NextCounter(ctx context.Context, owner domain.PublicKey) (uint64, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
	}
	<-g.release
	return g.CounterResolver.NextCounter(ctx, owner)
}

func TestCrack_SingleFlight(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, crack.New(e.cfg).InitializeStats(ctx))

	g := &gate{CounterResolver: e.cfg.Counter, entered: make(chan struct{}), release: make(chan struct{})}
	e.cfg.Counter = g
	var loading atomic.Int32
	e.cfg.OnChange = func(v crack.View) {
		if v.Loading {
			loading.Add(1)
		}
	}
	d := crack.New(e.cfg)

	ignored := metrics.Crack().OutcomesVec().WithLabelValues("ignored")
	before := testutil.ToFloat64(ignored)

	require.True(t, d.Go(ctx))
	<-g.entered
	require.True(t, d.View().Loading)
	require.False(t, d.Go(ctx))
	_, ok := d.Crack(ctx)
	require.False(t, ok)
	require.Equal(t, before+2, testutil.ToFloat64(ignored))

	close(g.release)
	d.Wait()
	require.EqualValues(t, 1, g.calls.Load())
	require.EqualValues(t, 1, loading.Load())
	require.Equal(t, 2, e.srv.Calls(ledger.MethodSendTransaction))

	v := d.View()
	require.False(t, v.Loading)
	require.NotNil(t, v.Fortune)

	// The gate is released after completion.
	v, ok = d.Crack(ctx)
	require.True(t, ok)
	require.EqualValues(t, 1, v.Fortune.Receipt.Counter)
}

type drifting struct{ calls atomic.Int32 }

func (r *drifting) ResolveFortune(context.Context, domain.PublicKey, domain.OpenReceipt) (domain.Fortune, error) {
	r.calls.Add(1)
	return domain.Fortune{}, fmt.Errorf("%w: bump mismatch", domain.ErrProtocolDrift)
}

func TestCrack_DriftIsLatched(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, crack.New(e.cfg).InitializeStats(ctx))

	r := &drifting{}
	e.cfg.Resolver = r
	d := crack.New(e.cfg)

	v, _ := d.Crack(ctx)
	require.Equal(t, crack.MsgDrift, v.LastError)
	sent := e.srv.Calls(ledger.MethodSendTransaction)

	v, _ = d.Crack(ctx)
	require.Equal(t, crack.MsgDrift, v.LastError)
	require.Equal(t, sent, e.srv.Calls(ledger.MethodSendTransaction), "no submission after drift")
	require.EqualValues(t, 1, r.calls.Load())
}

func TestInitializeStats_Failure(t *testing.T) {
	e := newEnv(t)
	e.srv.FailNext(ledger.MethodGetAccountInfo, ledger.ErrorObject{Code: ledger.CodeInternal, Message: "down"})
	d := crack.New(e.cfg)

	require.Error(t, d.InitializeStats(context.Background()))
	require.Equal(t, crack.MsgStatsInitFailed, d.View().LastError)
}

func TestMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{domain.ErrNoSigner, crack.MsgNoWallet},
		{domain.ErrStatsNotReady, crack.MsgStatsNotReady},
		{domain.ErrSigningDeclined, crack.MsgDeclined},
		{fmt.Errorf("x: %w", domain.ErrProtocolDrift), crack.MsgDrift},
		{domain.ErrSimulationRejected, crack.MsgFailed},
		{domain.ErrConfirmationTimeout, crack.MsgFailed},
		{fmt.Errorf("x: %w", domain.ErrNetwork), crack.MsgFailed},
	}
	for _, c := range cases {
		require.Equal(t, c.want, crack.Message(c.err), "%v", c.err)
	}
}
