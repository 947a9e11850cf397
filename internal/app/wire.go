package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/fortunes"
	"fortunecookie/internal/ledger"
	"fortunecookie/internal/observability/logging"
	cookiesvc "fortunecookie/internal/services/cookie"
	countersvc "fortunecookie/internal/services/counter"
	"fortunecookie/internal/services/crack"
	identitysvc "fortunecookie/internal/services/identity"
	statssvc "fortunecookie/internal/services/stats"
	"fortunecookie/internal/store"
)

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Config    Config
	Program   domain.PublicKey
	Log       *slog.Logger
	Ledger    *ledger.Client
	Keystore  *store.KeypairFileStore
	Identity  *identitysvc.Service
	Fortunes  *fortunes.Pool
	Counter   *countersvc.Service
	Submitter *cookiesvc.Submitter
	Resolver  *cookiesvc.Resolver
	Stats     *statssvc.Cache
}

// NewWire constructs the dependency graph from cfg. A nil httpClient uses
// http.DefaultClient.
func NewWire(cfg Config, log *slog.Logger, httpClient *http.Client) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log = logging.OrDefault(log)
	program, err := domain.ParsePublicKey(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("program_id: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	commitment := domain.Commitment(cfg.Commitment)

	pool, err := fortunes.Load(cfg.FortunesPath)
	if err != nil {
		return nil, err
	}

	lc := ledger.New(cfg.RPCURL,
		ledger.WithHTTPClient(httpClient),
		ledger.WithCommitment(commitment),
		ledger.WithRateLimit(cfg.RPCRateLimit, cfg.RPCBurst),
		ledger.WithLogger(log.With("component", "ledger")),
	)
	ks := store.NewKeypairFileStore(cfg.Home)
	sub := cookiesvc.NewSubmitter(lc, program, cookiesvc.Options{
		ConfirmTimeout: cfg.ConfirmTimeout,
		PollInterval:   cfg.PollInterval,
		Logger:         log.With("component", "submitter"),
		Commitment:     commitment,
	})

	return &Wire{
		Config:    cfg,
		Program:   program,
		Log:       log,
		Ledger:    lc,
		Keystore:  ks,
		Identity:  identitysvc.New(ks),
		Fortunes:  pool,
		Counter:   countersvc.New(lc, program),
		Submitter: sub,
		Resolver:  cookiesvc.NewResolver(lc, program, pool),
		Stats:     statssvc.New(lc, sub, program, log.With("component", "stats")),
	}, nil
}

// Dispatcher returns a crack dispatcher for signer, which may be nil.
func (w *Wire) Dispatcher(signer domain.Signer, choose crack.Chooser, onChange func(crack.View)) *crack.Dispatcher {
	return crack.New(crack.Config{
		Program:   w.Program,
		Signer:    signer,
		Counter:   w.Counter,
		Submitter: w.Submitter,
		Resolver:  w.Resolver,
		Stats:     w.Stats,
		Choose:    choose,
		Logger:    w.Log.With("component", "crack"),
		OnChange:  onChange,
	})
}
