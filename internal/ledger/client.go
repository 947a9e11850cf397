package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"golang.org/x/time/rate"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/observability/metrics"
)

// Client talks JSON-RPC to a ledger node over HTTP.
type Client struct {
	Endpoint string
	HTTP     *http.Client

	commitment domain.Commitment
	limiter    *rate.Limiter
	log        *slog.Logger
	metrics    *metrics.RPCMetrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTP = hc
		}
	}
}

// WithCommitment sets the commitment used for reads and preflight.
func WithCommitment(cm domain.Commitment) Option {
	return func(c *Client) {
		if cm != "" {
			c.commitment = cm
		}
	}
}

// WithRateLimit caps outgoing requests at rps with the given burst. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = logging.OrDefault(l) }
}

// New returns a client for the node at endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		Endpoint:   endpoint,
		HTTP:       http.DefaultClient,
		commitment: domain.CommitmentConfirmed,
		log:        slog.Default(),
		metrics:    metrics.RPC(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Commitment returns the commitment the client reads at.
func (c *Client) Commitment() domain.Commitment { return c.commitment }

// LatestBlockhash returns a recent blockhash for building transactions.
func (c *Client) LatestBlockhash(ctx context.Context) (domain.Blockhash, error) {
	var res BlockhashResult
	err := c.call(ctx, MethodGetLatestBlockhash, &res, CommitmentConfig{Commitment: string(c.commitment)})
	if err != nil {
		return domain.Blockhash{}, err
	}
	h, err := domain.ParseHash(res.Value.Blockhash)
	if err != nil {
		return domain.Blockhash{}, fmt.Errorf("%w: %s: %w", domain.ErrNetwork, MethodGetLatestBlockhash, err)
	}
	return domain.Blockhash{Hash: h, LastValidBlockHeight: res.Value.LastValidBlockHeight}, nil
}

// SendTransaction submits raw with preflight simulation enabled.
func (c *Client) SendTransaction(ctx context.Context, raw []byte) (domain.Signature, error) {
	var sig string
	err := c.call(ctx, MethodSendTransaction, &sig,
		base64.StdEncoding.EncodeToString(raw),
		SendConfig{Encoding: "base64", PreflightCommitment: string(c.commitment)},
	)
	if err != nil {
		return domain.Signature{}, err
	}
	out, err := domain.ParseSignature(sig)
	if err != nil {
		return domain.Signature{}, fmt.Errorf("%w: %s: %w", domain.ErrNetwork, MethodSendTransaction, err)
	}
	return out, nil
}

// SignatureStatus reports whether sig has been seen and at what commitment.
func (c *Client) SignatureStatus(ctx context.Context, sig domain.Signature) (domain.SignatureStatus, bool, error) {
	var res StatusesResult
	err := c.call(ctx, MethodGetSignatureStatuses, &res,
		[]string{sig.String()},
		StatusesConfig{SearchTransactionHistory: false},
	)
	if err != nil {
		return domain.SignatureStatus{}, false, err
	}
	if len(res.Value) == 0 || res.Value[0] == nil {
		return domain.SignatureStatus{}, false, nil
	}
	v := res.Value[0]
	st := domain.SignatureStatus{
		Slot:               v.Slot,
		ConfirmationStatus: domain.Commitment(v.ConfirmationStatus),
	}
	if len(v.Err) > 0 && string(v.Err) != "null" {
		st.Err = string(v.Err)
	}
	return st, true, nil
}

// ProgramAccounts lists the addresses of accounts owned by program that
// pass every filter. Data is sliced to zero bytes.
func (c *Client) ProgramAccounts(
	ctx context.Context,
	program domain.PublicKey,
	filters ...domain.AccountFilter,
) ([]domain.PublicKey, error) {
	cfg := ProgramAccountsConfig{
		Commitment: string(c.commitment),
		Encoding:   "base64",
		DataSlice:  &DataSlice{Offset: 0, Length: 0},
	}
	for _, f := range filters {
		switch {
		case f.DataSize != nil:
			size := *f.DataSize
			cfg.Filters = append(cfg.Filters, FilterObject{DataSize: &size})
		case f.Memcmp != nil:
			cfg.Filters = append(cfg.Filters, FilterObject{Memcmp: &MemcmpFilter{
				Offset: f.Memcmp.Offset,
				Bytes:  base58.Encode(f.Memcmp.Bytes),
			}})
		}
	}
	var res []KeyedAccount
	if err := c.call(ctx, MethodGetProgramAccounts, &res, program.String(), cfg); err != nil {
		return nil, err
	}
	out := make([]domain.PublicKey, 0, len(res))
	for _, ka := range res {
		k, err := domain.ParsePublicKey(ka.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrNetwork, MethodGetProgramAccounts, err)
		}
		out = append(out, k)
	}
	return out, nil
}

// AccountInfo fetches the account at addr; ok is false if it does not exist.
func (c *Client) AccountInfo(ctx context.Context, addr domain.PublicKey) (domain.AccountInfo, bool, error) {
	var res AccountInfoResult
	err := c.call(ctx, MethodGetAccountInfo, &res,
		addr.String(),
		CommitmentConfig{Commitment: string(c.commitment), Encoding: "base64"},
	)
	if err != nil {
		return domain.AccountInfo{}, false, err
	}
	if res.Value == nil {
		return domain.AccountInfo{}, false, nil
	}
	info, err := decodeAccount(*res.Value)
	if err != nil {
		return domain.AccountInfo{}, false, fmt.Errorf("%w: %s: %w", domain.ErrNetwork, MethodGetAccountInfo, err)
	}
	return info, true, nil
}

func decodeAccount(v AccountValue) (domain.AccountInfo, error) {
	owner, err := domain.ParsePublicKey(v.Owner)
	if err != nil {
		return domain.AccountInfo{}, err
	}
	if v.Data[1] != "" && v.Data[1] != "base64" {
		return domain.AccountInfo{}, fmt.Errorf("unexpected account encoding %q", v.Data[1])
	}
	data, err := base64.StdEncoding.DecodeString(v.Data[0])
	if err != nil {
		return domain.AccountInfo{}, fmt.Errorf("account data: %w", err)
	}
	return domain.AccountInfo{Owner: owner, Lamports: v.Lamports, Data: data}, nil
}

// call performs one JSON-RPC round trip and decodes the result into out.
func (c *Client) call(ctx context.Context, method string, out any, params ...any) error {
	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.Observe(method, outcome, time.Since(start))
	}()

	if err := c.wait(ctx, method); err != nil {
		outcome = "transport_error"
		return fmt.Errorf("%w: %s: %w", domain.ErrNetwork, method, err)
	}

	req := Request{JSONRPC: "2.0", ID: uuid.NewString(), Method: method}
	for _, p := range params {
		raw, err := json.Marshal(p)
		if err != nil {
			outcome = "encode_error"
			return fmt.Errorf("%s: encode params: %w", method, err)
		}
		req.Params = append(req.Params, raw)
	}

	resp, err := c.post(ctx, req)
	if err != nil {
		outcome = "transport_error"
		c.log.Debug("ledger request failed", "method", method, "id", req.ID, "err", err)
		return fmt.Errorf("%w: %s: %w", domain.ErrNetwork, method, err)
	}
	if resp.Error != nil {
		outcome = "rpc_error"
		rerr := newRPCError(method, resp.Error)
		c.log.Debug("ledger returned error", "method", method, "id", req.ID,
			"code", rerr.Code, "message", rerr.Message, "logs", len(rerr.Logs))
		return rerr
	}
	if out != nil {
		if len(resp.Result) == 0 {
			outcome = "decode_error"
			return fmt.Errorf("%w: %s: empty result", domain.ErrNetwork, method)
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			outcome = "decode_error"
			return fmt.Errorf("%w: %s: decode result: %w", domain.ErrNetwork, method, err)
		}
	}
	return nil
}

func (c *Client) wait(ctx context.Context, method string) error {
	if c.limiter == nil {
		return nil
	}
	if c.limiter.Tokens() < 1 {
		c.metrics.RecordThrottle(method)
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) post(ctx context.Context, in Request) (*Response, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("ledger post %s: %s", in.Method, resp.Status)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.ID != in.ID {
		return nil, errors.New("response id does not match request")
	}
	return &out, nil
}

// Compile-time assertion that Client implements domain.LedgerClient.
var _ domain.LedgerClient = (*Client)(nil)
