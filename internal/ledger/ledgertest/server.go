package ledgertest

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/mr-tron/base58"

	"fortunecookie/internal/domain"
	"fortunecookie/internal/ledger"
	"fortunecookie/internal/observability/logging"
	"fortunecookie/internal/protocol/txn"
)

type account struct {
	owner    domain.PublicKey
	lamports uint64
	data     []byte
}

type status struct {
	slot  uint64
	err   string
	polls int
}

// Server is an in-memory ledger that runs the fortune_cookie program and
// answers the JSON-RPC methods the client uses. It is safe for concurrent use.
type Server struct {
	mu sync.Mutex

	program   domain.PublicKey
	slot      uint64
	accounts  map[domain.PublicKey]*account
	statuses  map[domain.Signature]*status
	recent    map[domain.Hash]uint64
	calls     map[string]int
	failNext  map[string]*ledger.ErrorObject
	log       *slog.Logger
	confirmAt int
	preflight bool
	hidden    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = logging.OrDefault(l) } }

// WithStartSlot sets the slot the first transaction lands in.
func WithStartSlot(slot uint64) Option { return func(s *Server) { s.slot = slot } }

// NewServer returns an emulator hosting program.
func NewServer(program domain.PublicKey, opts ...Option) *Server {
	s := &Server{
		program:   program,
		slot:      1,
		accounts:  map[domain.PublicKey]*account{},
		statuses:  map[domain.Signature]*status{},
		recent:    map[domain.Hash]uint64{},
		calls:     map[string]int{},
		failNext:  map[string]*ledger.ErrorObject{},
		log:       logging.Discard(),
		preflight: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConfirmAfter makes a landed transaction report "processed" for the first
// n status polls before reporting "confirmed".
func (s *Server) ConfirmAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirmAt = n
}

// SetPreflight toggles simulation. With preflight off, failing transactions
// still land and report their error through getSignatureStatuses.
func (s *Server) SetPreflight(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preflight = on
}

// HideStatuses makes getSignatureStatuses report every signature as unknown.
func (s *Server) HideStatuses(hide bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden = hide
}

// FailNext makes the next call to method return obj.
func (s *Server) FailNext(method string, obj ledger.ErrorObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[method] = &obj
}

// Calls returns how many times method was invoked.
func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// Slot returns the slot the next transaction lands in.
func (s *Server) Slot() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slot
}

// Account returns a copy of the data stored at addr.
func (s *Server) Account(addr domain.PublicKey) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[addr]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), a.data...), true
}

// PutAccount stores data at addr owned by owner, replacing what was there.
func (s *Server) PutAccount(addr, owner domain.PublicKey, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[addr] = &account{owner: owner, lamports: rentExempt(len(data)), data: append([]byte(nil), data...)}
}

// ServeHTTP answers one JSON-RPC request.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()
	var req ledger.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, ledger.Response{JSONRPC: "2.0", Error: &ledger.ErrorObject{
			Code: -32700, Message: "Parse error",
		}})
		return
	}
	result, rerr := s.dispatch(req)
	resp := ledger.Response{JSONRPC: "2.0", ID: req.ID}
	if rerr != nil {
		resp.Error = rerr
		s.log.Debug("rpc error", "method", req.Method, "code", rerr.Code, "message", rerr.Message)
	} else {
		raw, err := json.Marshal(result)
		if err != nil {
			resp.Error = &ledger.ErrorObject{Code: ledger.CodeInternal, Message: err.Error()}
		} else {
			resp.Result = raw
		}
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) dispatch(req ledger.Request) (any, *ledger.ErrorObject) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[req.Method]++
	if obj, ok := s.failNext[req.Method]; ok {
		delete(s.failNext, req.Method)
		return nil, obj
	}
	switch req.Method {
	case ledger.MethodGetLatestBlockhash:
		return s.latestBlockhash(), nil
	case ledger.MethodSendTransaction:
		return s.sendTransaction(req.Params)
	case ledger.MethodGetSignatureStatuses:
		return s.signatureStatuses(req.Params)
	case ledger.MethodGetProgramAccounts:
		return s.programAccounts(req.Params)
	case ledger.MethodGetAccountInfo:
		return s.accountInfo(req.Params)
	}
	return nil, &ledger.ErrorObject{Code: ledger.CodeMethodNotFound, Message: "Method not found"}
}

func invalidParams(format string, args ...any) *ledger.ErrorObject {
	return &ledger.ErrorObject{Code: ledger.CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func param[T any](params []json.RawMessage, i int, out *T) *ledger.ErrorObject {
	if i >= len(params) {
		return nil
	}
	if err := json.Unmarshal(params[i], out); err != nil {
		return invalidParams("Invalid params: %v", err)
	}
	return nil
}

func (s *Server) latestBlockhash() ledger.BlockhashResult {
	var seed [16]byte
	binary.LittleEndian.PutUint64(seed[:], s.slot)
	binary.LittleEndian.PutUint64(seed[8:], uint64(len(s.recent)))
	h := domain.Hash(sha256.Sum256(seed[:]))
	s.recent[h] = s.slot

	var res ledger.BlockhashResult
	res.Context.Slot = s.slot
	res.Value.Blockhash = h.String()
	res.Value.LastValidBlockHeight = s.slot + 150
	return res
}

func (s *Server) sendTransaction(params []json.RawMessage) (any, *ledger.ErrorObject) {
	var encoded string
	if len(params) == 0 {
		return nil, invalidParams("Invalid params: missing transaction")
	}
	if e := param(params, 0, &encoded); e != nil {
		return nil, e
	}
	cfg := ledger.SendConfig{Encoding: "base58"}
	if e := param(params, 1, &cfg); e != nil {
		return nil, e
	}
	var raw []byte
	var err error
	switch cfg.Encoding {
	case "base64":
		raw, err = base64.StdEncoding.DecodeString(encoded)
	case "base58", "":
		raw, err = base58.Decode(encoded)
	default:
		return nil, invalidParams("Invalid params: unsupported encoding %q", cfg.Encoding)
	}
	if err != nil {
		return nil, invalidParams("Invalid params: %v", err)
	}
	tx, err := txn.Decode(raw)
	if err != nil {
		return nil, invalidParams("failed to deserialize transaction: %v", err)
	}
	if !tx.VerifySignatures() {
		return nil, &ledger.ErrorObject{Code: ledger.CodeSignatureVerifyErr, Message: "Transaction signature verification failure"}
	}
	if _, ok := s.recent[tx.Message.RecentBlockhash]; !ok {
		return nil, preflightError("Blockhash not found", `"BlockhashNotFound"`, nil)
	}
	sig := tx.Signature()
	if _, dup := s.statuses[sig]; dup {
		return nil, preflightError("Transaction has already been processed", `"AlreadyProcessed"`, nil)
	}

	x := &execution{s: s, msg: tx.Message, slot: s.slot, writes: map[domain.PublicKey]*account{}}
	var failure *txError
	for i, ix := range tx.Message.Instructions {
		if failure = x.run(i, ix); failure != nil {
			break
		}
		x.logs = append(x.logs, fmt.Sprintf("Program %s success", s.program))
	}

	if failure != nil && (s.preflight && !cfg.SkipPreflight) {
		return nil, preflightError("Transaction simulation failed: "+failure.Error(), failure.errJSON(), failure.logs)
	}

	st := &status{slot: s.slot}
	if failure != nil {
		st.err = failure.errJSON()
	} else {
		for k, a := range x.writes {
			s.accounts[k] = a
		}
	}
	s.statuses[sig] = st
	s.log.Debug("transaction landed", "signature", sig.String(), "slot", s.slot, "failed", failure != nil)
	s.slot++
	return sig.String(), nil
}

func preflightError(msg, errJSON string, logs []string) *ledger.ErrorObject {
	return &ledger.ErrorObject{
		Code:    ledger.CodePreflightFailure,
		Message: msg,
		Data:    &ledger.SimulationData{Err: json.RawMessage(errJSON), Logs: logs},
	}
}

func (s *Server) signatureStatuses(params []json.RawMessage) (any, *ledger.ErrorObject) {
	var sigs []string
	if e := param(params, 0, &sigs); e != nil {
		return nil, e
	}
	res := ledger.StatusesResult{Context: ledger.Context{Slot: s.slot}}
	for _, text := range sigs {
		sig, err := domain.ParseSignature(text)
		if err != nil {
			return nil, invalidParams("Invalid param: %v", err)
		}
		st, ok := s.statuses[sig]
		if !ok || s.hidden {
			res.Value = append(res.Value, nil)
			continue
		}
		st.polls++
		level := domain.CommitmentConfirmed
		if st.polls <= s.confirmAt {
			level = domain.CommitmentProcessed
		}
		v := &ledger.StatusValue{Slot: st.slot, ConfirmationStatus: string(level), Err: json.RawMessage("null")}
		if st.err != "" {
			v.Err = json.RawMessage(st.err)
		}
		res.Value = append(res.Value, v)
	}
	return res, nil
}

func (s *Server) programAccounts(params []json.RawMessage) (any, *ledger.ErrorObject) {
	var programText string
	if e := param(params, 0, &programText); e != nil {
		return nil, e
	}
	program, err := domain.ParsePublicKey(programText)
	if err != nil {
		return nil, invalidParams("Invalid param: %v", err)
	}
	var cfg ledger.ProgramAccountsConfig
	if e := param(params, 1, &cfg); e != nil {
		return nil, e
	}
	type filter struct {
		size   *uint64
		offset uint64
		bytes  []byte
	}
	var filters []filter
	for _, f := range cfg.Filters {
		switch {
		case f.DataSize != nil:
			filters = append(filters, filter{size: f.DataSize})
		case f.Memcmp != nil:
			b, err := base58.Decode(f.Memcmp.Bytes)
			if err != nil {
				return nil, invalidParams("Invalid param: memcmp bytes: %v", err)
			}
			filters = append(filters, filter{offset: f.Memcmp.Offset, bytes: b})
		default:
			return nil, invalidParams("Invalid param: empty filter")
		}
	}

	keys := make([]domain.PublicKey, 0)
	for k, a := range s.accounts {
		if a.owner != program {
			continue
		}
		match := true
		for _, f := range filters {
			if f.size != nil && uint64(len(a.data)) != *f.size {
				match = false
			}
			if f.size == nil && !hasPrefix(a.data, f.offset, f.bytes) {
				match = false
			}
		}
		if match {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	out := make([]ledger.KeyedAccount, 0, len(keys))
	for _, k := range keys {
		a := s.accounts[k]
		out = append(out, ledger.KeyedAccount{Pubkey: k.String(), Account: encodeAccount(a, cfg.DataSlice)})
	}
	return out, nil
}

func (s *Server) accountInfo(params []json.RawMessage) (any, *ledger.ErrorObject) {
	var addrText string
	if e := param(params, 0, &addrText); e != nil {
		return nil, e
	}
	addr, err := domain.ParsePublicKey(addrText)
	if err != nil {
		return nil, invalidParams("Invalid param: %v", err)
	}
	res := ledger.AccountInfoResult{Context: ledger.Context{Slot: s.slot}}
	if a, ok := s.accounts[addr]; ok {
		v := encodeAccount(a, nil)
		res.Value = &v
	}
	return res, nil
}

func encodeAccount(a *account, slice *ledger.DataSlice) ledger.AccountValue {
	data := a.data
	if slice != nil {
		start := min(slice.Offset, uint64(len(data)))
		end := min(start+slice.Length, uint64(len(data)))
		data = data[start:end]
	}
	return ledger.AccountValue{
		Data:      [2]string{base64.StdEncoding.EncodeToString(data), "base64"},
		Owner:     a.owner.String(),
		Lamports:  a.lamports,
		RentEpoch: ^uint64(0),
		Space:     uint64(len(a.data)),
	}
}
