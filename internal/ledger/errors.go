package ledger

import (
	"fmt"
	"strings"

	"fortunecookie/internal/domain"
)

// RPCError is an error member returned by the ledger. It unwraps to the
// domain sentinel it was classified as, so callers match it with errors.Is.
type RPCError struct {
	Method  string
	Code    int
	Message string
	// Err is the raw on-chain error from a failed simulation, if any.
	Err  string
	Logs []string
}

func (e *RPCError) Error() string {
	if e.Err != "" {
		return fmt.Sprintf("%s: rpc error %d: %s (%s)", e.Method, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: rpc error %d: %s", e.Method, e.Code, e.Message)
}

// Unwrap returns the sentinels this error is classified as.
func (e *RPCError) Unwrap() []error {
	var out []error
	if e.Code == CodePreflightFailure || e.Code == CodeSignatureVerifyErr {
		out = append(out, domain.ErrSimulationRejected)
	} else {
		out = append(out, domain.ErrNetwork)
	}
	if e.mentions("already in use") {
		out = append(out, domain.ErrAlreadyInitialized)
	}
	return out
}

// mentions reports whether the message or any simulation log contains s.
func (e *RPCError) mentions(s string) bool {
	if strings.Contains(e.Message, s) {
		return true
	}
	for _, l := range e.Logs {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

func newRPCError(method string, obj *ErrorObject) *RPCError {
	e := &RPCError{Method: method, Code: obj.Code, Message: obj.Message}
	if obj.Data != nil {
		e.Logs = obj.Data.Logs
		if len(obj.Data.Err) > 0 && string(obj.Data.Err) != "null" {
			e.Err = string(obj.Data.Err)
		}
	}
	return e
}
