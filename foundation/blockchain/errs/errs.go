// Package errs carries the node's error-kind taxonomy so callers can
// distinguish expected rejections (bad signature, forked chain, stale
// mempool entry) from the underlying Go error, without leaking the core
// packages' internal error types across subsystem boundaries.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a rejection. Kinds are never meant for
// display; they're how the node facade and peer layer decide what to log
// versus what to surface to a caller.
type Kind string

// The full set of error kinds a peer message or control-surface command
// can be rejected with.
const (
	StructureInvalid       Kind = "structure_invalid"
	IndexMismatch          Kind = "index_mismatch"
	PrevHashMismatch       Kind = "prev_hash_mismatch"
	TimestampOutOfRange    Kind = "timestamp_out_of_range"
	HashMismatch           Kind = "hash_mismatch"
	DifficultyNotMet       Kind = "difficulty_not_met"
	TransactionIDMismatch  Kind = "transaction_id_mismatch"
	SignatureInvalid       Kind = "signature_invalid"
	UTXOMissing            Kind = "utxo_missing"
	AmountsUnbalanced      Kind = "amounts_unbalanced"
	CoinbaseInvalid        Kind = "coinbase_invalid"
	DuplicateInputsInBlock Kind = "duplicate_inputs_in_block"
	ConflictInMempool      Kind = "conflict_in_mempool"
	InsufficientFunds      Kind = "insufficient_funds"
	AddressInvalid         Kind = "address_invalid"
	TransportError         Kind = "transport_error"
	ParseError             Kind = "parse_error"
)

// Error wraps an underlying error with its Kind.
type Error struct {
	Kind Kind
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap supports errors.Is/As against the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a Kind-tagged error from a format string.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap tags an existing error with a Kind.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the Kind from err, if it (or something it wraps) is an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
