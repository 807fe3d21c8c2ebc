package model

import "errors"

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ErrorKind classifies wallet failures
type ErrorKind string

const (
	// KindValidation is bad user input: never retried
	KindValidation ErrorKind = "VALIDATION"
	// KindAuth is a wrong password or mnemonic: session stays unchanged
	KindAuth ErrorKind = "AUTH"
	// KindNetwork is an unreachable RPC or API: safe to retry manually
	KindNetwork ErrorKind = "NETWORK"
	// KindChain is a reverted or rejected transaction
	KindChain ErrorKind = "CHAIN"
	// KindCorruptLocalState is an unparseable persisted envelope
	KindCorruptLocalState ErrorKind = "CORRUPT_LOCAL_STATE"
	// KindSession is an operation not allowed in the current session state
	KindSession ErrorKind = "SESSION"
)

// WalletError is an error with a kind and a user-facing message
type WalletError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *WalletError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *WalletError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error with a user-facing reason
func NewValidationError(msg string) error {
	return &WalletError{Kind: KindValidation, Message: msg}
}

// NewAuthError creates an authentication error
func NewAuthError(msg string) error {
	return &WalletError{Kind: KindAuth, Message: msg}
}

// NewNetworkError wraps a transport failure
func NewNetworkError(msg string, err error) error {
	return &WalletError{Kind: KindNetwork, Message: msg, Err: err}
}

// NewChainError wraps a chain rejection
func NewChainError(msg string, err error) error {
	return &WalletError{Kind: KindChain, Message: msg, Err: err}
}

// NewSessionError reports an operation invalid for the session state
func NewSessionError(msg string) error {
	return &WalletError{Kind: KindSession, Message: msg}
}

// KindOf returns the kind of a wallet error, or "" for foreign errors
func KindOf(err error) ErrorKind {
	var we *WalletError
	if errors.As(err, &we) {
		return we.Kind
	}
	return ""
}

// IsKind checks if err is a WalletError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
