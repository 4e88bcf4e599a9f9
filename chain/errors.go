package chain

import "errors"

var (
	// ErrUnsupportedChain is returned when a chain ID does not name a
	// supported blockchain.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrInsufficientFunds is returned when a transfer cannot be funded
	// from the available balance or unspent outputs.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrTxNotFound is returned when a transaction hash is unknown to the
	// chain or its explorer.
	ErrTxNotFound = errors.New("transaction not found")

	// ErrInvalidAddress is returned when an address fails chain-specific
	// validation.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidAmount is returned when a transfer amount is zero,
	// negative, or not representable in base units.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrWalletLocked is returned when an operation needs key material but
	// the wallet has not been unlocked.
	ErrWalletLocked = errors.New("wallet is locked")

	// ErrClientNotRegistered is returned by the registry when no client
	// has been registered for the requested chain.
	ErrClientNotRegistered = errors.New("no client registered for chain")
)
