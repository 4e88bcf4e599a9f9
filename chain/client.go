package chain

import "context"

// Client is the interface every per-blockchain wallet adapter implements.
// Implementations translate these operations into calls against the chain's
// SDK or public block-explorer API; they hold the wallet keychain for the
// operations that need key material (Address, Transfer).
type Client interface {
	// Chain returns the chain this client adapts.
	Chain() ID

	// Network returns the network the client was constructed for.
	Network() Network

	// Address derives (and caches) the wallet address at the given index.
	Address(index uint32) (string, error)

	// ValidateAddress checks an address against the chain's format rules.
	// It returns nil for a valid address and ErrInvalidAddress (wrapped)
	// otherwise.
	ValidateAddress(address string) error

	// Balances fetches the asset balances of an address, in base units.
	Balances(ctx context.Context, address string) ([]Balance, error)

	// Transactions fetches a page of transaction history for an address,
	// most recent first.
	Transactions(ctx context.Context, params TxHistoryParams) (*TxsPage, error)

	// Transaction fetches a single transaction by hash. Unknown hashes
	// yield ErrTxNotFound.
	Transaction(ctx context.Context, txID string) (*Tx, error)

	// Fees quotes the current transfer fee at the three standard tiers,
	// in base units of the native asset.
	Fees(ctx context.Context) (*Fees, error)

	// Transfer builds, signs and broadcasts a transfer, returning the
	// transaction hash.
	Transfer(ctx context.Context, params TransferParams) (string, error)
}
