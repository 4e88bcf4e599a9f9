package chain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TxType classifies a transaction in the common model.
type TxType string

// Transaction types.
const (
	TxTransfer TxType = "transfer"
	TxUnknown  TxType = "unknown"
)

// TxIO is one side of a transfer: an address and the amount, in base units,
// that it sent or received.
type TxIO struct {
	Address string
	Amount  decimal.Decimal
}

// Tx is the common transaction shape every adapter translates explorer and
// SDK responses into. Amounts are integer base units (satoshi, wei, uatom).
type Tx struct {
	Asset       Asset
	Hash        string
	From        []TxIO
	To          []TxIO
	Date        time.Time
	Type        TxType
	Fee         decimal.Decimal
	Memo        string
	BlockHeight int64
}

// TxsPage is one page of transaction history.
type TxsPage struct {
	Total int
	Txs   []Tx
}

// Balance is the amount of one asset held by an address, in base units.
type Balance struct {
	Asset  Asset
	Amount decimal.Decimal
}

// TxHistoryParams selects a page of transaction history for an address.
type TxHistoryParams struct {
	Address string
	// Offset is the number of transactions to skip from the most recent.
	Offset int
	// Limit caps the page size. Zero means the adapter default.
	Limit int
	// Asset restricts history to a single asset where the backing
	// explorer supports it. Nil means the chain's native asset.
	Asset *Asset
}

// DefaultTxPageLimit is used when TxHistoryParams.Limit is zero.
const DefaultTxPageLimit = 10

// Normalize clamps pagination parameters to sane values.
func (p TxHistoryParams) Normalize() TxHistoryParams {
	if p.Limit <= 0 {
		p.Limit = DefaultTxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// TransferParams bundles everything needed to build, sign and broadcast a
// transfer. Amount is in base units of the asset.
type TransferParams struct {
	Asset       Asset
	Amount      decimal.Decimal
	Recipient   string
	Memo        string
	WalletIndex uint32
	// FeeOption selects which of the three fee tiers to pay. Defaults to
	// FeeFast when unset.
	FeeOption FeeOption
	// FeeRate overrides the fee-rate lookup for UTXO chains when
	// non-zero, in satoshis per virtual byte.
	FeeRate float64
	// SpendPending allows unconfirmed outputs to be selected as inputs on
	// UTXO chains. Off by default.
	SpendPending bool
}
