package bitcoincash

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/chains/utxo"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// Size in bytes of a legacy 1-in-2-out P2PKH transfer, used for fee quotes.
const typicalTxSize = 10 + 148 + 2*34

// Config configures a Bitcoin Cash client.
type Config struct {
	Network  chain.Network    `validate:"required,oneof=mainnet testnet"`
	Keychain *wallet.Keychain `validate:"required"`

	// HaskoinURL overrides the public endpoint, mainly for tests.
	HaskoinURL string

	Explorer *explorer.Client
	Logger   *zap.Logger
}

// Client is the Bitcoin Cash adapter.
var _ chain.Client = (*Client)(nil)

type Client struct {
	network  chain.Network
	prefix   string
	params   *chaincfg.Params
	keychain *wallet.Keychain
	haskoin  *explorer.Haskoin
	fees     *explorer.FeeSource
	logger   *zap.Logger
}

// NewClient builds a Bitcoin Cash client.
func NewClient(cfg Config) (*Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid bitcoincash config: %w", err)
	}

	prefix := MainnetPrefix
	params := &chaincfg.MainNetParams
	if cfg.Network == chain.Testnet {
		prefix = TestnetPrefix
		params = &chaincfg.TestNet3Params
	}

	rest := cfg.Explorer
	if rest == nil {
		rest = explorer.New(explorer.WithLogger(cfg.Logger))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		network:  cfg.Network,
		prefix:   prefix,
		params:   params,
		keychain: cfg.Keychain,
		haskoin:  explorer.NewHaskoin(rest, cfg.HaskoinURL),
		// No public fee oracle serves BCH; block space is cheap enough
		// that the static rate clears.
		fees:   explorer.NewFeeSource(rest, "", explorer.FallbackFeeRateBCH),
		logger: logger.With(zap.String("chain", chain.BCH.String())),
	}, nil
}

// Chain returns the chain this client adapts.
func (c *Client) Chain() chain.ID {
	return chain.BCH
}

// Network returns the network the client was constructed for.
func (c *Client) Network() chain.Network {
	return c.network
}

// Address derives the cashaddr at the given index.
func (c *Client) Address(index uint32) (string, error) {
	return c.keychain.CachedAddress(chain.BCH, index, func() (string, error) {
		priv, err := c.keychain.PrivateKey(chain.BCH, index)
		if err != nil {
			return "", err
		}
		hash := btcutil.Hash160(priv.PubKey().SerializeCompressed())
		return EncodeCashAddr(c.prefix, hash)
	})
}

// ValidateAddress accepts cashaddr and legacy base58 P2PKH addresses.
func (c *Client) ValidateAddress(address string) error {
	_, err := legacyAddress(address, c.prefix, c.params)
	return err
}

// Balances fetches the address balance, confirmed plus unconfirmed, in
// satoshis.
func (c *Client) Balances(ctx context.Context, address string) ([]chain.Balance, error) {
	bal, err := c.haskoin.Balance(ctx, address)
	if err != nil {
		return nil, err
	}
	total := decimal.NewFromInt(bal.Confirmed + bal.Unconfirmed)
	return []chain.Balance{{Asset: chain.NativeAsset(chain.BCH), Amount: total}}, nil
}

// Transactions fetches one page of transaction history for an address.
func (c *Client) Transactions(ctx context.Context, params chain.TxHistoryParams) (*chain.TxsPage, error) {
	params = params.Normalize()

	bal, err := c.haskoin.Balance(ctx, params.Address)
	if err != nil {
		return nil, err
	}
	raw, err := c.haskoin.AddressTxs(ctx, params.Address, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}

	txs := make([]chain.Tx, 0, len(raw))
	for i := range raw {
		txs = append(txs, *c.mapTx(&raw[i]))
	}
	return &chain.TxsPage{Total: bal.TxCount, Txs: txs}, nil
}

// Transaction fetches a single transaction by hash.
func (c *Client) Transaction(ctx context.Context, txID string) (*chain.Tx, error) {
	raw, err := c.haskoin.Tx(ctx, txID)
	if err != nil {
		if errors.Is(err, explorer.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", txID, chain.ErrTxNotFound)
		}
		return nil, err
	}
	return c.mapTx(raw), nil
}

func (c *Client) mapTx(raw *explorer.HaskoinTx) *chain.Tx {
	from := make([]chain.TxIO, 0, len(raw.Inputs))
	for _, in := range raw.Inputs {
		if in.Address == "" {
			continue // coinbase
		}
		from = append(from, chain.TxIO{Address: in.Address, Amount: decimal.NewFromInt(in.Value)})
	}
	to := make([]chain.TxIO, 0, len(raw.Outputs))
	for _, out := range raw.Outputs {
		if out.Address == "" {
			continue // OP_RETURN
		}
		to = append(to, chain.TxIO{Address: out.Address, Amount: decimal.NewFromInt(out.Value)})
	}

	return &chain.Tx{
		Asset:       chain.NativeAsset(chain.BCH),
		Hash:        raw.TxID,
		From:        from,
		To:          to,
		Date:        time.Unix(raw.Time, 0).UTC(),
		Type:        chain.TxTransfer,
		Fee:         decimal.NewFromInt(raw.Fee),
		BlockHeight: raw.Block.Height,
	}
}

// Fees quotes the fee of a typical transfer at each tier, in satoshis.
func (c *Client) Fees(ctx context.Context) (*chain.Fees, error) {
	rates := c.fees.FeeRates(ctx)
	quote := func(rate float64) decimal.Decimal {
		return decimal.NewFromFloat(rate * typicalTxSize).Ceil()
	}
	return &chain.Fees{
		Type:    chain.FeePerByte,
		Average: quote(rates.Average),
		Fast:    quote(rates.Fast),
		Fastest: quote(rates.Fastest),
	}, nil
}

// Transfer builds, signs and broadcasts a transfer, returning the
// transaction hash.
func (c *Client) Transfer(ctx context.Context, params chain.TransferParams) (string, error) {
	if !params.Asset.IsNative() && params.Asset != (chain.Asset{}) {
		return "", fmt.Errorf("BCH holds no tokens: %w", chain.ErrUnsupportedChain)
	}
	amount := params.Amount.IntPart()
	if !params.Amount.IsPositive() || !params.Amount.Equal(decimal.NewFromInt(amount)) {
		return "", fmt.Errorf("amount %s is not a positive satoshi count: %w",
			params.Amount, chain.ErrInvalidAmount)
	}

	recipient, err := legacyAddress(params.Recipient, c.prefix, c.params)
	if err != nil {
		return "", err
	}

	ownAddress, err := c.Address(params.WalletIndex)
	if err != nil {
		return "", err
	}
	priv, err := c.keychain.PrivateKey(chain.BCH, params.WalletIndex)
	if err != nil {
		return "", err
	}
	change, err := legacyAddress(ownAddress, c.prefix, c.params)
	if err != nil {
		return "", err
	}

	utxos, err := c.unspent(ctx, ownAddress)
	if err != nil {
		return "", err
	}

	feeRate := params.FeeRate
	if feeRate <= 0 {
		feeRate, err = c.fees.FeeRates(ctx).Rate(params.FeeOption)
		if err != nil {
			return "", err
		}
	}

	tx, err := utxo.Build(utxo.BuildParams{
		Recipient:    recipient,
		Amount:       btcutil.Amount(amount),
		FeeRate:      feeRate,
		Memo:         params.Memo,
		Change:       change,
		UTXOs:        utxos,
		SpendPending: params.SpendPending,
	})
	if err != nil {
		return "", err
	}
	if err := signAllInputs(tx, priv); err != nil {
		return "", err
	}

	raw, err := utxo.Serialize(tx.Tx)
	if err != nil {
		return "", err
	}

	hash, err := c.haskoin.Broadcast(ctx, raw)
	if err != nil {
		return "", err
	}

	c.logger.Info("broadcast transfer",
		zap.String("hash", hash),
		zap.Int64("amount", amount),
		zap.Float64("fee_rate", feeRate),
		zap.Int("inputs", len(tx.Tx.TxIn)))

	return hash, nil
}

func (c *Client) unspent(ctx context.Context, address string) ([]utxo.UTXO, error) {
	raw, err := c.haskoin.Unspent(ctx, address)
	if err != nil {
		return nil, err
	}

	utxos := make([]utxo.UTXO, 0, len(raw))
	for _, u := range raw {
		script, err := hex.DecodeString(u.PkScript)
		if err != nil {
			return nil, fmt.Errorf("bad script on output %s:%d: %w", u.TxID, u.Index, err)
		}
		confirmations := int64(0)
		if u.Block.Height > 0 {
			confirmations = 1
		}
		utxos = append(utxos, utxo.UTXO{
			TxID:          u.TxID,
			Vout:          u.Index,
			Value:         btcutil.Amount(u.Value),
			PkScript:      script,
			Confirmations: confirmations,
		})
	}
	return utxos, nil
}
