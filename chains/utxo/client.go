package utxo

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// Client implements the common client operations of the sochain-backed
// UTXO chains. Bitcoin and Litecoin wrap it with their chain parameters and
// sochain network codes; Bitcoin Cash has its own client since it uses a
// different explorer, address format and sighash.
var _ chain.Client = (*Client)(nil)

type Client struct {
	id        chain.ID
	network   chain.Network
	params    *chaincfg.Params
	netCode   string
	keychain  *wallet.Keychain
	sochain   *explorer.SoChain
	feeSource *explorer.FeeSource
	logger    *zap.Logger
}

// ClientConfig wires a Client to its chain and backing services.
type ClientConfig struct {
	ID        chain.ID
	Network   chain.Network
	Params    *chaincfg.Params
	NetCode   string
	Keychain  *wallet.Keychain
	SoChain   *explorer.SoChain
	FeeSource *explorer.FeeSource
	Logger    *zap.Logger
}

// NewClient builds a sochain-backed UTXO client.
func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		id:        cfg.ID,
		network:   cfg.Network,
		params:    cfg.Params,
		netCode:   cfg.NetCode,
		keychain:  cfg.Keychain,
		sochain:   cfg.SoChain,
		feeSource: cfg.FeeSource,
		logger:    logger.With(zap.String("chain", cfg.ID.String())),
	}
}

// Chain returns the chain this client adapts.
func (c *Client) Chain() chain.ID {
	return c.id
}

// Network returns the network the client was constructed for.
func (c *Client) Network() chain.Network {
	return c.network
}

// Address derives the native-segwit address at the given index.
func (c *Client) Address(index uint32) (string, error) {
	return c.keychain.CachedAddress(c.id, index, func() (string, error) {
		priv, err := c.keychain.PrivateKey(c.id, index)
		if err != nil {
			return "", err
		}
		hash := btcutil.Hash160(priv.PubKey().SerializeCompressed())
		addr, err := btcutil.NewAddressWitnessPubKeyHash(hash, c.params)
		if err != nil {
			return "", fmt.Errorf("failed to encode address: %w", err)
		}
		return addr.EncodeAddress(), nil
	})
}

// ValidateAddress checks an address against the chain parameters.
func (c *Client) ValidateAddress(address string) error {
	decoded, err := btcutil.DecodeAddress(address, c.params)
	if err != nil {
		return fmt.Errorf("%q: %w", address, chain.ErrInvalidAddress)
	}
	if !decoded.IsForNet(c.params) {
		return fmt.Errorf("%q is for another network: %w", address, chain.ErrInvalidAddress)
	}
	return nil
}

// Balances fetches the address balance, confirmed plus unconfirmed, in
// satoshis.
func (c *Client) Balances(ctx context.Context, address string) ([]chain.Balance, error) {
	bal, err := c.sochain.Balance(ctx, c.netCode, address)
	if err != nil {
		return nil, err
	}
	total := chain.ToBaseUnits(bal.Confirmed.Add(bal.Unconfirmed), c.id.Decimals())
	return []chain.Balance{{Asset: chain.NativeAsset(c.id), Amount: total}}, nil
}

// Transactions fetches one page of transaction history for an address.
func (c *Client) Transactions(ctx context.Context, params chain.TxHistoryParams) (*chain.TxsPage, error) {
	params = params.Normalize()

	total, refs, err := c.sochain.AddressTxs(ctx, c.netCode, params.Address)
	if err != nil {
		return nil, err
	}

	if params.Offset >= len(refs) {
		return &chain.TxsPage{Total: total}, nil
	}
	end := params.Offset + params.Limit
	if end > len(refs) {
		end = len(refs)
	}

	txs := make([]chain.Tx, 0, end-params.Offset)
	for _, ref := range refs[params.Offset:end] {
		tx, err := c.Transaction(ctx, ref.TxID)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}

	return &chain.TxsPage{Total: total, Txs: txs}, nil
}

// Transaction fetches a single transaction by hash.
func (c *Client) Transaction(ctx context.Context, txID string) (*chain.Tx, error) {
	raw, err := c.sochain.Tx(ctx, c.netCode, txID)
	if err != nil {
		if errors.Is(err, explorer.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", txID, chain.ErrTxNotFound)
		}
		return nil, err
	}
	return c.mapTx(raw), nil
}

func (c *Client) mapTx(raw *explorer.SoChainTx) *chain.Tx {
	decimals := c.id.Decimals()

	from := make([]chain.TxIO, 0, len(raw.Inputs))
	for _, in := range raw.Inputs {
		from = append(from, chain.TxIO{
			Address: in.Address,
			Amount:  chain.ToBaseUnits(in.Value, decimals),
		})
	}
	to := make([]chain.TxIO, 0, len(raw.Outputs))
	for _, out := range raw.Outputs {
		to = append(to, chain.TxIO{
			Address: out.Address,
			Amount:  chain.ToBaseUnits(out.Value, decimals),
		})
	}

	return &chain.Tx{
		Asset:       chain.NativeAsset(c.id),
		Hash:        raw.TxID,
		From:        from,
		To:          to,
		Date:        time.Unix(raw.Time, 0).UTC(),
		Type:        chain.TxTransfer,
		Fee:         chain.ToBaseUnits(raw.Fee, decimals),
		BlockHeight: raw.BlockNo,
	}
}

// FeeRates returns the current recommended fee rates in sat/vB.
func (c *Client) FeeRates(ctx context.Context) chain.FeeRates {
	return c.feeSource.FeeRates(ctx)
}

// Fees quotes the fee of a typical transfer at each tier, in satoshis.
func (c *Client) Fees(ctx context.Context) (*chain.Fees, error) {
	rates := c.FeeRates(ctx)
	return &chain.Fees{
		Type:    chain.FeePerByte,
		Average: decimal.NewFromInt(int64(EstimateFee(rates.Average, 0))),
		Fast:    decimal.NewFromInt(int64(EstimateFee(rates.Fast, 0))),
		Fastest: decimal.NewFromInt(int64(EstimateFee(rates.Fastest, 0))),
	}, nil
}

// Transfer builds, signs and broadcasts a transfer, returning the
// transaction hash.
func (c *Client) Transfer(ctx context.Context, params chain.TransferParams) (string, error) {
	if !params.Asset.IsNative() && params.Asset != (chain.Asset{}) {
		return "", fmt.Errorf("%s holds no tokens: %w", c.id, chain.ErrUnsupportedChain)
	}
	if err := c.ValidateAddress(params.Recipient); err != nil {
		return "", err
	}
	amount := params.Amount.IntPart()
	if !params.Amount.IsPositive() || !params.Amount.Equal(decimal.NewFromInt(amount)) {
		return "", fmt.Errorf("amount %s is not a positive satoshi count: %w",
			params.Amount, chain.ErrInvalidAmount)
	}

	ownAddress, err := c.Address(params.WalletIndex)
	if err != nil {
		return "", err
	}
	priv, err := c.keychain.PrivateKey(c.id, params.WalletIndex)
	if err != nil {
		return "", err
	}

	utxos, err := c.unspent(ctx, ownAddress)
	if err != nil {
		return "", err
	}

	feeRate := params.FeeRate
	if feeRate <= 0 {
		feeRate, err = c.FeeRates(ctx).Rate(params.FeeOption)
		if err != nil {
			return "", err
		}
	}

	recipient, err := btcutil.DecodeAddress(params.Recipient, c.params)
	if err != nil {
		return "", fmt.Errorf("%q: %w", params.Recipient, chain.ErrInvalidAddress)
	}
	change, err := btcutil.DecodeAddress(ownAddress, c.params)
	if err != nil {
		return "", fmt.Errorf("failed to decode change address: %w", err)
	}

	tx, err := Build(BuildParams{
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
	if err := Sign(tx, priv, c.params); err != nil {
		return "", err
	}

	raw, err := Serialize(tx.Tx)
	if err != nil {
		return "", err
	}

	hash, err := c.sochain.Broadcast(ctx, c.netCode, raw)
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

// unspent fetches and converts the spendable outputs of an address.
func (c *Client) unspent(ctx context.Context, address string) ([]UTXO, error) {
	raw, err := c.sochain.Unspent(ctx, c.netCode, address)
	if err != nil {
		return nil, err
	}

	utxos := make([]UTXO, 0, len(raw))
	for _, u := range raw {
		script, err := hex.DecodeString(u.ScriptHex)
		if err != nil {
			return nil, fmt.Errorf("bad script on output %s:%d: %w", u.TxID, u.OutputNo, err)
		}
		utxos = append(utxos, UTXO{
			TxID:          u.TxID,
			Vout:          u.OutputNo,
			Value:         btcutil.Amount(chain.ToBaseUnits(u.Value, c.id.Decimals()).IntPart()),
			PkScript:      script,
			Confirmations: u.Confirmations,
		})
	}
	return utxos, nil
}
