// Package binance adapts Binance Chain (BNB Beacon Chain). Queries go
// through the public dex HTTP API; transfers are signed over the canonical
// JSON sign document and broadcast amino binary encoded.
package binance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// Binance Chain IDs and address prefixes.
const (
	MainnetChainID = "Binance-Chain-Tigris"
	TestnetChainID = "Binance-Chain-Ganges"

	MainnetPrefix = "bnb"
	TestnetPrefix = "tbnb"
)

// nativeSymbol is the on-chain denom of the native coin.
const nativeSymbol = "BNB"

// Amounts on the dex API come in display units with 8 decimals.
var displayFactor = decimal.New(1, 8)

// Config configures a Binance Chain client.
type Config struct {
	Network  chain.Network    `validate:"required,oneof=mainnet testnet"`
	Keychain *wallet.Keychain `validate:"required"`

	// DexURL overrides the public dex endpoint.
	DexURL string

	Explorer *explorer.Client
	Logger   *zap.Logger
}

// Client adapts Binance Chain.
var _ chain.Client = (*Client)(nil)

type Client struct {
	network  chain.Network
	chainID  string
	prefix   string
	keychain *wallet.Keychain
	dex      *explorer.BinanceDex
	logger   *zap.Logger
}

// NewClient builds a Binance Chain client.
func NewClient(cfg Config) (*Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid binance config: %w", err)
	}

	chainID, prefix, dexURL := MainnetChainID, MainnetPrefix, explorer.DefaultBinanceDexURL
	if cfg.Network == chain.Testnet {
		chainID, prefix, dexURL = TestnetChainID, TestnetPrefix, explorer.DefaultBinanceDexTestnetURL
	}
	if cfg.DexURL != "" {
		dexURL = cfg.DexURL
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
		chainID:  chainID,
		prefix:   prefix,
		keychain: cfg.Keychain,
		dex:      explorer.NewBinanceDex(rest, dexURL),
		logger:   logger.With(zap.String("chain", chain.BNB.String())),
	}, nil
}

// Chain returns the chain this client adapts.
func (c *Client) Chain() chain.ID {
	return chain.BNB
}

// Network returns the network the client was constructed for.
func (c *Client) Network() chain.Network {
	return c.network
}

// Address derives the bech32 account address at the given index.
func (c *Client) Address(index uint32) (string, error) {
	return c.keychain.CachedAddress(chain.BNB, index, func() (string, error) {
		priv, err := c.keychain.PrivateKey(chain.BNB, index)
		if err != nil {
			return "", err
		}
		return encodeAddress(c.prefix, btcutil.Hash160(priv.PubKey().SerializeCompressed()))
	})
}

// ValidateAddress checks bech32 encoding under the network's prefix.
func (c *Client) ValidateAddress(address string) error {
	_, err := decodeAddress(address, c.prefix)
	return err
}

// Balances fetches all asset balances of an address in base units. The free
// balance is reported; frozen and locked amounts are excluded.
func (c *Client) Balances(ctx context.Context, address string) ([]chain.Balance, error) {
	account, err := c.dex.Account(ctx, address)
	if err != nil {
		return nil, err
	}

	balances := make([]chain.Balance, 0, len(account.Balances))
	for _, b := range account.Balances {
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return nil, fmt.Errorf("bad balance %q for %s: %w", b.Free, b.Symbol, err)
		}
		balances = append(balances, chain.Balance{
			Asset:  assetFromSymbol(b.Symbol),
			Amount: free.Mul(displayFactor).Truncate(0),
		})
	}
	return balances, nil
}

// Transactions fetches one page of transfer history for an address.
func (c *Client) Transactions(ctx context.Context, params chain.TxHistoryParams) (*chain.TxsPage, error) {
	params = params.Normalize()

	total, raw, err := c.dex.Transactions(ctx, params.Address, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}

	txs := make([]chain.Tx, 0, len(raw))
	for _, entry := range raw {
		value, err := decimal.NewFromString(entry.Value)
		if err != nil {
			continue
		}
		amount := value.Mul(displayFactor).Truncate(0)
		fee, _ := decimal.NewFromString(entry.TxFee)

		tx := chain.Tx{
			Asset:       assetFromSymbol(entry.TxAsset),
			Hash:        entry.TxHash,
			From:        []chain.TxIO{{Address: entry.FromAddr, Amount: amount}},
			To:          []chain.TxIO{{Address: entry.ToAddr, Amount: amount}},
			Type:        chain.TxTransfer,
			Fee:         fee.Mul(displayFactor).Truncate(0),
			Memo:        entry.Memo,
			BlockHeight: entry.BlockHeight,
		}
		if ts, err := time.Parse(time.RFC3339, entry.TimeStamp); err == nil {
			tx.Date = ts.UTC()
		}
		txs = append(txs, tx)
	}

	return &chain.TxsPage{Total: total, Txs: txs}, nil
}

// Transaction fetches a single transaction by hash.
func (c *Client) Transaction(ctx context.Context, txID string) (*chain.Tx, error) {
	raw, err := c.dex.Tx(ctx, txID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", txID, chain.ErrTxNotFound)
	}

	tx := &chain.Tx{
		Asset: chain.NativeAsset(chain.BNB),
		Hash:  raw.Hash,
		Type:  chain.TxTransfer,
		Memo:  raw.Tx.Value.Memo,
	}
	if height, err := strconv.ParseInt(raw.Height, 10, 64); err == nil {
		tx.BlockHeight = height
	}

	for _, msg := range raw.Tx.Value.Msg {
		for _, in := range msg.Value.Inputs {
			for _, coin := range in.Coins {
				amount, err := decimal.NewFromString(coin.Amount.String())
				if err != nil {
					continue
				}
				tx.Asset = assetFromSymbol(coin.Denom)
				tx.From = append(tx.From, chain.TxIO{Address: in.Address, Amount: amount})
			}
		}
		for _, out := range msg.Value.Outputs {
			for _, coin := range out.Coins {
				amount, err := decimal.NewFromString(coin.Amount.String())
				if err != nil {
					continue
				}
				tx.To = append(tx.To, chain.TxIO{Address: out.Address, Amount: amount})
			}
		}
	}
	return tx, nil
}

// Fees quotes the fixed send fee published by the chain, in base units.
func (c *Client) Fees(ctx context.Context) (*chain.Fees, error) {
	fee, err := c.dex.SendFee(ctx)
	if err != nil {
		return nil, err
	}
	return chain.FlatFees(decimal.NewFromInt(fee)), nil
}

// Transfer builds, signs and broadcasts a send, returning the transaction
// hash. Both the native coin and BEP-2 tokens are supported.
func (c *Client) Transfer(ctx context.Context, params chain.TransferParams) (string, error) {
	if params.Asset != (chain.Asset{}) && params.Asset.Chain != chain.BNB {
		return "", fmt.Errorf("asset %s does not live on BNB: %w", params.Asset, chain.ErrUnsupportedChain)
	}
	to, err := decodeAddress(params.Recipient, c.prefix)
	if err != nil {
		return "", err
	}
	amount := params.Amount.IntPart()
	if !params.Amount.IsPositive() || !params.Amount.Equal(decimal.NewFromInt(amount)) {
		return "", fmt.Errorf("amount %s is not a positive base unit count: %w",
			params.Amount, chain.ErrInvalidAmount)
	}
	denom := symbolFromAsset(params.Asset)

	fromAddr, err := c.Address(params.WalletIndex)
	if err != nil {
		return "", err
	}
	from, err := decodeAddress(fromAddr, c.prefix)
	if err != nil {
		return "", err
	}
	priv, err := c.keychain.PrivateKey(chain.BNB, params.WalletIndex)
	if err != nil {
		return "", err
	}

	account, err := c.dex.Account(ctx, fromAddr)
	if err != nil {
		return "", err
	}

	signBytes, err := sendSignBytes(c.chainID, account.AccountNumber, account.Sequence,
		fromAddr, params.Recipient, denom, amount, params.Memo)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(signBytes)
	sig := ecdsa.SignCompact(priv, digest[:], true)[1:]

	msg := encodeSendMsg(from, to, denom, amount)
	stdSig := encodeStdSignature(priv.PubKey().SerializeCompressed(), sig,
		account.AccountNumber, account.Sequence)
	txBytes := encodeStdTx(msg, stdSig, params.Memo, 0)

	hash, err := c.dex.Broadcast(ctx, hex.EncodeToString(txBytes))
	if err != nil {
		return "", err
	}

	c.logger.Info("broadcast transfer",
		zap.String("hash", hash),
		zap.String("denom", denom),
		zap.Int64("amount", amount),
		zap.Int64("sequence", account.Sequence))

	return hash, nil
}

// sendSignBytes renders the canonical sign document of a single-input
// single-output send. Keys are alphabetical; account numbers and sequences
// are strings while coin amounts stay numeric.
func sendSignBytes(chainID string, accountNumber, sequence int64,
	from, to, denom string, amount int64, memo string) ([]byte, error) {

	type signCoin struct {
		Amount int64  `json:"amount"`
		Denom  string `json:"denom"`
	}
	type signIO struct {
		Address string     `json:"address"`
		Coins   []signCoin `json:"coins"`
	}
	doc := struct {
		AccountNumber string          `json:"account_number"`
		ChainID       string          `json:"chain_id"`
		Data          json.RawMessage `json:"data"`
		Memo          string          `json:"memo"`
		Msgs          []interface{}   `json:"msgs"`
		Sequence      string          `json:"sequence"`
		Source        string          `json:"source"`
	}{
		AccountNumber: fmt.Sprint(accountNumber),
		ChainID:       chainID,
		Memo:          memo,
		Msgs: []interface{}{struct {
			Inputs  []signIO `json:"inputs"`
			Outputs []signIO `json:"outputs"`
		}{
			Inputs:  []signIO{{Address: from, Coins: []signCoin{{Amount: amount, Denom: denom}}}},
			Outputs: []signIO{{Address: to, Coins: []signCoin{{Amount: amount, Denom: denom}}}},
		}},
		Sequence: fmt.Sprint(sequence),
		Source:   "0",
	}
	bz, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sign doc: %w", err)
	}
	return bz, nil
}

// encodeAddress encodes a 20-byte key hash as a bech32 account address.
func encodeAddress(prefix string, hash []byte) (string, error) {
	converted, err := bech32.ConvertBits(hash, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert address bits: %w", err)
	}
	addr, err := bech32.Encode(prefix, converted)
	if err != nil {
		return "", fmt.Errorf("failed to encode address: %w", err)
	}
	return addr, nil
}

// decodeAddress decodes a bech32 account address back to its 20-byte hash.
func decodeAddress(address, prefix string) ([]byte, error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", address, chain.ErrInvalidAddress)
	}
	if hrp != prefix {
		return nil, fmt.Errorf("%q has prefix %q, want %q: %w", address, hrp, prefix, chain.ErrInvalidAddress)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(payload) != 20 {
		return nil, fmt.Errorf("%q payload is not 20 bytes: %w", address, chain.ErrInvalidAddress)
	}
	return payload, nil
}

// assetFromSymbol maps a dex symbol like "BNB" or "BUSD-BD1" to an asset.
func assetFromSymbol(symbol string) chain.Asset {
	if symbol == nativeSymbol {
		return chain.NativeAsset(chain.BNB)
	}
	ticker, tokenID, _ := strings.Cut(symbol, "-")
	return chain.Asset{Chain: chain.BNB, Ticker: strings.ToUpper(ticker), TokenID: tokenID}
}

// symbolFromAsset maps an asset back to its on-chain symbol.
func symbolFromAsset(asset chain.Asset) string {
	if asset == (chain.Asset{}) || asset.IsNative() {
		return nativeSymbol
	}
	if asset.TokenID != "" {
		return asset.Ticker + "-" + asset.TokenID
	}
	return asset.Ticker
}
