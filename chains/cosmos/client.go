package cosmos

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// Cosmos Hub chain IDs.
const (
	MainnetChainID = "cosmoshub-4"
	TestnetChainID = "theta-testnet-001"
)

// Default fee of a Hub transfer: 2000uatom at 200000 gas clears reliably.
const (
	defaultFeeAmount = 2000
	defaultGas       = 200000
)

// Params fixes the chain-specific constants of an LCD-backed client. The
// Cosmos Hub and THORChain differ only in these.
type Params struct {
	ID      chain.ID
	Prefix  string
	ChainID string
	Denom   string
	// MsgType is the amino tag of the chain's bank send message.
	MsgType string
	// FlatFee quotes the current per-transfer fee in base units. It also
	// sets the fee clause of outgoing transactions.
	FlatFee func(ctx context.Context) (int64, error)
	// FeeInTx controls whether the quoted fee is carried in the fee
	// clause. THORChain deducts its fee on-chain instead.
	FeeInTx bool
}

// Config configures a Cosmos Hub client.
type Config struct {
	Network  chain.Network    `validate:"required,oneof=mainnet testnet"`
	Keychain *wallet.Keychain `validate:"required"`

	// LCDURL overrides the public LCD endpoint.
	LCDURL string

	Explorer *explorer.Client
	Logger   *zap.Logger
}

// Client adapts one LCD-backed Cosmos SDK chain.
var _ chain.Client = (*Client)(nil)

type Client struct {
	network  chain.Network
	params   Params
	keychain *wallet.Keychain
	lcd      *explorer.CosmosLCD
	logger   *zap.Logger
}

// NewClient builds a Cosmos Hub client.
func NewClient(cfg Config) (*Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid cosmos config: %w", err)
	}

	chainID := MainnetChainID
	if cfg.Network == chain.Testnet {
		chainID = TestnetChainID
	}

	return NewCustomClient(Params{
		ID:      chain.GAIA,
		Prefix:  "cosmos",
		ChainID: chainID,
		Denom:   "uatom",
		MsgType: "cosmos-sdk/MsgSend",
		FlatFee: func(context.Context) (int64, error) { return defaultFeeAmount, nil },
		FeeInTx: true,
	}, cfg)
}

// NewCustomClient builds a client for any LCD chain described by params.
func NewCustomClient(params Params, cfg Config) (*Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rest := cfg.Explorer
	if rest == nil {
		rest = explorer.New(explorer.WithLogger(cfg.Logger))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lcdURL := cfg.LCDURL
	if lcdURL == "" {
		lcdURL = explorer.DefaultCosmosLCDURL
	}

	return &Client{
		network:  cfg.Network,
		params:   params,
		keychain: cfg.Keychain,
		lcd:      explorer.NewCosmosLCD(rest, lcdURL),
		logger:   logger.With(zap.String("chain", params.ID.String())),
	}, nil
}

// Chain returns the chain this client adapts.
func (c *Client) Chain() chain.ID {
	return c.params.ID
}

// Network returns the network the client was constructed for.
func (c *Client) Network() chain.Network {
	return c.network
}

// Address derives the bech32 account address at the given index.
func (c *Client) Address(index uint32) (string, error) {
	return c.keychain.CachedAddress(c.params.ID, index, func() (string, error) {
		priv, err := c.keychain.PrivateKey(c.params.ID, index)
		if err != nil {
			return "", err
		}
		return AccAddress(c.params.Prefix, priv.PubKey())
	})
}

// ValidateAddress checks bech32 encoding under the chain's prefix.
func (c *Client) ValidateAddress(address string) error {
	return ValidateAddress(address, c.params.Prefix)
}

// Balances fetches the bank balances of an address, in base units. Non-native
// denoms are reported under their denom as ticker.
func (c *Client) Balances(ctx context.Context, address string) ([]chain.Balance, error) {
	coins, err := c.lcd.Balances(ctx, address)
	if err != nil {
		return nil, err
	}

	balances := make([]chain.Balance, 0, len(coins))
	for _, coin := range coins {
		amount, err := decimal.NewFromString(coin.Amount)
		if err != nil {
			return nil, fmt.Errorf("bad amount %q for %s: %w", coin.Amount, coin.Denom, err)
		}
		asset := chain.NativeAsset(c.params.ID)
		if coin.Denom != c.params.Denom {
			asset = chain.Asset{Chain: c.params.ID, Ticker: strings.ToUpper(coin.Denom), TokenID: coin.Denom}
		}
		balances = append(balances, chain.Balance{Asset: asset, Amount: amount})
	}
	return balances, nil
}

// Transactions fetches one page of history: transactions sent by and sent to
// the address, merged and ordered most recent first.
func (c *Client) Transactions(ctx context.Context, params chain.TxHistoryParams) (*chain.TxsPage, error) {
	params = params.Normalize()

	// LCD pages are 1-based and cannot start mid-page.
	if params.Offset%params.Limit != 0 {
		return nil, fmt.Errorf("offset must be a multiple of limit")
	}
	page := params.Offset/params.Limit + 1

	sentTotal, sent, err := c.lcd.Txs(ctx, "message.sender", params.Address, page, params.Limit)
	if err != nil {
		return nil, err
	}
	recvTotal, received, err := c.lcd.Txs(ctx, "transfer.recipient", params.Address, page, params.Limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	txs := make([]chain.Tx, 0, len(sent)+len(received))
	for _, raw := range append(sent, received...) {
		if seen[raw.TxHash] {
			continue
		}
		seen[raw.TxHash] = true
		txs = append(txs, *c.mapTx(&raw))
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].BlockHeight > txs[j].BlockHeight
	})
	if len(txs) > params.Limit {
		txs = txs[:params.Limit]
	}

	return &chain.TxsPage{Total: sentTotal + recvTotal, Txs: txs}, nil
}

// Transaction fetches a single transaction by hash.
func (c *Client) Transaction(ctx context.Context, txID string) (*chain.Tx, error) {
	raw, err := c.lcd.Tx(ctx, txID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("%s: %w", txID, chain.ErrTxNotFound)
	}
	return c.mapTx(raw), nil
}

func (c *Client) mapTx(raw *explorer.LCDTx) *chain.Tx {
	tx := &chain.Tx{
		Asset: chain.NativeAsset(c.params.ID),
		Hash:  raw.TxHash,
		Type:  chain.TxTransfer,
		Memo:  raw.Tx.Value.Memo,
	}

	if height, err := strconv.ParseInt(raw.Height, 10, 64); err == nil {
		tx.BlockHeight = height
	}
	if ts, err := time.Parse(time.RFC3339, raw.Timestamp); err == nil {
		tx.Date = ts.UTC()
	}

	for _, msg := range raw.Tx.Value.Msg {
		for _, coin := range msg.Value.Amount {
			if coin.Denom != c.params.Denom {
				continue
			}
			amount, err := decimal.NewFromString(coin.Amount)
			if err != nil {
				continue
			}
			tx.From = append(tx.From, chain.TxIO{Address: msg.Value.FromAddress, Amount: amount})
			tx.To = append(tx.To, chain.TxIO{Address: msg.Value.ToAddress, Amount: amount})
		}
	}
	for _, coin := range raw.Tx.Value.Fee.Amount {
		if coin.Denom != c.params.Denom {
			continue
		}
		if fee, err := decimal.NewFromString(coin.Amount); err == nil {
			tx.Fee = tx.Fee.Add(fee)
		}
	}

	return tx
}

// Fees quotes the flat per-transfer fee, in base units.
func (c *Client) Fees(ctx context.Context) (*chain.Fees, error) {
	fee, err := c.params.FlatFee(ctx)
	if err != nil {
		return nil, err
	}
	return chain.FlatFees(decimal.NewFromInt(fee)), nil
}

// Transfer builds, signs and broadcasts a bank send, returning the
// transaction hash.
func (c *Client) Transfer(ctx context.Context, params chain.TransferParams) (string, error) {
	if !params.Asset.IsNative() && params.Asset != (chain.Asset{}) {
		return "", fmt.Errorf("%s transfers are native-only: %w", c.params.ID, chain.ErrUnsupportedChain)
	}
	if err := c.ValidateAddress(params.Recipient); err != nil {
		return "", err
	}
	amount := params.Amount.IntPart()
	if !params.Amount.IsPositive() || !params.Amount.Equal(decimal.NewFromInt(amount)) {
		return "", fmt.Errorf("amount %s is not a positive base unit count: %w",
			params.Amount, chain.ErrInvalidAmount)
	}

	from, err := c.Address(params.WalletIndex)
	if err != nil {
		return "", err
	}
	priv, err := c.keychain.PrivateKey(c.params.ID, params.WalletIndex)
	if err != nil {
		return "", err
	}

	account, err := c.lcd.Account(ctx, from)
	if err != nil {
		return "", err
	}

	fee := StdFee{Amount: []Coin{}, Gas: fmt.Sprint(defaultGas)}
	if c.params.FeeInTx {
		feeAmount, err := c.params.FlatFee(ctx)
		if err != nil {
			return "", err
		}
		fee.Amount = []Coin{{Amount: fmt.Sprint(feeAmount), Denom: c.params.Denom}}
	}

	msgs := []Msg{{
		Type: c.params.MsgType,
		Value: MsgSendValue{
			Amount:      []Coin{{Amount: fmt.Sprint(amount), Denom: c.params.Denom}},
			FromAddress: from,
			ToAddress:   params.Recipient,
		},
	}}

	stdTx, err := SignStdTx(priv, c.params.ChainID, account.AccountNumber, account.Sequence,
		fee, msgs, params.Memo)
	if err != nil {
		return "", err
	}

	result, err := c.lcd.Broadcast(ctx, stdTx, "sync")
	if err != nil {
		return "", err
	}

	c.logger.Info("broadcast transfer",
		zap.String("hash", result.TxHash),
		zap.Int64("amount", amount),
		zap.Uint64("sequence", account.Sequence))

	return result.TxHash, nil
}
