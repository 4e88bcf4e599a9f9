// Package polkadot adapts Polkadot. Queries go through subscan; transfers
// are signed sr25519 and submitted to a substrate node over RPC.
package polkadot

import (
	"context"
	"fmt"
	"sync"
	"time"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// Default substrate RPC endpoints.
const (
	DefaultRPCURL        = "wss://rpc.polkadot.io"
	DefaultTestnetRPCURL = "wss://westend-rpc.polkadot.io"
)

// estimatedTransferFee approximates the fee of a balance transfer, in
// planck. Actual fees are weight-based and settle slightly lower.
const estimatedTransferFee = 161_331_674

// Config configures a Polkadot client. The testnet network maps to Westend.
type Config struct {
	Network  chain.Network    `validate:"required,oneof=mainnet testnet"`
	Keychain *wallet.Keychain `validate:"required"`

	// RPCURL overrides the substrate node websocket endpoint.
	RPCURL string
	// SubscanURL and SubscanAPIKey override the query API.
	SubscanURL    string
	SubscanAPIKey string

	Explorer *explorer.Client
	Logger   *zap.Logger
}

// Client adapts Polkadot.
var _ chain.Client = (*Client)(nil)

type Client struct {
	network    chain.Network
	ss58Prefix byte
	decimals   int32
	rpcURL     string
	keychain   *wallet.Keychain
	subscan    *explorer.Subscan
	logger     *zap.Logger

	mu  sync.Mutex
	api *gsrpc.SubstrateAPI
}

// NewClient builds a Polkadot client. The substrate node is dialed lazily on
// the first transfer.
func NewClient(cfg Config) (*Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid polkadot config: %w", err)
	}

	prefix, decimals := PolkadotNetwork, int32(10)
	rpcURL, subscanURL := DefaultRPCURL, explorer.DefaultSubscanURL
	if cfg.Network == chain.Testnet {
		prefix, decimals = WestendNetwork, 12
		rpcURL, subscanURL = DefaultTestnetRPCURL, explorer.DefaultSubscanTestnetURL
	}
	if cfg.RPCURL != "" {
		rpcURL = cfg.RPCURL
	}
	if cfg.SubscanURL != "" {
		subscanURL = cfg.SubscanURL
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
		network:    cfg.Network,
		ss58Prefix: prefix,
		decimals:   decimals,
		rpcURL:     rpcURL,
		keychain:   cfg.Keychain,
		subscan:    explorer.NewSubscan(rest, subscanURL, cfg.SubscanAPIKey),
		logger:     logger.With(zap.String("chain", chain.DOT.String())),
	}, nil
}

// Chain returns the chain this client adapts.
func (c *Client) Chain() chain.ID {
	return chain.DOT
}

// Network returns the network the client was constructed for.
func (c *Client) Network() chain.Network {
	return c.network
}

// keyringPair derives the sr25519 keypair at the given index. Index zero is
// the bare mnemonic; higher indexes use a hard derivation junction.
func (c *Client) keyringPair(index uint32) (signature.KeyringPair, error) {
	uri := c.keychain.Mnemonic()
	if uri == "" {
		return signature.KeyringPair{}, chain.ErrWalletLocked
	}
	if index > 0 {
		uri = fmt.Sprintf("%s//%d", uri, index)
	}
	pair, err := signature.KeyringPairFromSecret(uri, uint16(c.ss58Prefix))
	if err != nil {
		return signature.KeyringPair{}, fmt.Errorf("failed to derive keypair: %w", err)
	}
	return pair, nil
}

// Address derives the SS58 address at the given index.
func (c *Client) Address(index uint32) (string, error) {
	return c.keychain.CachedAddress(chain.DOT, index, func() (string, error) {
		pair, err := c.keyringPair(index)
		if err != nil {
			return "", err
		}
		return EncodeSS58(c.ss58Prefix, pair.PublicKey)
	})
}

// ValidateAddress checks SS58 encoding and the network prefix.
func (c *Client) ValidateAddress(address string) error {
	network, _, err := DecodeSS58(address)
	if err != nil {
		return err
	}
	if network != c.ss58Prefix {
		return fmt.Errorf("%q is for ss58 network %d, want %d: %w",
			address, network, c.ss58Prefix, chain.ErrInvalidAddress)
	}
	return nil
}

// Balances fetches the free balance of an address in planck.
func (c *Client) Balances(ctx context.Context, address string) ([]chain.Balance, error) {
	account, err := c.subscan.Account(ctx, address)
	if err != nil {
		return nil, err
	}
	return []chain.Balance{{
		Asset:  chain.NativeAsset(chain.DOT),
		Amount: account.Balance.Shift(c.decimals).Truncate(0),
	}}, nil
}

// Transactions fetches one page of transfer history for an address.
func (c *Client) Transactions(ctx context.Context, params chain.TxHistoryParams) (*chain.TxsPage, error) {
	params = params.Normalize()
	if params.Offset%params.Limit != 0 {
		return nil, fmt.Errorf("offset must be a multiple of limit")
	}

	total, transfers, err := c.subscan.Transfers(ctx, params.Address, params.Limit, params.Offset/params.Limit)
	if err != nil {
		return nil, err
	}

	txs := make([]chain.Tx, 0, len(transfers))
	for _, tr := range transfers {
		txs = append(txs, *c.mapTransfer(&tr))
	}
	return &chain.TxsPage{Total: total, Txs: txs}, nil
}

// Transaction fetches a single transfer by extrinsic hash.
func (c *Client) Transaction(ctx context.Context, txID string) (*chain.Tx, error) {
	transfer, err := c.subscan.TransferByHash(ctx, txID)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, fmt.Errorf("%s: %w", txID, chain.ErrTxNotFound)
	}
	return c.mapTransfer(transfer), nil
}

func (c *Client) mapTransfer(tr *explorer.SubscanTransfer) *chain.Tx {
	amount := tr.Amount.Shift(c.decimals).Truncate(0)
	return &chain.Tx{
		Asset:       chain.NativeAsset(chain.DOT),
		Hash:        tr.Hash,
		From:        []chain.TxIO{{Address: tr.From, Amount: amount}},
		To:          []chain.TxIO{{Address: tr.To, Amount: amount}},
		Date:        time.Unix(tr.BlockTimestamp, 0).UTC(),
		Type:        chain.TxTransfer,
		Fee:         tr.Fee.Truncate(0),
		BlockHeight: tr.BlockNum,
	}
}

// Fees quotes the estimated transfer fee in planck. Fees are weight-based
// and do not vary with congestion the way gas markets do.
func (c *Client) Fees(ctx context.Context) (*chain.Fees, error) {
	return chain.FlatFees(decimal.NewFromInt(estimatedTransferFee)), nil
}

func (c *Client) substrateAPI() (*gsrpc.SubstrateAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}
	api, err := gsrpc.NewSubstrateAPI(c.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial substrate node: %w", err)
	}
	c.api = api
	return api, nil
}

// Transfer submits a keep-alive balance transfer and returns the extrinsic
// hash.
func (c *Client) Transfer(ctx context.Context, params chain.TransferParams) (string, error) {
	if !params.Asset.IsNative() && params.Asset != (chain.Asset{}) {
		return "", fmt.Errorf("%s transfers are native-only: %w", chain.DOT, chain.ErrUnsupportedChain)
	}
	if err := c.ValidateAddress(params.Recipient); err != nil {
		return "", err
	}
	amount := params.Amount.BigInt()
	if !params.Amount.IsPositive() || !params.Amount.Equal(decimal.NewFromBigInt(amount, 0)) {
		return "", fmt.Errorf("amount %s is not a positive planck count: %w",
			params.Amount, chain.ErrInvalidAmount)
	}

	pair, err := c.keyringPair(params.WalletIndex)
	if err != nil {
		return "", err
	}

	api, err := c.substrateAPI()
	if err != nil {
		return "", err
	}
	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return "", fmt.Errorf("failed to fetch metadata: %w", err)
	}

	_, destKey, err := DecodeSS58(params.Recipient)
	if err != nil {
		return "", err
	}
	dest, err := types.NewMultiAddressFromAccountID(destKey)
	if err != nil {
		return "", fmt.Errorf("bad destination account: %w", err)
	}
	call, err := types.NewCall(meta, "Balances.transfer_keep_alive",
		dest, types.NewUCompact(amount))
	if err != nil {
		return "", fmt.Errorf("failed to build call: %w", err)
	}

	genesisHash, err := api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return "", fmt.Errorf("failed to fetch genesis hash: %w", err)
	}
	rv, err := api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return "", fmt.Errorf("failed to fetch runtime version: %w", err)
	}

	storageKey, err := types.CreateStorageKey(meta, "System", "Account", pair.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to build account storage key: %w", err)
	}
	var accountInfo types.AccountInfo
	if _, err := api.RPC.State.GetStorageLatest(storageKey, &accountInfo); err != nil {
		return "", fmt.Errorf("failed to fetch account info: %w", err)
	}

	ext := types.NewExtrinsic(call)
	err = ext.Sign(pair, types.SignatureOptions{
		BlockHash:          genesisHash,
		Era:                types.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        genesisHash,
		Nonce:              types.NewUCompactFromUInt(uint64(accountInfo.Nonce)),
		SpecVersion:        rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: rv.TransactionVersion,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign extrinsic: %w", err)
	}

	hash, err := api.RPC.Author.SubmitExtrinsic(ext)
	if err != nil {
		return "", fmt.Errorf("failed to submit extrinsic: %w", err)
	}

	c.logger.Info("submitted transfer",
		zap.String("hash", hash.Hex()),
		zap.String("amount", params.Amount.String()),
		zap.Uint32("nonce", uint32(accountInfo.Nonce)))

	return hash.Hex(), nil
}
