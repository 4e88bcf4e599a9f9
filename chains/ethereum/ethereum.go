// Package ethereum adapts the Ethereum chain: hex addresses on BIP-44 paths,
// native and ERC-20 balances through ethplorer, history through etherscan,
// and EIP-155 signed transfers submitted over JSON-RPC.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/armadahq/armada/chain"
	"github.com/armadahq/armada/internal/explorer"
	"github.com/armadahq/armada/wallet"
)

// Default JSON-RPC endpoints.
const (
	DefaultRPCURL        = "https://ethereum-rpc.publicnode.com"
	DefaultTestnetRPCURL = "https://ethereum-sepolia-rpc.publicnode.com"
)

// Gas limits for the two transfer shapes.
const (
	transferGasLimit      = 21000
	tokenTransferGasLimit = 70000
)

// Chain IDs.
var (
	mainnetChainID = big.NewInt(1)
	sepoliaChainID = big.NewInt(11155111)
)

// Config configures an Ethereum client.
type Config struct {
	Network  chain.Network    `validate:"required,oneof=mainnet testnet"`
	Keychain *wallet.Keychain `validate:"required"`

	// RPCURL is the JSON-RPC endpoint transfers go through. Empty selects
	// a public node.
	RPCURL string

	EtherscanURL    string
	EtherscanAPIKey string
	EthplorerURL    string
	EthplorerAPIKey string

	Explorer *explorer.Client
	Logger   *zap.Logger
}

// Client is the Ethereum adapter.
var _ chain.Client = (*Client)(nil)

type Client struct {
	network   chain.Network
	chainID   *big.Int
	keychain  *wallet.Keychain
	eth       *ethclient.Client
	etherscan *explorer.Etherscan
	ethplorer *explorer.Ethplorer
	logger    *zap.Logger
}

// NewClient builds an Ethereum client.
func NewClient(cfg Config) (*Client, error) {
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid ethereum config: %w", err)
	}

	chainID := mainnetChainID
	rpcURL := cfg.RPCURL
	etherscanURL := cfg.EtherscanURL
	if cfg.Network == chain.Testnet {
		chainID = sepoliaChainID
		if rpcURL == "" {
			rpcURL = DefaultTestnetRPCURL
		}
		if etherscanURL == "" {
			etherscanURL = explorer.DefaultEtherscanTestnetURL
		}
	}
	if rpcURL == "" {
		rpcURL = DefaultRPCURL
	}

	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
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
		network:   cfg.Network,
		chainID:   chainID,
		keychain:  cfg.Keychain,
		eth:       eth,
		etherscan: explorer.NewEtherscan(rest, etherscanURL, cfg.EtherscanAPIKey),
		ethplorer: explorer.NewEthplorer(rest, cfg.EthplorerURL, cfg.EthplorerAPIKey),
		logger:    logger.With(zap.String("chain", chain.ETH.String())),
	}, nil
}

// Chain returns the chain this client adapts.
func (c *Client) Chain() chain.ID {
	return chain.ETH
}

// Network returns the network the client was constructed for.
func (c *Client) Network() chain.Network {
	return c.network
}

// Address derives the checksummed hex address at the given index.
func (c *Client) Address(index uint32) (string, error) {
	return c.keychain.CachedAddress(chain.ETH, index, func() (string, error) {
		key, err := c.keychain.ECDSAKey(chain.ETH, index)
		if err != nil {
			return "", err
		}
		return crypto.PubkeyToAddress(key.PublicKey).Hex(), nil
	})
}

// ValidateAddress checks for a 20-byte hex address.
func (c *Client) ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%q: %w", address, chain.ErrInvalidAddress)
	}
	return nil
}

// Balances fetches the ETH balance and every ERC-20 position of an address,
// in base units.
func (c *Client) Balances(ctx context.Context, address string) ([]chain.Balance, error) {
	info, err := c.ethplorer.AddressInfo(ctx, address)
	if err != nil {
		return nil, err
	}

	balances := make([]chain.Balance, 0, 1+len(info.Tokens))

	ethBalance := decimal.Zero
	if info.ETH.RawBalance != "" {
		ethBalance, err = decimal.NewFromString(info.ETH.RawBalance)
		if err != nil {
			return nil, fmt.Errorf("bad ETH balance %q: %w", info.ETH.RawBalance, err)
		}
	}
	balances = append(balances, chain.Balance{
		Asset:  chain.NativeAsset(chain.ETH),
		Amount: ethBalance.Truncate(0),
	})

	for _, token := range info.Tokens {
		if token.TokenInfo.Symbol == "" || token.RawBalance == "" {
			continue
		}
		amount, err := decimal.NewFromString(token.RawBalance)
		if err != nil {
			continue
		}
		balances = append(balances, chain.Balance{
			Asset: chain.Asset{
				Chain:   chain.ETH,
				Ticker:  strings.ToUpper(token.TokenInfo.Symbol),
				TokenID: strings.ToLower(token.TokenInfo.Address),
			},
			Amount: amount.Truncate(0),
		})
	}

	return balances, nil
}

// Transactions fetches one page of history through etherscan. A token asset
// in the params switches to ERC-20 transfer events.
func (c *Client) Transactions(ctx context.Context, params chain.TxHistoryParams) (*chain.TxsPage, error) {
	params = params.Normalize()

	// Etherscan pages are 1-based and cannot start mid-page, so the offset
	// must be a whole number of pages.
	if params.Offset%params.Limit != 0 {
		return nil, fmt.Errorf("offset must be a multiple of limit for ETH history")
	}
	page := params.Offset/params.Limit + 1

	var (
		raw []explorer.EtherscanTx
		err error
	)
	if params.Asset != nil && !params.Asset.IsNative() {
		raw, err = c.etherscan.TokenTx(ctx, params.Address, params.Asset.TokenID, page, params.Limit)
	} else {
		raw, err = c.etherscan.TxList(ctx, params.Address, page, params.Limit)
	}
	if err != nil {
		return nil, err
	}

	txs := make([]chain.Tx, 0, len(raw))
	for i := range raw {
		txs = append(txs, *mapEtherscanTx(&raw[i]))
	}

	// Etherscan reports no grand total; the page itself is the best
	// available count.
	return &chain.TxsPage{Total: len(txs), Txs: txs}, nil
}

func mapEtherscanTx(raw *explorer.EtherscanTx) *chain.Tx {
	asset := chain.NativeAsset(chain.ETH)
	if raw.TokenSymbol != "" {
		asset = chain.Asset{
			Chain:   chain.ETH,
			Ticker:  strings.ToUpper(raw.TokenSymbol),
			TokenID: strings.ToLower(raw.ContractAddress),
		}
	}

	value, _ := decimal.NewFromString(raw.Value)
	gasPrice, _ := decimal.NewFromString(raw.GasPrice)
	gasUsed, _ := decimal.NewFromString(raw.GasUsed)

	var date time.Time
	if ts, err := strconv.ParseInt(raw.TimeStamp, 10, 64); err == nil {
		date = time.Unix(ts, 0).UTC()
	}
	var height int64
	if h, err := strconv.ParseInt(raw.BlockNumber, 10, 64); err == nil {
		height = h
	}

	return &chain.Tx{
		Asset:       asset,
		Hash:        raw.Hash,
		From:        []chain.TxIO{{Address: strings.ToLower(raw.From), Amount: value}},
		To:          []chain.TxIO{{Address: strings.ToLower(raw.To), Amount: value}},
		Date:        date,
		Type:        chain.TxTransfer,
		Fee:         gasPrice.Mul(gasUsed),
		BlockHeight: height,
	}
}

// Transaction fetches a single transaction over JSON-RPC.
func (c *Client) Transaction(ctx context.Context, txID string) (*chain.Tx, error) {
	tx, pending, err := c.eth.TransactionByHash(ctx, common.HexToHash(txID))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%s: %w", txID, chain.ErrTxNotFound)
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return nil, fmt.Errorf("failed to recover sender: %w", err)
	}

	out := &chain.Tx{
		Asset: chain.NativeAsset(chain.ETH),
		Hash:  tx.Hash().Hex(),
		From:  []chain.TxIO{{Address: strings.ToLower(from.Hex()), Amount: decimal.NewFromBigInt(tx.Value(), 0)}},
		Type:  chain.TxTransfer,
	}
	if to := tx.To(); to != nil {
		out.To = []chain.TxIO{{Address: strings.ToLower(to.Hex()), Amount: decimal.NewFromBigInt(tx.Value(), 0)}}
	}

	if !pending {
		receipt, err := c.eth.TransactionReceipt(ctx, tx.Hash())
		if err == nil {
			out.BlockHeight = receipt.BlockNumber.Int64()
			out.Fee = decimal.NewFromBigInt(tx.GasPrice(), 0).
				Mul(decimal.NewFromInt(int64(receipt.GasUsed)))
			if header, err := c.eth.HeaderByNumber(ctx, receipt.BlockNumber); err == nil {
				out.Date = time.Unix(int64(header.Time), 0).UTC()
			}
		}
	}

	return out, nil
}

// Fees quotes the cost of a plain transfer at each gas tier, in wei.
func (c *Client) Fees(ctx context.Context) (*chain.Fees, error) {
	oracle, err := c.etherscan.GasOracle(ctx)
	if err != nil {
		return nil, err
	}

	quote := func(gwei string) (decimal.Decimal, error) {
		price, err := decimal.NewFromString(gwei)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("bad gas price %q: %w", gwei, err)
		}
		// gwei to wei, times the transfer gas limit.
		return price.Shift(9).Mul(decimal.NewFromInt(transferGasLimit)), nil
	}

	average, err := quote(oracle.SafeGasPrice)
	if err != nil {
		return nil, err
	}
	fast, err := quote(oracle.ProposeGasPrice)
	if err != nil {
		return nil, err
	}
	fastest, err := quote(oracle.FastGasPrice)
	if err != nil {
		return nil, err
	}

	return &chain.Fees{Type: chain.FeeFlat, Average: average, Fast: fast, Fastest: fastest}, nil
}

// Transfer builds, signs and submits a transfer. Token assets move through
// the ERC-20 transfer method; everything else is a plain value send.
func (c *Client) Transfer(ctx context.Context, params chain.TransferParams) (string, error) {
	if err := c.ValidateAddress(params.Recipient); err != nil {
		return "", err
	}
	amount := params.Amount.BigInt()
	if amount.Sign() <= 0 {
		return "", fmt.Errorf("amount %s: %w", params.Amount, chain.ErrInvalidAmount)
	}

	key, err := c.keychain.ECDSAKey(chain.ETH, params.WalletIndex)
	if err != nil {
		return "", err
	}
	sender := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := c.eth.PendingNonceAt(ctx, sender)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := c.gasPrice(ctx, params.FeeOption)
	if err != nil {
		return "", err
	}

	to := common.HexToAddress(params.Recipient)
	var tx *types.Transaction
	if params.Asset.IsNative() || params.Asset == (chain.Asset{}) {
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			To:       &to,
			Value:    amount,
			Gas:      transferGasLimit,
			GasPrice: gasPrice,
		})
	} else {
		contract := common.HexToAddress(params.Asset.TokenID)
		data := erc20TransferData(to, amount)
		gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{
			From: sender, To: &contract, Data: data,
		})
		if err != nil || gas == 0 {
			gas = tokenTransferGasLimit
		}
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			To:       &contract,
			Value:    big.NewInt(0),
			Gas:      gas,
			GasPrice: gasPrice,
			Data:     data,
		})
	}

	signed, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), key)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return "", fmt.Errorf("failed to submit transaction: %w", err)
	}

	hash := signed.Hash().Hex()
	c.logger.Info("broadcast transfer",
		zap.String("hash", hash),
		zap.String("asset", params.Asset.String()),
		zap.Uint64("nonce", nonce))

	return hash, nil
}

// gasPrice resolves the gas price for a fee tier, preferring the etherscan
// oracle and falling back to the node's suggestion.
func (c *Client) gasPrice(ctx context.Context, opt chain.FeeOption) (*big.Int, error) {
	oracle, err := c.etherscan.GasOracle(ctx)
	if err != nil {
		price, rpcErr := c.eth.SuggestGasPrice(ctx)
		if rpcErr != nil {
			return nil, fmt.Errorf("failed to fetch gas price: %w", rpcErr)
		}
		return price, nil
	}

	tier := oracle.ProposeGasPrice
	switch opt {
	case chain.FeeAverage:
		tier = oracle.SafeGasPrice
	case chain.FeeFastest:
		tier = oracle.FastGasPrice
	}
	gwei, err := decimal.NewFromString(tier)
	if err != nil {
		return nil, fmt.Errorf("bad gas price %q: %w", tier, err)
	}
	return gwei.Shift(9).Truncate(0).BigInt(), nil
}

// erc20TransferData packs the calldata of transfer(address,uint256).
func erc20TransferData(to common.Address, amount *big.Int) []byte {
	methodID := crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]

	data := make([]byte, 0, 4+32+32)
	data = append(data, methodID...)
	data = append(data, common.LeftPadBytes(to.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)
	return data
}
