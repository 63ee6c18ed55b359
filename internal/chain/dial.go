package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Client is a connection to an EVM node.
type Client interface {
	ethereum.ContractCaller
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// Close is a no-op; the HTTP client holds no persistent connection state.
func (c *EVMClient) Close() {}

// Dial connects to url. WebSocket and IPC endpoints go through go-ethereum's
// ethclient; HTTP endpoints use EVMClient.
func Dial(ctx context.Context, url string) (Client, error) {
	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return NewEVMClient(url), nil
	case strings.HasPrefix(url, "ws://"), strings.HasPrefix(url, "wss://"), strings.HasSuffix(url, ".ipc"):
		c, err := ethclient.DialContext(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", url, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported RPC URL %q", url)
	}
}
