// Package sdk is the generic contract layer that typed bindings build on.
//
// It mirrors the three primitives a binding needs: ReadContract executes a
// view call and decodes its outputs, PrepareContractCall builds an unsigned
// transaction without touching the network, and PrepareEvent turns a
// human-readable event signature plus indexed-argument filters into a log
// query. SendTransaction and GetContractEvents are the explicit steps that
// hand those descriptors to a node.
//
// The package owns no retries, caching or locking. Errors from the backend
// are returned to the caller as-is.
package sdk

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

var (
	// ErrEmptyResult is returned when a view call yields no data although the
	// method declares outputs. This is what a missing contract looks like.
	ErrEmptyResult = errors.New("contract returned no data")

	// ErrSelectorMismatch is returned by Verify when a declared selector does
	// not match the keccak-256 hash of the method's canonical signature.
	ErrSelectorMismatch = errors.New("selector mismatch")

	// ErrInvalidSignature is returned for event signatures that cannot be parsed.
	ErrInvalidSignature = errors.New("invalid event signature")

	// ErrUnknownFilter is returned when a filter key names no event parameter.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrNotIndexed is returned when a filter key names a non-indexed parameter.
	ErrNotIndexed = errors.New("parameter is not indexed")

	// ErrEventMismatch is returned when a log does not belong to the event decoding it.
	ErrEventMismatch = errors.New("log does not match event")

	// ErrNoEvents is returned by GetContractEvents when no events are given.
	ErrNoEvents = errors.New("no events to query")

	// ErrNilParam is returned when a call parameter is nil, such as an unset
	// *big.Int in a zero-value params struct.
	ErrNilParam = errors.New("nil parameter")

	// ErrReverted is returned when a transaction or simulated call reverts.
	ErrReverted = errors.New("execution reverted")

	// ErrNoChainID is returned when a transaction is sent for a contract
	// handle without a chain ID.
	ErrNoChainID = errors.New("contract has no chain id")
)

// Backend is the read side of a node connection. Both chain.EVMClient and
// go-ethereum's ethclient.Client satisfy it.
type Backend interface {
	ethereum.ContractCaller
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// TxBackend is a Backend that can also price, send and track transactions.
type TxBackend interface {
	Backend
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// Contract is a handle to one deployed contract on one chain.
type Contract struct {
	Address common.Address
	ChainID *big.Int
	Client  Backend
}

// NewContract returns a contract handle.
func NewContract(address common.Address, chainID *big.Int, client Backend) *Contract {
	return &Contract{Address: address, ChainID: chainID, Client: client}
}

func logger() *zap.Logger {
	return zap.L().Named("sdk")
}
