package sdk

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// fakeBackend is an in-memory TxBackend that records every call.
type fakeBackend struct {
	mu sync.Mutex

	callOut  []byte
	callErr  error
	callMsgs []ethereum.CallMsg

	logs    map[common.Hash][]types.Log // keyed by event ID
	queries []ethereum.FilterQuery

	nonce    uint64
	gasPrice *big.Int
	tip      *big.Int
	tipErr   error
	gas      uint64
	gasErr   error
	sendErr  error
	sent     []*types.Transaction
	receipts []receiptResult
	polls    int
}

type receiptResult struct {
	receipt *types.Receipt
	err     error
}

func (f *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callMsgs = append(f.callMsgs, msg)
	return f.callOut, f.callErr
}

func (f *fakeBackend) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if len(q.Topics) == 0 || len(q.Topics[0]) == 0 {
		return nil, errors.New("query without event topic")
	}
	return f.logs[q.Topics[0][0]], nil
}

func (f *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return f.gasPrice, nil
}

func (f *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return f.tip, f.tipErr
}

func (f *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return f.gas, f.gasErr
}

func (f *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if len(f.receipts) == 0 {
		return nil, ethereum.NotFound
	}
	r := f.receipts[0]
	if len(f.receipts) > 1 {
		f.receipts = f.receipts[1:]
	}
	return r.receipt, r.err
}

// keySigner signs with an in-memory key.
type keySigner struct {
	key *ecdsa.PrivateKey
}

func newKeySigner() *keySigner {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return &keySigner{key: key}
}

func (s *keySigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

func (s *keySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.NewLondonSigner(chainID), s.key)
}

// dataError mimics a node error carrying revert data.
type dataError struct {
	msg  string
	data any
}

func (e *dataError) Error() string { return e.msg }
func (e *dataError) ErrorCode() int { return 3 }
func (e *dataError) ErrorData() any { return e.data }

var testContractAddr = common.HexToAddress("0xbd312e3bddeb5e299126faaf610cf0c989e9c625")

func testContract(b Backend) *Contract {
	return NewContract(testContractAddr, big.NewInt(11155111), b)
}
