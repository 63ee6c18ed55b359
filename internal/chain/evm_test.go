package chain

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

type recordedCall struct {
	Method string
	Params []json.RawMessage
}

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method and records every request. Unknown methods return an RPC error.
func rpcMock(t *testing.T, responses map[string]any) (*httptest.Server, func() []recordedCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		mu.Lock()
		calls = append(calls, recordedCall{Method: req.Method, Params: req.Params})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]any{"code": -32601, "message": "method not found"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recordedCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedCall(nil), calls...)
	}
}

// rpcErrorServer always answers with the given JSON-RPC error object.
func rpcErrorServer(t *testing.T, errObj map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      1,
			"error":   errObj,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// rpcBadJSON creates a server that returns malformed JSON.
func rpcBadJSON(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{not valid json`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

var ctx = context.Background()

// ---------------------------------------------------------------------------
// scalar methods
// ---------------------------------------------------------------------------

func TestChainID(t *testing.T) {
	srv, _ := rpcMock(t, map[string]any{"eth_chainId": "0xaa36a7"})
	id, err := NewEVMClient(srv.URL).ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), id.Int64())
}

func TestBlockNumber(t *testing.T) {
	srv, _ := rpcMock(t, map[string]any{"eth_blockNumber": "0x10"})
	n, err := NewEVMClient(srv.URL).BlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), n)
}

func TestPingReportsLatencyAndBlock(t *testing.T) {
	srv, _ := rpcMock(t, map[string]any{"eth_blockNumber": "0x3e8"})
	latency, block, err := NewEVMClient(srv.URL).Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), block)
	assert.Greater(t, latency.Nanoseconds(), int64(0))
}

func TestSuggestGasPriceAndTip(t *testing.T) {
	srv, _ := rpcMock(t, map[string]any{
		"eth_gasPrice":             "0x3b9aca00",
		"eth_maxPriorityFeePerGas": "0x59682f00",
	})
	c := NewEVMClient(srv.URL)

	gp, err := c.SuggestGasPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000), gp)

	tip, err := c.SuggestGasTipCap(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_500_000_000), tip)
}

func TestPendingNonceUsesPendingTag(t *testing.T) {
	srv, calls := rpcMock(t, map[string]any{"eth_getTransactionCount": "0x7"})
	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	n, err := NewEVMClient(srv.URL).PendingNonceAt(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	got := calls()
	require.Len(t, got, 1)
	assert.JSONEq(t, `"pending"`, string(got[0].Params[1]))
}

func TestCodeAt(t *testing.T) {
	srv, _ := rpcMock(t, map[string]any{"eth_getCode": "0x6080"})
	code, err := NewEVMClient(srv.URL).CodeAt(ctx, common.Address{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, code)
}

// ---------------------------------------------------------------------------
// eth_call / eth_estimateGas
// ---------------------------------------------------------------------------

func TestCallContractSendsToAndData(t *testing.T) {
	word := "0x000000000000000000000000000000000000000000000000000000000000002a"
	srv, calls := rpcMock(t, map[string]any{"eth_call": word})
	to := common.HexToAddress("0xbd312e3bddeb5e299126faaf610cf0c989e9c625")

	out, err := NewEVMClient(srv.URL).CallContract(ctx, ethereum.CallMsg{To: &to, Data: []byte{0x34, 0xd9, 0x28, 0x9e}}, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), new(big.Int).SetBytes(out))

	got := calls()
	require.Len(t, got, 1)
	var arg map[string]string
	require.NoError(t, json.Unmarshal(got[0].Params[0], &arg))
	assert.Equal(t, "0x34d9289e", arg["data"])
	assert.Equal(t, to, common.HexToAddress(arg["to"]))
	assert.JSONEq(t, `"latest"`, string(got[0].Params[1]))
}

func TestCallContractAtBlock(t *testing.T) {
	srv, calls := rpcMock(t, map[string]any{"eth_call": "0x"})
	to := common.Address{}
	_, err := NewEVMClient(srv.URL).CallContract(ctx, ethereum.CallMsg{To: &to}, big.NewInt(255))
	require.NoError(t, err)
	assert.JSONEq(t, `"0xff"`, string(calls()[0].Params[1]))
}

func TestCallContractRevertCarriesData(t *testing.T) {
	srv := rpcErrorServer(t, map[string]any{
		"code":    3,
		"message": "execution reverted: Loan not found",
		"data":    "0x08c379a0",
	})
	to := common.Address{}
	_, err := NewEVMClient(srv.URL).CallContract(ctx, ethereum.CallMsg{To: &to}, nil)
	require.Error(t, err)

	var de rpc.DataError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "0x08c379a0", de.ErrorData())
	assert.Contains(t, err.Error(), "Loan not found")
}

func TestEstimateGas(t *testing.T) {
	srv, _ := rpcMock(t, map[string]any{"eth_estimateGas": "0x5208"})
	gas, err := NewEVMClient(srv.URL).EstimateGas(ctx, ethereum.CallMsg{})
	require.NoError(t, err)
	assert.Equal(t, uint64(21000), gas)
}

func TestBadJSONResponse(t *testing.T) {
	_, err := NewEVMClient(rpcBadJSON(t).URL).BlockNumber(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing response")
}

func TestUnreachableEndpoint(t *testing.T) {
	_, err := NewEVMClient("http://127.0.0.1:19993").BlockNumber(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPC request failed")
}

// ---------------------------------------------------------------------------
// transactions
// ---------------------------------------------------------------------------

func TestSendTransactionSendsRawBytes(t *testing.T) {
	srv, calls := rpcMock(t, map[string]any{"eth_sendRawTransaction": common.Hash{1}.Hex()})

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	chainID := big.NewInt(11155111)
	to := common.HexToAddress("0xbd312e3bddeb5e299126faaf610cf0c989e9c625")
	tx, err := types.SignTx(types.NewTx(&types.DynamicFeeTx{
		ChainID: chainID, Nonce: 1, GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(2), Gas: 21000, To: &to,
	}), types.NewLondonSigner(chainID), key)
	require.NoError(t, err)

	require.NoError(t, NewEVMClient(srv.URL).SendTransaction(ctx, tx))

	want, err := tx.MarshalBinary()
	require.NoError(t, err)
	got := calls()
	require.Len(t, got, 1)
	assert.JSONEq(t, `"`+hexutil.Encode(want)+`"`, string(got[0].Params[0]))
}

func TestTransactionReceiptPending(t *testing.T) {
	srv, _ := rpcMock(t, map[string]any{"eth_getTransactionReceipt": nil})
	_, err := NewEVMClient(srv.URL).TransactionReceipt(ctx, common.Hash{})
	assert.ErrorIs(t, err, ethereum.NotFound)
}

func TestTransactionReceiptMined(t *testing.T) {
	srv, _ := rpcMock(t, map[string]any{"eth_getTransactionReceipt": map[string]any{
		"status":          "0x1",
		"blockNumber":     "0x64",
		"gasUsed":         "0xc350",
		"contractAddress": nil,
	}})
	hash := common.HexToHash("0xabc")
	r, err := NewEVMClient(srv.URL).TransactionReceipt(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, r.Status)
	assert.Equal(t, int64(100), r.BlockNumber.Int64())
	assert.Equal(t, uint64(50000), r.GasUsed)
	assert.Equal(t, hash, r.TxHash)
	assert.Equal(t, common.Address{}, r.ContractAddress)
}

// ---------------------------------------------------------------------------
// eth_getLogs
// ---------------------------------------------------------------------------

func TestFilterLogsDecodesEntries(t *testing.T) {
	topic := crypto.Keccak256Hash([]byte("LoanRepaid(uint256)"))
	srv, calls := rpcMock(t, map[string]any{"eth_getLogs": []map[string]any{{
		"address":          "0xbd312e3bddeb5e299126faaf610cf0c989e9c625",
		"topics":           []string{topic.Hex()},
		"data":             "0x0000000000000000000000000000000000000000000000000000000000000003",
		"blockNumber":      "0x1a",
		"transactionHash":  "0x00000000000000000000000000000000000000000000000000000000000000ff",
		"transactionIndex": "0x2",
		"blockHash":        "0x00000000000000000000000000000000000000000000000000000000000000ee",
		"logIndex":         "0x5",
		"removed":          false,
	}}})

	addr := common.HexToAddress("0xbd312e3bddeb5e299126faaf610cf0c989e9c625")
	logs, err := NewEVMClient(srv.URL).FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(10),
		Addresses: []common.Address{addr},
		Topics:    [][]common.Hash{{topic}},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	l := logs[0]
	assert.Equal(t, addr, l.Address)
	assert.Equal(t, []common.Hash{topic}, l.Topics)
	assert.Equal(t, uint64(26), l.BlockNumber)
	assert.Equal(t, uint(5), l.Index)
	assert.Equal(t, uint(2), l.TxIndex)
	assert.Equal(t, big.NewInt(3), new(big.Int).SetBytes(l.Data))

	var filter map[string]any
	require.NoError(t, json.Unmarshal(calls()[0].Params[0], &filter))
	assert.Equal(t, "0xa", filter["fromBlock"])
	assert.Equal(t, "latest", filter["toBlock"])
}

func TestFilterLogsDefaultsFromBlockToGenesis(t *testing.T) {
	srv, calls := rpcMock(t, map[string]any{"eth_getLogs": []any{}})
	logs, err := NewEVMClient(srv.URL).FilterLogs(ctx, ethereum.FilterQuery{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	var filter map[string]any
	require.NoError(t, json.Unmarshal(calls()[0].Params[0], &filter))
	assert.Equal(t, "0x0", filter["fromBlock"])
}

// ---------------------------------------------------------------------------
// Dial
// ---------------------------------------------------------------------------

func TestDialHTTPReturnsEVMClient(t *testing.T) {
	c, err := Dial(ctx, "https://rpc.example.org")
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &EVMClient{}, c)
}

func TestDialRejectsUnknownScheme(t *testing.T) {
	_, err := Dial(ctx, "ftp://rpc.example.org")
	assert.Error(t, err)
}
