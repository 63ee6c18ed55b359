package sdk

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/nftlend/internal/config"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Signer authorizes transactions for one account.
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// CallOptions describes a state-changing call.
type CallOptions struct {
	Contract *Contract
	Method   Method
	Params   []any
	Value    *big.Int // nil = no value
}

// PreparedTransaction is an unsigned, unsent contract call. Encoding happens
// lazily so malformed params surface from Data, not from PrepareContractCall.
type PreparedTransaction struct {
	Contract *Contract
	Method   Method
	Params   []any
	Value    *big.Int
}

// PrepareContractCall builds a transaction descriptor. It does no I/O.
func PrepareContractCall(opts CallOptions) *PreparedTransaction {
	return &PreparedTransaction{
		Contract: opts.Contract,
		Method:   opts.Method,
		Params:   opts.Params,
		Value:    opts.Value,
	}
}

// To returns the target contract address.
func (t *PreparedTransaction) To() common.Address {
	return t.Contract.Address
}

// Data returns the calldata: selector followed by the encoded params.
func (t *PreparedTransaction) Data() ([]byte, error) {
	return t.Method.Encode(t.Params...)
}

// CallMsg returns the transaction as a call message sent from from.
func (t *PreparedTransaction) CallMsg(from common.Address) (ethereum.CallMsg, error) {
	data, err := t.Data()
	if err != nil {
		return ethereum.CallMsg{}, err
	}
	to := t.To()
	return ethereum.CallMsg{From: from, To: &to, Value: t.value(), Data: data}, nil
}

func (t *PreparedTransaction) value() *big.Int {
	if t.Value == nil {
		return new(big.Int)
	}
	return t.Value
}

// SimulateTransaction dry-runs the call with eth_call from the given account.
// A revert is reported as ErrReverted with the decoded reason when the node
// returns one.
func SimulateTransaction(ctx context.Context, backend Backend, tx *PreparedTransaction, from common.Address) ([]byte, error) {
	msg, err := tx.CallMsg(from)
	if err != nil {
		return nil, err
	}
	out, err := backend.CallContract(ctx, msg, nil)
	if err != nil {
		if reason, ok := revertReason(err); ok {
			return nil, fmt.Errorf("%w: %s", ErrReverted, reason)
		}
		return nil, err
	}
	return out, nil
}

// SendTransaction fills in nonce, fees and gas, signs with signer and
// broadcasts. It returns the transaction hash; use WaitForReceipt to wait for
// inclusion.
func SendTransaction(ctx context.Context, backend TxBackend, tx *PreparedTransaction, signer Signer) (common.Hash, error) {
	chainID := tx.Contract.ChainID
	if chainID == nil {
		return common.Hash{}, ErrNoChainID
	}

	from := signer.Address()
	msg, err := tx.CallMsg(from)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting gas price: %w", err)
	}
	tip, err := backend.SuggestGasTipCap(ctx)
	if err != nil {
		// Pre-London nodes have no eth_maxPriorityFeePerGas.
		tip = gasPrice
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(gasPrice, big.NewInt(2)), tip)

	gas, err := backend.EstimateGas(ctx, msg)
	if err != nil {
		logger().Warn("gas estimation failed, using fallback limit",
			zap.String("method", tx.Method.Name),
			zap.Uint64("gas", config.GasLimitContractCall),
			zap.Error(err))
		gas = config.GasLimitContractCall
	}

	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        msg.To,
		Value:     msg.Value,
		Data:      msg.Data,
	})

	signed, err := signer.SignTx(unsigned, chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}

	if err := backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}

	logger().Info("transaction sent",
		zap.String("method", tx.Method.Name),
		zap.Stringer("hash", signed.Hash()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas))
	return signed.Hash(), nil
}

// WaitForReceipt polls every interval until the transaction is mined or ctx
// is done. A mined but reverted transaction returns its receipt and ErrReverted.
func WaitForReceipt(ctx context.Context, backend TxBackend, hash common.Hash, interval time.Duration) (*types.Receipt, error) {
	for {
		receipt, err := backend.TransactionReceipt(ctx, hash)
		switch {
		case errors.Is(err, ethereum.NotFound):
		case err != nil:
			return nil, err
		case receipt.Status == types.ReceiptStatusFailed:
			return receipt, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
		default:
			return receipt, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("transaction %s not mined: %w", hash.Hex(), ctx.Err())
		case <-time.After(interval):
		}
	}
}

// revertReason pulls a revert reason out of a node error. Nodes attach the
// revert payload as error data; older ones only put it in the message.
func revertReason(err error) (string, bool) {
	var de rpc.DataError
	if errors.As(err, &de) {
		if s, ok := de.ErrorData().(string); ok {
			if data, derr := hexutil.Decode(s); derr == nil {
				if reason, uerr := abi.UnpackRevert(data); uerr == nil {
					return reason, true
				}
			}
		}
	}
	msg := err.Error()
	if idx := strings.Index(msg, "execution reverted"); idx >= 0 {
		reason := strings.TrimPrefix(msg[idx:], "execution reverted")
		return strings.TrimSpace(strings.TrimPrefix(reason, ":")), true
	}
	return "", false
}
