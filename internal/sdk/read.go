package sdk

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"go.uber.org/zap"
)

// ReadOptions describes a view call.
type ReadOptions struct {
	Contract    *Contract
	Method      Method
	Params      []any
	BlockNumber *big.Int // nil = latest
}

// ReadContract performs one eth_call and decodes the result. Backend errors,
// reverts and decoding failures are returned unchanged.
func ReadContract(ctx context.Context, opts ReadOptions) ([]any, error) {
	data, err := opts.Method.Encode(opts.Params...)
	if err != nil {
		return nil, err
	}

	to := opts.Contract.Address
	out, err := opts.Contract.Client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, opts.BlockNumber)
	if err != nil {
		return nil, err
	}
	logger().Debug("read contract",
		zap.String("method", opts.Method.Name),
		zap.Stringer("contract", to),
		zap.Int("bytes", len(out)))

	if len(out) == 0 && len(opts.Method.Outputs) > 0 {
		return nil, ErrEmptyResult
	}
	return opts.Method.Decode(out)
}
