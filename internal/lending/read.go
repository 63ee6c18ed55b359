package lending

import (
	"context"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Loan mirrors one entry of the contract's loans mapping. The zero value is
// what the contract returns for an index it has never assigned.
type Loan struct {
	Borrower           common.Address
	Lender             common.Address
	LoanAmount         *big.Int
	CollateralID       *big.Int
	CollateralContract common.Address
	DueDate            *big.Int // unix seconds
	Repaid             bool
}

// Exists reports whether the loan has a borrower.
func (l Loan) Exists() bool {
	return l.Borrower != (common.Address{})
}

// DueTime returns DueDate as a time.
func (l Loan) DueTime() time.Time {
	if l.DueDate == nil {
		return time.Time{}
	}
	return time.Unix(l.DueDate.Int64(), 0).UTC()
}

// Overdue reports whether an unrepaid loan is past its due date at now.
func (l Loan) Overdue(now time.Time) bool {
	return l.Exists() && !l.Repaid && now.After(l.DueTime())
}

// LoansParams are the inputs of loans(uint256).
type LoansParams struct {
	Arg0 *big.Int
}

// LoanCounter calls loanCounter().
func LoanCounter(ctx context.Context, c *sdk.Contract) (*big.Int, error) {
	out, err := sdk.ReadContract(ctx, sdk.ReadOptions{
		Contract: c,
		Method:   LoanCounterMethod,
	})
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Loans calls loans(uint256).
func Loans(ctx context.Context, c *sdk.Contract, p LoansParams) (Loan, error) {
	out, err := sdk.ReadContract(ctx, sdk.ReadOptions{
		Contract: c,
		Method:   LoansMethod,
		Params:   []any{p.Arg0},
	})
	if err != nil {
		return Loan{}, err
	}
	return Loan{
		Borrower:           *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		Lender:             *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		LoanAmount:         *abi.ConvertType(out[2], new(*big.Int)).(**big.Int),
		CollateralID:       *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
		CollateralContract: *abi.ConvertType(out[4], new(common.Address)).(*common.Address),
		DueDate:            *abi.ConvertType(out[5], new(*big.Int)).(**big.Int),
		Repaid:             *abi.ConvertType(out[6], new(bool)).(*bool),
	}, nil
}

// Owner calls owner().
func Owner(ctx context.Context, c *sdk.Contract) (common.Address, error) {
	out, err := sdk.ReadContract(ctx, sdk.ReadOptions{
		Contract: c,
		Method:   OwnerMethod,
	})
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}
