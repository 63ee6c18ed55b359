package lending

import (
	"math/big"

	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/ethereum/go-ethereum/common"
)

// CheckLoanDefaultParams are the inputs of checkLoanDefault(uint256).
type CheckLoanDefaultParams struct {
	LoanID *big.Int
}

// RepayLoanParams are the inputs of repayLoan(uint256). Value is the amount
// of wei sent with the call; nil sends none.
type RepayLoanParams struct {
	LoanID *big.Int
	Value  *big.Int
}

// RequestLoanParams are the inputs of
// requestLoan(uint256,uint256,address,uint256,address).
type RequestLoanParams struct {
	LoanAmount         *big.Int
	CollateralID       *big.Int
	CollateralContract common.Address
	LoanDuration       *big.Int // seconds
	Lender             common.Address
}

// TransferOwnershipParams are the inputs of transferOwnership(address).
type TransferOwnershipParams struct {
	NewOwner common.Address
}

// CheckLoanDefault prepares checkLoanDefault(loanId).
func CheckLoanDefault(c *sdk.Contract, p CheckLoanDefaultParams) *sdk.PreparedTransaction {
	return sdk.PrepareContractCall(sdk.CallOptions{
		Contract: c,
		Method:   CheckLoanDefaultMethod,
		Params:   []any{p.LoanID},
	})
}

// RenounceOwnership prepares renounceOwnership().
func RenounceOwnership(c *sdk.Contract) *sdk.PreparedTransaction {
	return sdk.PrepareContractCall(sdk.CallOptions{
		Contract: c,
		Method:   RenounceOwnershipMethod,
	})
}

// RepayLoan prepares repayLoan(loanId).
func RepayLoan(c *sdk.Contract, p RepayLoanParams) *sdk.PreparedTransaction {
	return sdk.PrepareContractCall(sdk.CallOptions{
		Contract: c,
		Method:   RepayLoanMethod,
		Params:   []any{p.LoanID},
		Value:    p.Value,
	})
}

// RequestLoan prepares requestLoan(loanAmount, collateralId,
// collateralContract, loanDuration, lender).
func RequestLoan(c *sdk.Contract, p RequestLoanParams) *sdk.PreparedTransaction {
	return sdk.PrepareContractCall(sdk.CallOptions{
		Contract: c,
		Method:   RequestLoanMethod,
		Params:   []any{p.LoanAmount, p.CollateralID, p.CollateralContract, p.LoanDuration, p.Lender},
	})
}

// TransferOwnership prepares transferOwnership(newOwner).
func TransferOwnership(c *sdk.Contract, p TransferOwnershipParams) *sdk.PreparedTransaction {
	return sdk.PrepareContractCall(sdk.CallOptions{
		Contract: c,
		Method:   TransferOwnershipMethod,
		Params:   []any{p.NewOwner},
	})
}
