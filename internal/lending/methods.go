package lending

import "github.com/Mohsinsiddi/nftlend/internal/sdk"

var (
	uint256Out = []sdk.Param{{Name: "", Type: "uint256", InternalType: "uint256"}}
	loanIDIn   = []sdk.Param{{Name: "loanId", Type: "uint256", InternalType: "uint256"}}
)

// Read methods.
var (
	LoanCounterMethod = sdk.Method{
		Name:     "loanCounter",
		Selector: "0x34d9289e",
		Outputs:  uint256Out,
	}

	LoansMethod = sdk.Method{
		Name:     "loans",
		Selector: "0xe1ec3c68",
		Inputs:   []sdk.Param{{Name: "", Type: "uint256", InternalType: "uint256"}},
		Outputs: []sdk.Param{
			{Name: "borrower", Type: "address", InternalType: "address"},
			{Name: "lender", Type: "address", InternalType: "address"},
			{Name: "loanAmount", Type: "uint256", InternalType: "uint256"},
			{Name: "collateralId", Type: "uint256", InternalType: "uint256"},
			{Name: "collateralContract", Type: "address", InternalType: "contract IERC721"},
			{Name: "dueDate", Type: "uint256", InternalType: "uint256"},
			{Name: "repaid", Type: "bool", InternalType: "bool"},
		},
	}

	OwnerMethod = sdk.Method{
		Name:     "owner",
		Selector: "0x8da5cb5b",
		Outputs:  []sdk.Param{{Name: "", Type: "address", InternalType: "address"}},
	}
)

// Write methods.
var (
	CheckLoanDefaultMethod = sdk.Method{
		Name:     "checkLoanDefault",
		Selector: "0x1fd3ca77",
		Inputs:   loanIDIn,
	}

	RenounceOwnershipMethod = sdk.Method{
		Name:     "renounceOwnership",
		Selector: "0x715018a6",
	}

	RepayLoanMethod = sdk.Method{
		Name:     "repayLoan",
		Selector: "0xab7b1c89",
		Inputs:   loanIDIn,
	}

	RequestLoanMethod = sdk.Method{
		Name:     "requestLoan",
		Selector: "0x477811d5",
		Inputs: []sdk.Param{
			{Name: "loanAmount", Type: "uint256", InternalType: "uint256"},
			{Name: "collateralId", Type: "uint256", InternalType: "uint256"},
			{Name: "collateralContract", Type: "address", InternalType: "contract IERC721"},
			{Name: "loanDuration", Type: "uint256", InternalType: "uint256"},
			{Name: "lender", Type: "address", InternalType: "address"},
		},
	}

	TransferOwnershipMethod = sdk.Method{
		Name:     "transferOwnership",
		Selector: "0xf2fde38b",
		Inputs:   []sdk.Param{{Name: "newOwner", Type: "address", InternalType: "address"}},
	}
)

// Event signatures.
const (
	LoanDefaultedSignature        = "event LoanDefaulted(uint256 loanId)"
	LoanRepaidSignature           = "event LoanRepaid(uint256 loanId)"
	LoanRequestedSignature        = "event LoanRequested(uint256 loanId, address borrower, address lender, uint256 loanAmount, uint256 collateralId, address collateralContract, uint256 dueDate)"
	OwnershipTransferredSignature = "event OwnershipTransferred(address indexed previousOwner, address indexed newOwner)"
)

// Methods returns every bound function, reads first.
func Methods() []sdk.Method {
	return []sdk.Method{
		LoanCounterMethod,
		LoansMethod,
		OwnerMethod,
		CheckLoanDefaultMethod,
		RenounceOwnershipMethod,
		RepayLoanMethod,
		RequestLoanMethod,
		TransferOwnershipMethod,
	}
}

// EventSignatures returns every bound event signature.
func EventSignatures() []string {
	return []string{
		LoanDefaultedSignature,
		LoanRepaidSignature,
		LoanRequestedSignature,
		OwnershipTransferredSignature,
	}
}
