package lending

import (
	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/ethereum/go-ethereum/common"
)

// OwnershipTransferredEventFilters restricts OwnershipTransferred by its
// indexed parameters. Nil fields match any value.
type OwnershipTransferredEventFilters struct {
	PreviousOwner *common.Address
	NewOwner      *common.Address
}

// LoanDefaultedEvent prepares the LoanDefaulted event.
func LoanDefaultedEvent() (*sdk.PreparedEvent, error) {
	return sdk.PrepareEvent(sdk.EventOptions{Signature: LoanDefaultedSignature})
}

// LoanRepaidEvent prepares the LoanRepaid event.
func LoanRepaidEvent() (*sdk.PreparedEvent, error) {
	return sdk.PrepareEvent(sdk.EventOptions{Signature: LoanRepaidSignature})
}

// LoanRequestedEvent prepares the LoanRequested event.
func LoanRequestedEvent() (*sdk.PreparedEvent, error) {
	return sdk.PrepareEvent(sdk.EventOptions{Signature: LoanRequestedSignature})
}

// OwnershipTransferredEvent prepares the OwnershipTransferred event. Only the
// filters that are set end up in the descriptor.
func OwnershipTransferredEvent(filters OwnershipTransferredEventFilters) (*sdk.PreparedEvent, error) {
	var f map[string]any
	if filters.PreviousOwner != nil {
		f = map[string]any{"previousOwner": *filters.PreviousOwner}
	}
	if filters.NewOwner != nil {
		if f == nil {
			f = map[string]any{}
		}
		f["newOwner"] = *filters.NewOwner
	}
	return sdk.PrepareEvent(sdk.EventOptions{
		Signature: OwnershipTransferredSignature,
		Filters:   f,
	})
}
