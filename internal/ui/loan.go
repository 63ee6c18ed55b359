package ui

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"

	"github.com/Mohsinsiddi/nftlend/internal/lending"
	"github.com/Mohsinsiddi/nftlend/internal/sdk"
)

// FormatWei renders a wei amount in ether with trailing zeros trimmed.
func FormatWei(wei *big.Int) string {
	if wei == nil {
		return "0 ETH"
	}
	f := new(big.Float).SetPrec(256).SetInt(wei)
	f.Quo(f, new(big.Float).SetInt64(params.Ether))
	s := f.Text('f', 18)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s + " ETH"
}

// LoanStatus is a one-word summary of a loan at now.
func LoanStatus(l lending.Loan, now time.Time) string {
	switch {
	case !l.Exists():
		return "none"
	case l.Repaid:
		return "repaid"
	case l.Overdue(now):
		return "overdue"
	default:
		return "active"
	}
}

// StyledStatus colours a LoanStatus value.
func StyledStatus(status string) string {
	switch status {
	case "repaid":
		return StyleSuccess.Render(status)
	case "overdue":
		return StyleError.Render(status)
	case "active":
		return StyleWarning.Render(status)
	default:
		return StyleMeta.Render(status)
	}
}

// LoanBlock renders one loan as a key-value box.
func LoanBlock(id *big.Int, l lending.Loan, now time.Time) string {
	due := "-"
	if l.DueDate != nil && l.DueDate.Sign() > 0 {
		due = l.DueTime().Format(time.RFC3339)
	}
	return KeyValueBlock(fmt.Sprintf("Loan #%s", id), [][2]string{
		{"Status", StyledStatus(LoanStatus(l, now))},
		{"Borrower", l.Borrower.Hex()},
		{"Lender", l.Lender.Hex()},
		{"Amount", FormatWei(l.LoanAmount)},
		{"Collateral", fmt.Sprintf("%s #%s", l.CollateralContract.Hex(), bigString(l.CollateralID))},
		{"Due", due},
	})
}

// LoanRow is one line of a loan listing.
func LoanRow(id *big.Int, l lending.Loan, now time.Time) Row {
	return Row{
		id.String(),
		TruncateAddr(l.Borrower.Hex()),
		TruncateAddr(l.Lender.Hex()),
		FormatWei(l.LoanAmount),
		bigString(l.CollateralID),
		LoanStatus(l, now),
	}
}

// LoanColumns are the columns matching LoanRow.
func LoanColumns() []Column {
	return []Column{
		{Title: "ID"}, {Title: "Borrower"}, {Title: "Lender"},
		{Title: "Amount"}, {Title: "Token"}, {Title: "Status"},
	}
}

// EventTable renders decoded events in the order given.
func EventTable(events []sdk.DecodedEvent) string {
	tbl := NewTable([]Column{{Title: "Block"}, {Title: "Event"}, {Title: "Tx"}, {Title: "Args"}})
	for _, ev := range events {
		tbl.AddRow(Row{
			fmt.Sprint(ev.BlockNumber),
			ev.Name,
			TruncateAddr(ev.TxHash.Hex()),
			FormatArgs(ev.Args),
		})
	}
	return tbl.Render()
}

// FormatArgs prints event arguments as key=value pairs sorted by key.
func FormatArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		v := args[k]
		if a, ok := v.(common.Address); ok {
			v = a.Hex()
		}
		parts[i] = fmt.Sprintf("%s=%v", k, v)
	}
	return strings.Join(parts, " ")
}

func bigString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}
