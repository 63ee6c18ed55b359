package cmd

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/Mohsinsiddi/nftlend/internal/config"
	"github.com/Mohsinsiddi/nftlend/internal/ens"
	"github.com/Mohsinsiddi/nftlend/internal/lending"
	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Read, request and repay loans",
}

var loanCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the contract's loan counter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := lending.LoanCounter(cmd.Context(), s.contract)
		if err != nil {
			return err
		}
		fmt.Println(ui.Val(n.String()))
		return nil
	},
}

var loanGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one loan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUint256(args[0])
		if err != nil {
			return err
		}
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		loan, err := lending.Loans(cmd.Context(), s.contract, lending.LoansParams{Arg0: id})
		if err != nil {
			return err
		}
		fmt.Println(ui.LoanBlock(id, loan, time.Now()))
		if !loan.Exists() {
			fmt.Println(ui.Hint("No loan with this id"))
		}
		return nil
	},
}

var loanOwnerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Show the contract owner",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		owner, err := lending.Owner(cmd.Context(), s.contract)
		if err != nil {
			return err
		}
		fmt.Println(ui.Addr(owner.Hex()))
		if name, err := ens.ReverseLookup(cmd.Context(), s.client, owner); err == nil {
			fmt.Println(ui.Val(name))
		} else {
			zap.L().Debug("no ENS name for owner", zap.Error(err))
		}
		if link := s.network.AddressURL(owner.Hex()); link != "" {
			fmt.Println(ui.Meta(link))
		}
		return nil
	},
}

var loanListLimit int

var loanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent loans",
	Long: `List loans newest first, walking down from the loan counter.

Ids without a borrower are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if loanListLimit <= 0 {
			return fmt.Errorf("--limit must be positive")
		}
		ctx := cmd.Context()
		s, err := connect(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		counter, err := lending.LoanCounter(ctx, s.contract)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner("Fetching loans...")
		spin.Start()
		found, err := fetchLoans(ctx, s.contract, loanIDsDesc(counter, loanListLimit))
		spin.Stop()
		if err != nil {
			return err
		}

		now := time.Now()
		tbl := ui.NewTable(ui.LoanColumns())
		for _, l := range found {
			tbl.AddRow(ui.LoanRow(l.id, l.loan, now))
		}
		if len(found) == 0 {
			fmt.Println(ui.Meta("No loans yet."))
			return nil
		}
		fmt.Println(tbl.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d loan(s), counter at %s", len(found), counter)))
		return nil
	},
}

// loanIDsDesc returns ids counter, counter-1, ... 0, at most limit+1 of them.
// The extra id covers both 0- and 1-based counters.
func loanIDsDesc(counter *big.Int, limit int) []*big.Int {
	var ids []*big.Int
	id := new(big.Int).Set(counter)
	for i := 0; i <= limit && id.Sign() >= 0; i++ {
		ids = append(ids, new(big.Int).Set(id))
		id.Sub(id, big.NewInt(1))
	}
	return ids
}

type loanEntry struct {
	id   *big.Int
	loan lending.Loan
}

// fetchLoans reads ids concurrently and returns the existing loans, newest first.
func fetchLoans(ctx context.Context, c *sdk.Contract, ids []*big.Int) ([]loanEntry, error) {
	p := pool.NewWithResults[*loanEntry]().
		WithContext(ctx).
		WithFirstError().
		WithMaxGoroutines(config.LoanFetchConcurrency)
	for _, id := range ids {
		id := id
		p.Go(func(ctx context.Context) (*loanEntry, error) {
			loan, err := lending.Loans(ctx, c, lending.LoansParams{Arg0: id})
			if err != nil {
				return nil, fmt.Errorf("loan %s: %w", id, err)
			}
			if !loan.Exists() {
				return nil, nil
			}
			return &loanEntry{id: id, loan: loan}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	var out []loanEntry
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id.Cmp(out[j].id) > 0 })
	return out, nil
}

// --- writes ---

var (
	requestFlags      txFlags
	requestAmount     string
	requestTokenID    string
	requestCollection string
	requestDuration   string
	requestLender     string
)

var loanRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Prepare requestLoan",
	Long: `Prepare a requestLoan call that locks an ERC-721 token as collateral.

Examples:
  nftlend loan request --amount 0.5 --token-id 42 --collection 0xNFT --duration 30d --lender lender.eth
  nftlend loan request ... --simulate
  nftlend loan request ... --send --wallet alice`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := connect(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		p, err := requestParams(func(v string) (common.Address, error) {
			return s.resolveAddress(ctx, v)
		})
		if err != nil {
			return err
		}
		return runPrepared(cmd.Context(), s, lending.RequestLoan(s.contract, p), &requestFlags)
	},
}

// requestParams parses the request flags. resolve turns the collection and
// lender flags into addresses.
func requestParams(resolve func(string) (common.Address, error)) (lending.RequestLoanParams, error) {
	var (
		p   lending.RequestLoanParams
		err error
	)
	if p.LoanAmount, err = parseEther(requestAmount); err != nil {
		return p, fmt.Errorf("--amount: %w", err)
	}
	if p.CollateralID, err = parseUint256(requestTokenID); err != nil {
		return p, fmt.Errorf("--token-id: %w", err)
	}
	if p.CollateralContract, err = resolve(requestCollection); err != nil {
		return p, fmt.Errorf("--collection: %w", err)
	}
	if p.LoanDuration, err = parseSeconds(requestDuration); err != nil {
		return p, fmt.Errorf("--duration: %w", err)
	}
	if p.Lender, err = resolve(requestLender); err != nil {
		return p, fmt.Errorf("--lender: %w", err)
	}
	return p, nil
}

var (
	repayFlags txFlags
	repayValue string
)

var loanRepayCmd = &cobra.Command{
	Use:   "repay <id>",
	Short: "Prepare repayLoan",
	Long: `Prepare a repayLoan call. Pass the repayment amount with --value.

Examples:
  nftlend loan repay 3 --value 0.5 --send`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUint256(args[0])
		if err != nil {
			return err
		}
		p := lending.RepayLoanParams{LoanID: id}
		if repayValue != "" {
			if p.Value, err = parseEther(repayValue); err != nil {
				return err
			}
		}
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return runPrepared(cmd.Context(), s, lending.RepayLoan(s.contract, p), &repayFlags)
	},
}

var defaultFlags txFlags

var loanCheckDefaultCmd = &cobra.Command{
	Use:   "check-default <id>",
	Short: "Prepare checkLoanDefault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseUint256(args[0])
		if err != nil {
			return err
		}
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return runPrepared(cmd.Context(), s, lending.CheckLoanDefault(s.contract, lending.CheckLoanDefaultParams{LoanID: id}), &defaultFlags)
	},
}

func init() {
	loanListCmd.Flags().IntVar(&loanListLimit, "limit", 20, "maximum number of loan ids to read")

	loanRequestCmd.Flags().StringVar(&requestAmount, "amount", "", "loan amount in ETH (or e.g. 1000wei)")
	loanRequestCmd.Flags().StringVar(&requestTokenID, "token-id", "", "collateral token id")
	loanRequestCmd.Flags().StringVar(&requestCollection, "collection", "", "collateral ERC-721 contract")
	loanRequestCmd.Flags().StringVar(&requestDuration, "duration", "", "loan duration: seconds, 72h or 30d")
	loanRequestCmd.Flags().StringVar(&requestLender, "lender", "", "lender address")
	for _, f := range []string{"amount", "token-id", "collection", "duration", "lender"} {
		_ = loanRequestCmd.MarkFlagRequired(f)
	}
	requestFlags.register(loanRequestCmd)

	loanRepayCmd.Flags().StringVar(&repayValue, "value", "", "ETH sent with the call")
	repayFlags.register(loanRepayCmd)

	defaultFlags.register(loanCheckDefaultCmd)

	loanCmd.AddCommand(
		loanCountCmd,
		loanGetCmd,
		loanOwnerCmd,
		loanListCmd,
		loanRequestCmd,
		loanRepayCmd,
		loanCheckDefaultCmd,
		loanEventsCmd,
	)
}
