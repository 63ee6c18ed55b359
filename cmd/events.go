package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/nftlend/internal/lending"
	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	eventsPrevOwner string
	eventsNewOwner  string
	eventsFrom      string
	eventsTo        string
	eventsLast      uint64
)

// eventKinds maps the CLI names to event builders, in display order.
var eventKinds = []string{"requested", "repaid", "defaulted", "ownership"}

var loanEventsCmd = &cobra.Command{
	Use:   "events [requested|repaid|defaulted|ownership]...",
	Short: "Query the contract's events",
	Long: `Fetch and decode events emitted by the lending contract.

Without arguments every event type is queried. Without --from the last
--last blocks are searched.

Examples:
  nftlend loan events
  nftlend loan events repaid defaulted --from 7000000
  nftlend loan events ownership --new-owner 0xNewOwner --from earliest
  nftlend loan events ownership --previous-owner alice.eth`,
	ValidArgs: eventKinds,
	Args:      cobra.OnlyValidArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := connect(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		filters, err := ownershipFilters(eventsPrevOwner, eventsNewOwner, func(v string) (common.Address, error) {
			return s.resolveAddress(ctx, v)
		})
		if err != nil {
			return err
		}
		events, err := preparedEvents(args, filters)
		if err != nil {
			return err
		}

		from, to, err := blockRange(ctx, s.client, eventsFrom, eventsTo, eventsLast)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Fetching events on %s...", s.network.DisplayName))
		spin.Start()
		decoded, err := sdk.GetContractEvents(ctx, sdk.EventsQuery{
			Contract:  s.contract,
			Events:    events,
			FromBlock: from,
			ToBlock:   to,
		})
		spin.Stop()
		if err != nil {
			return fmt.Errorf("querying events: %w", err)
		}

		if len(decoded) == 0 {
			fmt.Println(ui.Meta("No events found in the selected range."))
			return nil
		}
		fmt.Println(ui.EventTable(decoded))
		fmt.Println(ui.Meta(fmt.Sprintf("%d event(s)", len(decoded))))
		return nil
	},
}

// ownershipFilters turns the owner flags into event filters. Values are
// addresses or ENS names, looked up through resolve.
func ownershipFilters(prev, next string, resolve func(string) (common.Address, error)) (lending.OwnershipTransferredEventFilters, error) {
	var f lending.OwnershipTransferredEventFilters
	if prev != "" {
		a, err := resolve(prev)
		if err != nil {
			return f, fmt.Errorf("--previous-owner: %w", err)
		}
		f.PreviousOwner = &a
	}
	if next != "" {
		a, err := resolve(next)
		if err != nil {
			return f, fmt.Errorf("--new-owner: %w", err)
		}
		f.NewOwner = &a
	}
	return f, nil
}

// preparedEvents builds the events named by kinds; no kinds means all.
// Owner filters only make sense for the ownership event.
func preparedEvents(kinds []string, filters lending.OwnershipTransferredEventFilters) ([]*sdk.PreparedEvent, error) {
	if len(kinds) == 0 {
		kinds = eventKinds
	}
	filtered := filters.PreviousOwner != nil || filters.NewOwner != nil

	seen := make(map[string]bool)
	var out []*sdk.PreparedEvent
	for _, k := range kinds {
		k = strings.ToLower(k)
		if seen[k] {
			continue
		}
		seen[k] = true

		var (
			ev  *sdk.PreparedEvent
			err error
		)
		switch k {
		case "requested":
			ev, err = lending.LoanRequestedEvent()
		case "repaid":
			ev, err = lending.LoanRepaidEvent()
		case "defaulted":
			ev, err = lending.LoanDefaultedEvent()
		case "ownership":
			ev, err = lending.OwnershipTransferredEvent(filters)
		default:
			return nil, fmt.Errorf("unknown event %q (want one of %s)", k, strings.Join(eventKinds, ", "))
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if filtered && !seen["ownership"] {
		return nil, fmt.Errorf("--previous-owner/--new-owner apply to the ownership event only")
	}
	return out, nil
}

type headReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// blockRange resolves --from/--to. An empty from means the last `last` blocks.
func blockRange(ctx context.Context, c headReader, from, to string, last uint64) (*big.Int, *big.Int, error) {
	toBlock, err := parseBlock(to)
	if err != nil {
		return nil, nil, fmt.Errorf("--to: %w", err)
	}
	if from != "" {
		fromBlock, err := parseBlock(from)
		if err != nil {
			return nil, nil, fmt.Errorf("--from: %w", err)
		}
		return fromBlock, toBlock, nil
	}

	head := uint64(0)
	if toBlock != nil {
		head = toBlock.Uint64()
	} else if head, err = c.BlockNumber(ctx); err != nil {
		return nil, nil, fmt.Errorf("getting block number: %w", err)
	}
	start := uint64(0)
	if head > last {
		start = head - last
	}
	return new(big.Int).SetUint64(start), toBlock, nil
}

func init() {
	loanEventsCmd.Flags().StringVar(&eventsPrevOwner, "previous-owner", "", "filter OwnershipTransferred by previous owner")
	loanEventsCmd.Flags().StringVar(&eventsNewOwner, "new-owner", "", "filter OwnershipTransferred by new owner")
	loanEventsCmd.Flags().StringVar(&eventsFrom, "from", "", "start block: number, hex or earliest")
	loanEventsCmd.Flags().StringVar(&eventsTo, "to", "latest", "end block: number, hex or latest")
	loanEventsCmd.Flags().Uint64Var(&eventsLast, "last", 10_000, "blocks to search when --from is not set")
}
