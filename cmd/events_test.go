package cmd

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/nftlend/internal/lending"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedHead struct {
	head uint64
	err  error
}

func (f fixedHead) BlockNumber(context.Context) (uint64, error) { return f.head, f.err }

func eventNames(t *testing.T, kinds []string, filters lending.OwnershipTransferredEventFilters) []string {
	t.Helper()
	events, err := preparedEvents(kinds, filters)
	require.NoError(t, err)
	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Event.Name
	}
	return names
}

func TestPreparedEvents(t *testing.T) {
	none := lending.OwnershipTransferredEventFilters{}

	assert.Equal(t,
		[]string{"LoanRequested", "LoanRepaid", "LoanDefaulted", "OwnershipTransferred"},
		eventNames(t, nil, none))
	assert.Equal(t, []string{"LoanRepaid"}, eventNames(t, []string{"repaid", "repaid"}, none))
	assert.Equal(t, []string{"LoanDefaulted", "OwnershipTransferred"}, eventNames(t, []string{"defaulted", "Ownership"}, none))

	_, err := preparedEvents([]string{"liquidated"}, none)
	assert.ErrorContains(t, err, "unknown event")
}

func TestPreparedEventsOwnerFilters(t *testing.T) {
	filters, err := ownershipFilters("", "0x00000000000000000000000000000000000000aa", parseAddress)
	require.NoError(t, err)
	assert.Nil(t, filters.PreviousOwner)
	require.NotNil(t, filters.NewOwner)

	events, err := preparedEvents([]string{"ownership"}, filters)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, map[string]any{"newOwner": common.HexToAddress("0xaa")}, events[0].Filters)

	_, err = preparedEvents([]string{"repaid"}, filters)
	assert.ErrorContains(t, err, "ownership event only")

	_, err = ownershipFilters("0xnope", "", parseAddress)
	assert.ErrorContains(t, err, "--previous-owner")
}

func TestOwnershipFiltersUseResolver(t *testing.T) {
	resolved := map[string]common.Address{
		"alice.eth": common.HexToAddress("0xa1"),
		"bob.eth":   common.HexToAddress("0xb0"),
	}
	resolve := func(v string) (common.Address, error) {
		a, ok := resolved[v]
		if !ok {
			return common.Address{}, errors.New("unknown name")
		}
		return a, nil
	}

	filters, err := ownershipFilters("alice.eth", "bob.eth", resolve)
	require.NoError(t, err)
	require.NotNil(t, filters.PreviousOwner)
	require.NotNil(t, filters.NewOwner)
	assert.Equal(t, common.HexToAddress("0xa1"), *filters.PreviousOwner)
	assert.Equal(t, common.HexToAddress("0xb0"), *filters.NewOwner)

	_, err = ownershipFilters("", "carol.eth", resolve)
	assert.ErrorContains(t, err, "--new-owner")
}

func TestBlockRange(t *testing.T) {
	ctx := context.Background()

	from, to, err := blockRange(ctx, fixedHead{head: 50_000}, "", "latest", 10_000)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(40_000), from)
	assert.Nil(t, to)

	from, to, err = blockRange(ctx, fixedHead{head: 500}, "", "", 10_000)
	require.NoError(t, err)
	assert.Equal(t, 0, from.Sign())
	assert.Nil(t, to)

	from, to, err = blockRange(ctx, fixedHead{err: errors.New("unreachable")}, "", "2000", 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1900), from)
	assert.Equal(t, big.NewInt(2000), to)

	from, _, err = blockRange(ctx, fixedHead{err: errors.New("unreachable")}, "earliest", "", 100)
	require.NoError(t, err)
	assert.Equal(t, 0, from.Sign())

	_, _, err = blockRange(ctx, fixedHead{err: errors.New("down")}, "", "", 100)
	assert.ErrorContains(t, err, "getting block number")

	_, _, err = blockRange(ctx, fixedHead{}, "x", "", 100)
	assert.ErrorContains(t, err, "--from")
}

func TestLoanIDsDesc(t *testing.T) {
	ids := loanIDsDesc(big.NewInt(3), 10)
	require.Len(t, ids, 4)
	assert.Equal(t, big.NewInt(3), ids[0])
	assert.Equal(t, big.NewInt(0), ids[3])

	ids = loanIDsDesc(big.NewInt(100), 2)
	require.Len(t, ids, 3)
	assert.Equal(t, big.NewInt(98), ids[2])

	ids = loanIDsDesc(big.NewInt(0), 5)
	require.Len(t, ids, 1)
}
