// Package ens resolves ENS names for address arguments.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// RegistryAddress is the ENS registry, the same on Ethereum mainnet and Sepolia.
const RegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

var (
	// ErrNoResolver is returned when the registry has no resolver for a name.
	ErrNoResolver = errors.New("no ENS resolver set")

	// ErrNoRecord is returned when the resolver holds no address or name record.
	ErrNoRecord = errors.New("no ENS record")
)

var nodeIn = []sdk.Param{{Name: "node", Type: "bytes32"}}

var (
	resolverMethod = sdk.Method{
		Name:     "resolver",
		Selector: "0x0178b8bf",
		Inputs:   nodeIn,
		Outputs:  []sdk.Param{{Type: "address"}},
	}
	addrMethod = sdk.Method{
		Name:     "addr",
		Selector: "0x3b3b57de",
		Inputs:   nodeIn,
		Outputs:  []sdk.Param{{Type: "address"}},
	}
	nameMethod = sdk.Method{
		Name:     "name",
		Selector: "0x691f3431",
		Inputs:   nodeIn,
		Outputs:  []sdk.Param{{Type: "string"}},
	}
)

// IsName reports whether s looks like an ENS name rather than a hex address.
func IsName(s string) bool {
	return strings.Contains(s, ".") && !strings.HasPrefix(s, "0x")
}

// Resolve returns the address record of name.
func Resolve(ctx context.Context, client sdk.Backend, name string) (common.Address, error) {
	node := Namehash(name)
	resolver, err := lookupResolver(ctx, client, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}

	out, err := sdk.ReadContract(ctx, sdk.ReadOptions{
		Contract: sdk.NewContract(resolver, nil, client),
		Method:   addrMethod,
		Params:   []any{[32]byte(node)},
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS resolver: %w", err)
	}
	addr := out[0].(common.Address)
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w for %q", ErrNoRecord, name)
	}
	return addr, nil
}

// ReverseLookup returns the primary name of addr via addr.reverse.
func ReverseLookup(ctx context.Context, client sdk.Backend, addr common.Address) (string, error) {
	node := Namehash(strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse")
	resolver, err := lookupResolver(ctx, client, node)
	if err != nil {
		return "", fmt.Errorf("%s: %w", addr.Hex(), err)
	}

	out, err := sdk.ReadContract(ctx, sdk.ReadOptions{
		Contract: sdk.NewContract(resolver, nil, client),
		Method:   nameMethod,
		Params:   []any{[32]byte(node)},
	})
	if err != nil {
		return "", fmt.Errorf("querying reverse resolver: %w", err)
	}
	name := out[0].(string)
	if name == "" {
		return "", fmt.Errorf("%w for %s", ErrNoRecord, addr.Hex())
	}
	return name, nil
}

func lookupResolver(ctx context.Context, client sdk.Backend, node common.Hash) (common.Address, error) {
	out, err := sdk.ReadContract(ctx, sdk.ReadOptions{
		Contract: sdk.NewContract(common.HexToAddress(RegistryAddress), nil, client),
		Method:   resolverMethod,
		Params:   []any{[32]byte(node)},
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS registry: %w", err)
	}
	resolver := out[0].(common.Address)
	if resolver == (common.Address{}) {
		return common.Address{}, ErrNoResolver
	}
	return resolver, nil
}

// Namehash implements the EIP-137 namehash. Labels are lowercased; full
// UTS-46 normalisation is not applied.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		node = keccak(node[:], keccak([]byte(labels[i])).Bytes())
	}
	return node
}

func keccak(data ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return common.BytesToHash(h.Sum(nil))
}
