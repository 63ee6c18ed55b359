// Package chain knows which EVM networks exist and how to talk to them.
package chain

import (
	"errors"
	"sort"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Network holds the metadata for one EVM network.
type Network struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	Testnet        bool     `json:"testnet"`
	RPCs           []string `json:"rpcs"`
	Explorer       string   `json:"explorer,omitempty"`
	// FaucetURL is the official faucet for testnets.
	FaucetURL string `json:"faucet_url,omitempty"`
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[int64]*Network
}

// NewRegistry returns the registry of all known networks.
func NewRegistry() *Registry {
	networks := allNetworks()
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
		byID:     make(map[int64]*Network, len(networks)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		r.byID[n.ChainID] = n
	}
	return r
}

// All returns every network sorted by name.
func (r *Registry) All() []Network {
	out := make([]Network, len(r.networks))
	copy(out, r.networks)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetByName finds a network by its slug (e.g. "sepolia").
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// GetByChainID finds a network by chain ID.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// TxURL returns the explorer link for a transaction, or "" without an explorer.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash
}

// AddressURL returns the explorer link for an address, or "" without an explorer.
func (n *Network) AddressURL(addr string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/address/" + addr
}

// --- network data ---

func allNetworks() []Network {
	return []Network{
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			NativeCurrency: "ETH", Testnet: true,
			RPCs:      []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://sepolia.gateway.tenderly.co", "https://rpc.sepolia.org"},
			Explorer:  "https://sepolia.etherscan.io",
			FaucetURL: "https://sepoliafaucet.com",
		},
		{
			Name: "ethereum", DisplayName: "Ethereum", ChainID: 1,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			Explorer:       "https://etherscan.io",
		},
		{
			Name: "holesky", DisplayName: "Holesky", ChainID: 17000,
			NativeCurrency: "ETH", Testnet: true,
			RPCs:     []string{"https://ethereum-holesky-rpc.publicnode.com"},
			Explorer: "https://holesky.etherscan.io",
		},
		{
			Name: "base", DisplayName: "Base", ChainID: 8453,
			NativeCurrency: "ETH",
			RPCs:           []string{"https://mainnet.base.org", "https://base.llamarpc.com"},
			Explorer:       "https://basescan.org",
		},
		{
			Name: "base-sepolia", DisplayName: "Base Sepolia", ChainID: 84532,
			NativeCurrency: "ETH", Testnet: true,
			RPCs:      []string{"https://sepolia.base.org"},
			Explorer:  "https://sepolia.basescan.org",
			FaucetURL: "https://www.alchemy.com/faucets/base-sepolia",
		},
		{
			Name: "arbitrum-sepolia", DisplayName: "Arbitrum Sepolia", ChainID: 421614,
			NativeCurrency: "ETH", Testnet: true,
			RPCs:     []string{"https://sepolia-rollup.arbitrum.io/rpc"},
			Explorer: "https://sepolia.arbiscan.io",
		},
		{
			Name: "optimism-sepolia", DisplayName: "OP Sepolia", ChainID: 11155420,
			NativeCurrency: "ETH", Testnet: true,
			RPCs:     []string{"https://sepolia.optimism.io"},
			Explorer: "https://sepolia-optimism.etherscan.io",
		},
		{
			Name: "polygon-amoy", DisplayName: "Polygon Amoy", ChainID: 80002,
			NativeCurrency: "POL", Testnet: true,
			RPCs:      []string{"https://rpc-amoy.polygon.technology"},
			Explorer:  "https://amoy.polygonscan.com",
			FaucetURL: "https://faucet.polygon.technology",
		},
		{
			Name: "localhost", DisplayName: "Local (anvil/hardhat)", ChainID: 31337,
			NativeCurrency: "ETH", Testnet: true,
			RPCs: []string{"http://127.0.0.1:8545"},
		},
	}
}
