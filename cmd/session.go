package cmd

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	"github.com/Mohsinsiddi/nftlend/internal/chain"
	"github.com/Mohsinsiddi/nftlend/internal/config"
	"github.com/Mohsinsiddi/nftlend/internal/ens"
	"github.com/Mohsinsiddi/nftlend/internal/lending"
	"github.com/Mohsinsiddi/nftlend/internal/rpc"
	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// session is a dialed node plus the lending contract handle on it.
type session struct {
	network  *chain.Network
	rpcURL   string
	client   chain.Client
	contract *sdk.Contract
}

func (s *session) Close() {
	s.client.Close()
}

// resolveAddress accepts a hex address or an ENS name.
func (s *session) resolveAddress(ctx context.Context, v string) (common.Address, error) {
	if !ens.IsName(v) {
		return parseAddress(v)
	}
	addr, err := ens.Resolve(ctx, s.client, v)
	if err != nil {
		return common.Address{}, err
	}
	zap.L().Debug("resolved ENS name", zap.String("name", v), zap.Stringer("address", addr))
	return addr, nil
}

// connect resolves the network, selects an RPC endpoint and dials it.
func connect(ctx context.Context) (*session, error) {
	net, err := currentNetwork()
	if err != nil {
		return nil, err
	}

	url := rpcFlag
	if url == "" {
		if url, err = selectRPC(ctx, net); err != nil {
			return nil, err
		}
	}

	client, err := chain.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	zap.L().Debug("connected",
		zap.String("network", net.Name),
		zap.String("rpc", url),
		zap.String("contract", cfg.ContractAddress()))

	return &session{
		network:  net,
		rpcURL:   url,
		client:   client,
		contract: lending.NewContract(cfg.ContractAddress(), big.NewInt(net.ChainID), client),
	}, nil
}

func currentNetwork() (*chain.Network, error) {
	name := cfg.Network
	if networkFlag != "" {
		name = networkFlag
	}
	net, err := chain.NewRegistry().GetByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (run `nftlend network list`)", err, name)
	}
	return net, nil
}

// networkRPCs returns custom RPCs first, then the built-in ones.
func networkRPCs(net *chain.Network) []string {
	urls := slices.Clone(cfg.GetRPCs(net.Name))
	for _, u := range net.RPCs {
		if !slices.Contains(urls, u) {
			urls = append(urls, u)
		}
	}
	return urls
}

func selectRPC(ctx context.Context, net *chain.Network) (string, error) {
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()

	spin := ui.NewSpinner(fmt.Sprintf("Selecting RPC for %s...", net.DisplayName))
	spin.Start()
	url, err := rpc.Best(ctx, networkRPCs(net), algo, net.ChainID)
	spin.Stop()
	if err != nil {
		return "", fmt.Errorf("selecting RPC for %s: %w", net.Name, err)
	}
	return url, nil
}
