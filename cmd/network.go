package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/Mohsinsiddi/nftlend/internal/chain"
	"github.com/Mohsinsiddi/nftlend/internal/config"
	"github.com/Mohsinsiddi/nftlend/internal/rpc"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Manage networks and RPC endpoints",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List supported networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 18},
			{Title: "Display", Width: 18},
			{Title: "Chain ID", Width: 10},
			{Title: "Testnet", Width: 8},
			{Title: "RPCs", Width: 5},
		})
		for _, n := range reg.All() {
			name := ui.ChainName(n.Name)
			if n.Name == cfg.Network {
				name += " " + ui.StyleSuccess.Render("✓")
			}
			testnet := ""
			if n.Testnet {
				testnet = "yes"
			}
			t.AddRow(ui.Row{
				name,
				n.DisplayName,
				fmt.Sprint(n.ChainID),
				testnet,
				fmt.Sprint(len(networkRPCs(&n))),
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("Current network: %s. Change with: nftlend config set network <name>", cfg.Network)))
		return nil
	},
}

var networkCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Benchmark the current network's RPC endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		net, err := currentNetwork()
		if err != nil {
			return err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()

		spin := ui.NewSpinner(fmt.Sprintf("Probing %s endpoints...", net.DisplayName))
		spin.Start()
		results := rpc.Benchmark(ctx, networkRPCs(net), net.ChainID)
		spin.Stop()

		t := ui.NewTable([]ui.Column{{Title: "URL"}, {Title: "Latency"}, {Title: "Block"}, {Title: "Status"}})
		for _, r := range results {
			status := ui.StyleSuccess.Render("ok")
			if r.Err != nil {
				status = ui.StyleError.Render(r.Err.Error())
			}
			t.AddRow(ui.Row{r.URL, r.Latency.Round(time.Millisecond).String(), fmt.Sprint(r.BlockNumber), status})
		}
		fmt.Println(t.Render())

		best, err := rpc.NewPicker(algo).Pick(rpc.ResultsToEndpoints(results))
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s picks %s", algo, best.URL)))
		return nil
	},
}

var networkAddRPCCmd = &cobra.Command{
	Use:   "add-rpc <network> <url>",
	Short: "Add a custom RPC URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		if _, err := chain.NewRegistry().GetByName(name); err != nil {
			return fmt.Errorf("%w: %q", err, name)
		}
		if err := cfg.AddRPC(name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(name), url)))
		return nil
	},
}

var networkRemoveRPCCmd = &cobra.Command{
	Use:   "remove-rpc <network> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		if err := cfg.RemoveRPC(name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", name, url)))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd, networkCheckCmd, networkAddRPCCmd, networkRemoveRPCCmd)
}
