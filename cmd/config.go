package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Mohsinsiddi/nftlend/internal/config"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(redacted(cfg), "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println(ui.Meta("Lending contract: " + cfg.ContractAddress()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it to config.json.

Keys: network, rpc_algorithm, default_wallet, log_level, my_secret,
public.client_id, public.contract_address, public.payment_contract_address,
public.buy_contract_address`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s updated", args[0])))
		return nil
	},
}

// redacted returns a copy of c that is safe to print.
func redacted(c *config.Config) config.Config {
	out := *c
	if out.Secret != "" {
		out.Secret = "********"
	}
	return out
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
