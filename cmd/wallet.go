package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/Mohsinsiddi/nftlend/internal/wallet"
	"github.com/spf13/cobra"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Add a watch-only wallet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, err := mgr.AddWatchOnly(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", w.Name, ui.Addr(w.Address))))
		fmt.Println(ui.Hint("Watch-only wallets can --simulate but not --send"))
		return nil
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import <name>",
	Short: "Import a signing wallet from a private key",
	Long: `Import a private key. The key is stored in the OS keychain (or an
encrypted file under the config directory when no keychain is available).

Without --key the key is read from the terminal without echo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hexKey := walletKeyFlag
		if hexKey == "" {
			var err error
			if hexKey, err = keyring.TerminalPrompt("Private key"); err != nil {
				return err
			}
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, err := mgr.AddWithKey(args[0], hexKey)
		if err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", w.Name, ui.Addr(w.Address))))
		fmt.Println(ui.Hint(fmt.Sprintf("Set as default with: nftlend wallet use %s", w.Name)))
		return nil
	},
}

var walletNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Generate a new signing wallet",
	Long: `Generate a fresh keypair and store the private key in the keystore.

The private key is displayed once. Back it up before funding the address.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, hexKey, err := mgr.Generate(args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("New wallet", [][2]string{
			{"Name", w.Name},
			{"Address", ui.Addr(w.Address)},
			{"Private key", hexKey},
		}))
		fmt.Println(ui.Warn("The private key is shown only once. Never share it."))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Meta("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: nftlend wallet import <name>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		for _, w := range wallets {
			def := ""
			if isDefaultWallet(w) {
				def = ui.StyleSuccess.Render("✓")
			}
			t.AddRow(ui.Row{ui.Val(w.Name), ui.Addr(w.Address), ui.Meta(w.Type), def})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Long:  `Set the default wallet. Without a name an interactive picker is shown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			wallets, err := mgr.List()
			if err != nil {
				return err
			}
			name, err = ui.PickItem("Default wallet", walletItems(wallets), cfg.DefaultWallet)
			if errors.Is(err, ui.ErrNothingToPick) {
				return fmt.Errorf("no wallets configured")
			}
			if err != nil {
				return err
			}
			if name == "" {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

func init() {
	walletImportCmd.Flags().StringVar(&walletKeyFlag, "key", "", "hex private key (prompted when omitted)")
	walletCmd.AddCommand(walletAddCmd, walletImportCmd, walletNewCmd, walletListCmd, walletUseCmd, walletRemoveCmd)
}

// newWalletManager opens the keystore and the config-dir JSON store. The
// configured secret unlocks the file keystore when set.
func newWalletManager() (*wallet.Manager, error) {
	var prompt keyring.PromptFunc = keyring.TerminalPrompt
	if cfg.Secret != "" {
		prompt = keyring.FixedStringPrompt(cfg.Secret)
	}
	ks, err := wallet.OpenKeystore(filepath.Join(cfg.Dir(), "keys"), prompt)
	if err != nil {
		return nil, err
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(ks),
	), nil
}

func isDefaultWallet(w *wallet.Wallet) bool {
	if cfg.DefaultWallet != "" {
		return w.Name == cfg.DefaultWallet
	}
	return w.IsDefault
}

func walletItems(wallets []*wallet.Wallet) []ui.PickerItem {
	items := make([]ui.PickerItem, len(wallets))
	for i, w := range wallets {
		items[i] = ui.PickerItem{Label: w.Name, SubLabel: ui.TruncateAddr(w.Address) + "  " + w.Type, Value: w.Name}
	}
	return items
}
