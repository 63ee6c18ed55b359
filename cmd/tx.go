package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/nftlend/internal/config"
	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/Mohsinsiddi/nftlend/internal/wallet"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
)

// txFlags are shared by every command that prepares a transaction.
type txFlags struct {
	simulate bool
	send     bool
	wallet   string
	yes      bool
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.simulate, "simulate", false, "dry-run the call with eth_call")
	cmd.Flags().BoolVar(&f.send, "send", false, "sign and broadcast, then wait for the receipt")
	cmd.Flags().StringVar(&f.wallet, "wallet", "", "wallet name (default: config)")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "skip the confirmation prompt")
}

// runPrepared prints a prepared transaction and, depending on flags,
// simulates and/or sends it.
func runPrepared(ctx context.Context, s *session, tx *sdk.PreparedTransaction, f *txFlags) error {
	data, err := tx.Data()
	if err != nil {
		return err
	}
	fmt.Println(ui.KeyValueBlock("Prepared "+tx.Method.Name, [][2]string{
		{"Network", s.network.DisplayName},
		{"Contract", ui.Addr(tx.To().Hex())},
		{"Function", tx.Method.Signature()},
		{"Selector", tx.Method.Selector},
		{"Value", ui.FormatWei(tx.Value)},
		{"Calldata", hexutil.Encode(data)},
	}))

	if !f.simulate && !f.send {
		fmt.Println(ui.Hint("Dry-run with --simulate, broadcast with --send"))
		return nil
	}

	signer, err := walletSigner(f.wallet)
	if err != nil {
		return err
	}

	if f.simulate {
		spin := ui.NewSpinner("Simulating...")
		spin.Start()
		_, err := sdk.SimulateTransaction(ctx, s.client, tx, signer.Address())
		spin.Stop()
		if err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}
		fmt.Println(ui.Success("Simulation succeeded from " + ui.Addr(signer.Address().Hex())))
		if !f.send {
			return nil
		}
	}

	prompt := fmt.Sprintf("Send %s from %s on %s?", tx.Method.Name, ui.TruncateAddr(signer.Address().Hex()), s.network.DisplayName)
	if !f.yes && !ui.Confirm(prompt) {
		fmt.Println(ui.Meta("Cancelled."))
		return nil
	}

	spin := ui.NewSpinner("Broadcasting transaction...")
	spin.Start()
	hash, err := sdk.SendTransaction(ctx, s.client, tx, signer)
	spin.Stop()
	if err != nil {
		return err
	}
	fmt.Println(ui.Success("Transaction sent: " + ui.Addr(hash.Hex())))
	if link := s.network.TxURL(hash.Hex()); link != "" {
		fmt.Println(ui.Meta(link))
	}

	waitCtx, cancel := context.WithTimeout(ctx, config.TxConfirmTimeout)
	defer cancel()
	spin = ui.NewSpinner("Waiting for confirmation...")
	spin.Start()
	receipt, err := sdk.WaitForReceipt(waitCtx, s.client, hash, config.ReceiptPollEvery)
	spin.Stop()
	if err != nil {
		return err
	}
	fmt.Println(ui.Success(fmt.Sprintf("Mined in block %s, gas used %d", receipt.BlockNumber, receipt.GasUsed)))
	return nil
}

// walletSigner returns the signer for name, falling back to the configured
// default wallet.
func walletSigner(name string) (*wallet.Signer, error) {
	if name == "" {
		name = cfg.DefaultWallet
	}
	mgr, err := newWalletManager()
	if err != nil {
		return nil, err
	}
	signer, err := mgr.Signer(name)
	if err != nil {
		return nil, fmt.Errorf("%w (add one with `nftlend wallet import <name>`)", err)
	}
	return signer, nil
}
