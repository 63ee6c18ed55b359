package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/nftlend/internal/lending"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/spf13/cobra"
)

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Contract ownership (owner only)",
}

var transferFlags txFlags

var ownerTransferCmd = &cobra.Command{
	Use:   "transfer <address|ens-name>",
	Short: "Prepare transferOwnership",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()

		newOwner, err := s.resolveAddress(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tx := lending.TransferOwnership(s.contract, lending.TransferOwnershipParams{NewOwner: newOwner})
		return runPrepared(cmd.Context(), s, tx, &transferFlags)
	},
}

var renounceFlags txFlags

var ownerRenounceCmd = &cobra.Command{
	Use:   "renounce",
	Short: "Prepare renounceOwnership",
	Long: `Prepare renounceOwnership. Once sent the contract has no owner and
owner-only functions can never be called again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if renounceFlags.send && !renounceFlags.yes &&
			!ui.ConfirmDanger("Renouncing ownership is irreversible. Continue?") {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		s, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return runPrepared(cmd.Context(), s, lending.RenounceOwnership(s.contract), &renounceFlags)
	},
}

func init() {
	transferFlags.register(ownerTransferCmd)
	renounceFlags.register(ownerRenounceCmd)
	ownerCmd.AddCommand(ownerTransferCmd, ownerRenounceCmd)
}
