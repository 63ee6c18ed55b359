package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/nftlend/internal/lending"
	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/Mohsinsiddi/nftlend/internal/ui"
	"github.com/spf13/cobra"
)

var abiCmd = &cobra.Command{
	Use:   "abi",
	Short: "Inspect the bound contract ABI",
}

var abiVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check selectors and event signatures against the embedded ABI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := lending.VerifyABI(); err != nil {
			errs := []error{err}
			var joined interface{ Unwrap() []error }
			if errors.As(err, &joined) {
				errs = joined.Unwrap()
			}
			for _, e := range errs {
				fmt.Println(ui.Err(e.Error()))
			}
			return fmt.Errorf("ABI verification failed")
		}
		fmt.Println(ui.Success(fmt.Sprintf("%d functions and %d events match the ABI",
			len(lending.Methods()), len(lending.EventSignatures()))))
		return nil
	},
}

var abiSelectorsCmd = &cobra.Command{
	Use:   "selectors",
	Short: "List function selectors and event topics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tbl := ui.NewTable([]ui.Column{{Title: "Kind"}, {Title: "Signature"}, {Title: "Selector / Topic"}})
		for _, m := range lending.Methods() {
			tbl.AddRow(ui.Row{"function", m.Signature(), m.Selector})
		}
		for _, sig := range lending.EventSignatures() {
			ev, err := sdk.ParseEventSignature(sig)
			if err != nil {
				return err
			}
			tbl.AddRow(ui.Row{"event", ev.Sig, ev.ID.Hex()})
		}
		fmt.Println(tbl.Render())
		return nil
	},
}

var abiJSONCmd = &cobra.Command{
	Use:   "json",
	Short: "Print the embedded ABI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := os.Stdout.Write(lending.ABIJSON())
		return err
	},
}

func init() {
	abiCmd.AddCommand(abiVerifyCmd, abiSelectorsCmd, abiJSONCmd)
}
