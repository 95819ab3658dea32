package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func appIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "app-id",
		Short: "Print the device's unique application id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := wire.Disk.UniqueAppID()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

// email: with an argument stores it, with --forget removes it, otherwise prints.
func emailCmd() *cobra.Command {
	var forget bool
	cmd := &cobra.Command{
		Use:   "email [address]",
		Short: "Show, set or forget the remembered login email",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case forget:
				return wire.Disk.StoreRememberedEmail(nil)
			case len(args) == 1:
				return wire.Disk.StoreRememberedEmail(&args[0])
			}
			email, err := wire.Disk.RememberedEmail()
			if err != nil {
				return err
			}
			if email != nil {
				fmt.Fprintln(cmd.OutOrStdout(), *email)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&forget, "forget", false, "forget the remembered email")
	return cmd
}
