package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"authstate/internal/domain"
)

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := wire.Accounts.Accounts()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No accounts.")
				return nil
			}
			for _, a := range list {
				mark := " "
				if a.Active {
					mark = "*"
				}
				seen := "never"
				if a.LastActiveAt != nil {
					seen = a.LastActiveAt.UTC().Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%s %s\t%s\t%s\n", mark, a.UserID, a.Email, seen)
			}
			return nil
		},
	}
}

func loginCmd() *cobra.Command {
	var (
		name   string
		active bool
	)
	cmd := &cobra.Command{
		Use:   "login [userId] [email]",
		Short: "Add an account to this device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.UserID(args[0])
			acct := domain.Account{Profile: domain.Profile{
				UserID: id,
				Email:  args[1],
				Name:   name,
			}}
			if err := wire.Accounts.AddAccount(acct, active); err != nil {
				return err
			}
			if err := wire.Accounts.RecordActivity(id, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().BoolVar(&active, "active", true, "make the account active")
	return cmd
}

func switchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch [userId]",
		Short: "Make an account active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.UserID(args[0])
			if err := wire.Accounts.SwitchAccount(id); err != nil {
				return err
			}
			if err := wire.Accounts.RecordActivity(id, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active account: %s\n", id)
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout [userId]",
		Short: "Remove an account and its stored data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Accounts.Logout(domain.UserID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out %s\n", args[0])
			return nil
		},
	}
}

func lockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lock [userId]",
		Short: "Drop an account's auto-unlock key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Accounts.LockAccount(domain.UserID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Locked %s\n", args[0])
			return nil
		},
	}
}
