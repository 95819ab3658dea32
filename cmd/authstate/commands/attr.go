package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"authstate/internal/authdisk"
	"authstate/internal/domain"
)

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [kind] [userId]",
		Short: "Print a stored attribute as JSON",
		Long:  fmt.Sprintf("Print a stored attribute as JSON. Kinds: %v", authdisk.Kinds()),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := authdisk.ParseKind(args[0])
			if err != nil {
				return err
			}
			raw, err := wire.Disk.Get(kind, domain.UserID(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
}

func putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put [kind] [userId] [json]",
		Short: "Store an attribute from JSON (null removes it)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := authdisk.ParseKind(args[0])
			if err != nil {
				return err
			}
			raw := json.RawMessage(args[2])
			if !json.Valid(raw) {
				return fmt.Errorf("invalid JSON value")
			}
			return wire.Disk.Put(kind, domain.UserID(args[1]), raw)
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [userId]",
		Short: "Remove every stored attribute of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Disk.ClearData(domain.UserID(args[0])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", args[0])
			return nil
		},
	}
}
