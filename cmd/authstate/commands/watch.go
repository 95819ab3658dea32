package commands

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"authstate/internal/domain"
)

// watch: print the current value, then every change, until interrupted.
func watchCmd() *cobra.Command {
	var orgsOf string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream user state (or a user's organizations) as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			if orgsOf != "" {
				sub, err := wire.Disk.OrganizationsFlow(ctx, domain.UserID(orgsOf))
				if err != nil {
					return err
				}
				defer sub.Cancel()
				return stream(sub.C(), enc)
			}
			sub, err := wire.Disk.UserStateFlow(ctx)
			if err != nil {
				return err
			}
			defer sub.Cancel()
			return stream(sub.C(), enc)
		},
	}
	cmd.Flags().StringVar(&orgsOf, "orgs", "", "watch this user's organizations instead")
	return cmd
}

func stream[T any](c <-chan T, enc *json.Encoder) error {
	for v := range c {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
