package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNursesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nurses",
		Short: "Review and decide nurse applications (admin)",
	}
	cmd.AddCommand(
		newNursesListCommand(app),
		newNursesApproveCommand(app),
		newNursesRejectCommand(app),
	)
	return cmd
}

func newNursesListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List nurse applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(app); err != nil {
				return err
			}
			apps, err := app.api.ListNurses(cmd.Context())
			if err != nil {
				return err
			}
			for _, a := range apps {
				fmt.Printf("%s  [%s]  %s <%s>  role=%s\n", a.ID, a.Status, a.FullName, a.Email, a.NurseRole)
			}
			if len(apps) == 0 {
				fmt.Println("no applications")
			}
			return nil
		},
	}
}

func newNursesApproveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(app); err != nil {
				return err
			}
			if err := app.api.ApproveNurse(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("approved", args[0])
			return nil
		},
	}
}

func newNursesRejectCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(app); err != nil {
				return err
			}
			if err := app.api.RejectNurse(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("rejected", args[0])
			return nil
		},
	}
}
