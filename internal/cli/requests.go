package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"patientcall/internal/api"
	"patientcall/internal/apperr"
	"patientcall/internal/models"
	"patientcall/internal/validate"
)

func newRequestsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List, create and update care requests",
	}
	cmd.AddCommand(
		newRequestsListCommand(app),
		newRequestsCreateCommand(app),
		newRequestsUpdateCommand(app),
	)
	return cmd
}

func requireAuth(app *App) error {
	if !app.session.Authenticated() {
		return apperr.New(apperr.KindAuthentication, "please log in first")
	}
	return nil
}

func newRequestsListCommand(app *App) *cobra.Command {
	var status, priority string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible care requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(app); err != nil {
				return err
			}

			filters := api.RequestFilters{
				Status:   models.RequestStatus(status),
				Priority: models.RequestPriority(priority),
			}
			if filters.Status != "" {
				if err := validate.Status(filters.Status); err != nil {
					return err
				}
			}
			if filters.Priority != "" {
				if err := validate.Priority(filters.Priority); err != nil {
					return err
				}
			}

			requests, err := app.api.ListRequests(cmd.Context(), filters)
			if err != nil {
				return err
			}
			for _, req := range requests {
				printRequest(req)
			}
			if len(requests) == 0 {
				fmt.Println("no requests")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")
	return cmd
}

func newRequestsCreateCommand(app *App) *cobra.Command {
	var description, priority string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a care request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(app); err != nil {
				return err
			}
			if err := validate.Required("description", description); err != nil {
				return err
			}
			p := models.RequestPriority(priority)
			if err := validate.Priority(p); err != nil {
				return err
			}

			request, err := app.api.CreateRequest(cmd.Context(), api.CreateRequestInput{
				Description: description,
				Priority:    p,
			})
			if err != nil {
				return err
			}
			fmt.Println("created:")
			printRequest(request)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "what help is needed")
	cmd.Flags().StringVar(&priority, "priority", string(models.PriorityMedium), "low, medium or high")
	return cmd
}

func newRequestsUpdateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <status>",
		Short: "Move a care request through its lifecycle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(app); err != nil {
				return err
			}
			status := models.RequestStatus(args[1])
			if err := validate.Status(status); err != nil {
				return err
			}

			request, err := app.api.UpdateRequestStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			fmt.Println("updated:")
			printRequest(request)
			return nil
		},
	}
}

func printRequest(req models.CareRequest) {
	fmt.Printf("%s  [%s/%s]  %s  (created %s)\n",
		req.ID, req.Priority, req.Status, req.Description,
		req.CreatedAt.Format("2006-01-02 15:04"))
}
