package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"patientcall/internal/api"
	"patientcall/internal/models"
	"patientcall/internal/realtime"
	"patientcall/internal/state"
)

// newWatchCommand is the live dashboard: it mirrors what the role screens do
// on mount: load a snapshot, connect the push channel, and fold events into
// local state until the user leaves.
func newWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow live request updates until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAuth(app); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			board := state.NewBoard()
			requests, err := app.api.ListRequests(ctx, api.RequestFilters{})
			if err != nil {
				return err
			}
			board.Reload(requests)
			fmt.Printf("watching %d active requests (%d completed)\n", len(board.Active()), board.CompletedCount())

			channel := realtime.NewChannel(app.cfg.Socket, app.creds, app.log)
			channel.Connect(ctx)
			if !channel.Connected() {
				return fmt.Errorf("live channel unavailable")
			}
			defer channel.Disconnect()

			channel.OnNewRequest(func(ev realtime.NewRequestEvent) {
				board.Add(ev.Request)
				fmt.Printf("new request %s [%s] %s\n", ev.Request.ID, ev.Request.Priority, ev.Request.Description)
			})
			channel.OnRequestAssigned(func(ev realtime.AssignmentEvent) {
				board.ApplyAssignment(ev)
				who := "a nurse"
				if ev.Nurse != nil {
					who = ev.Nurse.FullName
				}
				fmt.Printf("request %s assigned to %s\n", ev.Request.ID, who)
			})
			channel.OnRequestStatusUpdated(func(ev realtime.StatusUpdateEvent) {
				board.ApplyStatusUpdate(ev)
				fmt.Printf("request %s: %s -> %s (%d active, %d completed)\n",
					ev.Request.ID, ev.OldStatus, ev.NewStatus, len(board.Active()), board.CompletedCount())
			})

			if app.session.User().Role == models.UserRoleAdmin {
				watchApprovals(ctx, app, channel)
			}

			<-ctx.Done()
			fmt.Println("stopped")
			return nil
		},
	}
}

// watchApprovals keeps the admin's pending queue current as nurses register.
func watchApprovals(ctx context.Context, app *App, channel *realtime.Channel) {
	queue := state.NewApprovalQueue()
	apps, err := app.api.ListNurses(ctx)
	if err != nil {
		app.log.Warn().Err(err).Msg("load applications failed")
	} else {
		queue.Reload(apps)
		fmt.Printf("%d applications pending, %d active nurses\n", len(queue.Pending()), queue.ActiveNurses())
	}

	channel.OnNurseRegistered(func() {
		apps, err := app.api.ListNurses(ctx)
		if err != nil {
			app.log.Warn().Err(err).Msg("refresh applications failed")
			return
		}
		queue.Reload(apps)
		fmt.Printf("nurse registered: %d applications pending\n", len(queue.Pending()))
	})
}
