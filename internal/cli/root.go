// Package cli wires the role-based screens into terminal commands. Commands
// hold no business logic beyond input validation; they drive the session
// manager, the API client, and the realtime channel the same way the mobile
// screens do.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"patientcall/internal/api"
	"patientcall/internal/config"
	"patientcall/internal/credstore"
	"patientcall/internal/log"
	"patientcall/internal/session"
)

type App struct {
	cfg     *config.AppConfig
	log     zerolog.Logger
	creds   *credstore.Store
	api     *api.Client
	session *session.Manager
}

// notifier prints success notifications where a phone would show a toast.
func notifier() session.Notifier {
	return session.NotifyFunc(func(title, message string) {
		fmt.Printf("%s: %s\n", title, message)
	})
}

func NewRootCommand() *cobra.Command {
	app := &App{}
	var serverOverride string

	root := &cobra.Command{
		Use:           "patientcall",
		Short:         "Hospital patient-call client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if serverOverride != "" {
				cfg.API.BaseURL = serverOverride
				cfg.Socket.URL = serverOverride
			}

			app.cfg = cfg
			app.log = log.New(cfg.Environment)
			app.creds = credstore.NewStore(cfg.Credentials.Dir)
			app.api = api.NewClient(cfg.API, app.creds, app.log)
			app.session = session.NewManager(app.creds, app.api, notifier(), app.log)
			app.session.CheckAuth(cmd.Context())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&serverOverride, "server", "", "override the API base URL")

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newRegisterPatientCommand(app),
		newRegisterNurseCommand(app),
		newRequestsCommand(app),
		newNursesCommand(app),
		newWatchCommand(app),
	)
	return root
}
