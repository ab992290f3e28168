package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"patientcall/internal/api"
	"patientcall/internal/validate"
)

func newLoginCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email> <password>",
		Short: "Authenticate and persist the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, password := args[0], args[1]
			if err := validate.Email(email); err != nil {
				return err
			}
			if err := validate.Required("password", password); err != nil {
				return err
			}
			return app.session.Login(cmd.Context(), email, password)
		},
	}
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.session.Logout(cmd.Context())
		},
	}
}

func newWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.session.Authenticated() {
				fmt.Println("not logged in")
				return nil
			}
			user := app.session.User()
			fmt.Printf("%s <%s> role=%s", user.FullName, user.Email, user.Role)
			if user.NurseRole != "" {
				fmt.Printf(" nurseRole=%s", user.NurseRole)
			}
			fmt.Println()
			return nil
		},
	}
}

func newRegisterPatientCommand(app *App) *cobra.Command {
	var input api.PatientRegistration

	cmd := &cobra.Command{
		Use:   "register-patient",
		Short: "Create a patient account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Required("full name", input.FullName); err != nil {
				return err
			}
			if err := validate.Email(input.Email); err != nil {
				return err
			}
			if err := validate.Password(input.Password); err != nil {
				return err
			}
			return app.session.RegisterPatient(cmd.Context(), input)
		},
	}

	cmd.Flags().StringVar(&input.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "password")
	cmd.Flags().StringVar(&input.FullAddress, "address", "", "full address")
	cmd.Flags().StringVar(&input.ContactNumber, "contact", "", "contact number")
	cmd.Flags().StringVar(&input.EmergencyContact, "emergency-contact", "", "emergency contact")
	cmd.Flags().StringVar(&input.RoomNumber, "room", "", "room number")
	cmd.Flags().StringVar(&input.BedNumber, "bed", "", "bed number")
	cmd.Flags().StringVar(&input.Disease, "condition", "", "condition")
	return cmd
}

func newRegisterNurseCommand(app *App) *cobra.Command {
	var input api.NurseRegistration

	cmd := &cobra.Command{
		Use:   "register-nurse",
		Short: "Submit a nurse application (requires admin approval before login)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Required("full name", input.FullName); err != nil {
				return err
			}
			if err := validate.Email(input.Email); err != nil {
				return err
			}
			if err := validate.Password(input.Password); err != nil {
				return err
			}
			if err := validate.Required("nurse role", input.NurseRole); err != nil {
				return err
			}
			app2, err := app.session.RegisterNurse(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Printf("application %s is %s\n", app2.ID, app2.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Password, "password", "", "password")
	cmd.Flags().StringVar(&input.ContactNumber, "contact", "", "contact number")
	cmd.Flags().StringVar(&input.NurseRole, "role", "", "nurse role (e.g. icu, general)")
	return cmd
}
