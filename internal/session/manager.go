// Package session owns the client's authentication state: whether a user is
// logged in and who they are. The manager derives its state from the
// credential store at startup and mutates it only on confirmed login,
// registration, or logout.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"patientcall/internal/api"
	"patientcall/internal/apperr"
	"patientcall/internal/credstore"
	"patientcall/internal/models"
)

// Notifier receives user-facing success notifications (the toast layer in the
// original mobile UI). Errors are returned, not notified, so the caller
// decides how to render them.
type Notifier interface {
	Notify(title, message string)
}

type NotifyFunc func(title, message string)

func (f NotifyFunc) Notify(title, message string) { f(title, message) }

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}

type Manager struct {
	creds  *credstore.Store
	api    *api.Client
	notify Notifier
	log    zerolog.Logger

	// Mutated only from confirmed outcomes. Callers are expected to invoke
	// login/logout serially from a single UI action at a time.
	authenticated bool
	user          *models.User
}

func NewManager(creds *credstore.Store, client *api.Client, notify Notifier, log zerolog.Logger) *Manager {
	if notify == nil {
		notify = nopNotifier{}
	}
	return &Manager{
		creds:  creds,
		api:    client,
		notify: notify,
		log:    log,
	}
}

func (m *Manager) Authenticated() bool {
	return m.authenticated
}

// User returns a copy of the current user, nil when unauthenticated.
func (m *Manager) User() *models.User {
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// CheckAuth restores the session from persisted credentials. Runs once at
// startup. A storage failure is logged and leaves the session unauthenticated;
// it is never surfaced to the caller.
func (m *Manager) CheckAuth(ctx context.Context) {
	creds, err := m.creds.Load()
	if err != nil {
		m.log.Error().Err(err).Msg("auth check failed")
		return
	}
	if !creds.Complete() {
		return
	}
	m.authenticated = true
	m.user = creds.User
	m.log.Debug().Str("user_id", creds.User.ID).Str("role", string(creds.User.Role)).Msg("session restored")
}

// Login authenticates against the server and, on success, persists the token
// and user before transitioning the session. A rejected login fails with an
// authentication error carrying the server's message.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	payload, err := m.api.Login(ctx, api.LoginInput{Email: email, Password: password})
	if err != nil {
		m.log.Warn().Err(err).Str("email", email).Msg("login failed")
		if apperr.Is(err, apperr.KindServer) {
			msg := apperr.UserMessage(err)
			if msg == "" {
				msg = "Login failed"
			}
			return apperr.New(apperr.KindAuthentication, msg)
		}
		return err
	}

	if err := m.adopt(payload); err != nil {
		return err
	}

	m.notify.Notify("Login Successful", fmt.Sprintf("Welcome back, %s!", payload.User.FullName))
	return nil
}

// Logout clears the persisted credentials and resets the session. A storage
// failure is surfaced; the in-memory state is left untouched so the caller
// can retry.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.creds.Clear(); err != nil {
		m.log.Error().Err(err).Msg("logout failed")
		return err
	}
	m.authenticated = false
	m.user = nil
	m.notify.Notify("Logged Out", "Come back soon!")
	return nil
}

// RegisterPatient creates a patient account and authenticates immediately:
// patients self-onboard.
func (m *Manager) RegisterPatient(ctx context.Context, input api.PatientRegistration) error {
	payload, err := m.api.RegisterPatient(ctx, input)
	if err != nil {
		m.log.Warn().Err(err).Str("email", input.Email).Msg("patient registration failed")
		if apperr.Is(err, apperr.KindServer) {
			msg := apperr.UserMessage(err)
			if msg == "" {
				msg = "Registration failed"
			}
			return apperr.New(apperr.KindAuthentication, msg)
		}
		return err
	}

	if err := m.adopt(payload); err != nil {
		return err
	}

	m.notify.Notify("Registration Successful", fmt.Sprintf("Welcome, %s!", payload.User.FullName))
	return nil
}

// RegisterNurse submits a nurse application. The session stays
// unauthenticated: the account is pending until an admin approves it, after
// which the nurse logs in separately.
func (m *Manager) RegisterNurse(ctx context.Context, input api.NurseRegistration) (models.NurseApplication, error) {
	app, err := m.api.RegisterNurse(ctx, input)
	if err != nil {
		m.log.Warn().Err(err).Str("email", input.Email).Msg("nurse registration failed")
		return models.NurseApplication{}, err
	}
	m.notify.Notify("Application Submitted", "Your account is pending admin approval.")
	return app, nil
}

// adopt persists the auth payload and flips the session to authenticated.
// Persistence failure means the login did not take effect.
func (m *Manager) adopt(payload api.AuthPayload) error {
	user := payload.User
	if err := m.creds.Save(credstore.Credentials{Token: payload.Token, User: &user}); err != nil {
		m.log.Error().Err(err).Msg("persist credentials failed")
		return err
	}
	m.authenticated = true
	m.user = &user
	return nil
}
