package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"patientcall/internal/api"
	"patientcall/internal/apperr"
	"patientcall/internal/config"
	"patientcall/internal/credstore"
	"patientcall/internal/log"
	"patientcall/internal/models"
	"patientcall/internal/realtime"
	"patientcall/internal/session"
)

const (
	adminEmail = "admin@test.local"
	adminPass  = "admin-secret"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv, err := NewServer("test", config.DevServerConfig{
		JWTSecret:   "test-secret",
		JWTTTL:      time.Hour,
		AdminEmail:  adminEmail,
		AdminPass:   adminPass,
		RedisStream: "patientcall:events",
	}, log.Discard(), nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)
	return ts
}

// clientEnv is one device: its own credential store, API client and session.
type clientEnv struct {
	session *session.Manager
	api     *api.Client
	creds   *credstore.Store
}

func newClientEnv(t *testing.T, baseURL string) *clientEnv {
	t.Helper()
	store := credstore.NewStore(t.TempDir())
	client := api.NewClient(config.APIConfig{BaseURL: baseURL, Timeout: 5 * time.Second}, store, log.Discard())
	return &clientEnv{
		session: session.NewManager(store, client, nil, log.Discard()),
		api:     client,
		creds:   store,
	}
}

func registerPatient(t *testing.T, env *clientEnv, email string) {
	t.Helper()
	err := env.session.RegisterPatient(context.Background(), api.PatientRegistration{
		FullName:   "Pat " + email,
		Email:      email,
		Password:   "patient-pw",
		RoomNumber: "12",
		BedNumber:  "B",
	})
	if err != nil {
		t.Fatalf("RegisterPatient: %v", err)
	}
}

func TestSeededAdminCanLogIn(t *testing.T) {
	ts := newTestServer(t)
	admin := newClientEnv(t, ts.URL)

	if err := admin.session.Login(context.Background(), adminEmail, adminPass); err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if got := admin.session.User().Role; got != models.UserRoleAdmin {
		t.Errorf("role = %s, want admin", got)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts := newTestServer(t)
	env := newClientEnv(t, ts.URL)

	err := env.session.Login(context.Background(), adminEmail, "wrongpass")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if !apperr.Is(err, apperr.KindAuthentication) {
		t.Errorf("kind = %v, want authentication", apperr.KindOf(err))
	}
	if got := apperr.UserMessage(err); got != "Invalid credentials" {
		t.Errorf("message = %q, want %q", got, "Invalid credentials")
	}
}

func TestNurseApprovalWorkflow(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	nurse := newClientEnv(t, ts.URL)
	app, err := nurse.session.RegisterNurse(ctx, api.NurseRegistration{
		FullName:  "New Nurse",
		Email:     "nurse@test.local",
		Password:  "nurse-pw",
		NurseRole: "icu",
	})
	if err != nil {
		t.Fatalf("RegisterNurse: %v", err)
	}
	if nurse.session.Authenticated() {
		t.Fatal("nurse registration must not authenticate")
	}

	// Pending applications block login.
	err = nurse.session.Login(ctx, "nurse@test.local", "nurse-pw")
	if err == nil {
		t.Fatal("pending nurse must not log in")
	}
	if got := apperr.UserMessage(err); got != "Your account is pending admin approval" {
		t.Errorf("message = %q", got)
	}

	admin := newClientEnv(t, ts.URL)
	if err := admin.session.Login(ctx, adminEmail, adminPass); err != nil {
		t.Fatal(err)
	}

	apps, err := admin.api.ListNurses(ctx)
	if err != nil {
		t.Fatalf("ListNurses: %v", err)
	}
	if len(apps) != 1 || apps[0].Status != models.ApplicationPending {
		t.Fatalf("applications = %+v", apps)
	}

	if err := admin.api.ApproveNurse(ctx, app.ID); err != nil {
		t.Fatalf("ApproveNurse: %v", err)
	}

	// Approval is terminal: deciding again fails and the client would leave
	// its local list unchanged.
	if err := admin.api.ApproveNurse(ctx, app.ID); err == nil {
		t.Fatal("re-approving must fail")
	} else if !apperr.Is(err, apperr.KindServer) {
		t.Errorf("kind = %v, want server", apperr.KindOf(err))
	}

	if err := nurse.session.Login(ctx, "nurse@test.local", "nurse-pw"); err != nil {
		t.Fatalf("approved nurse login: %v", err)
	}
	if got := nurse.session.User().Role; got != models.UserRoleNurse {
		t.Errorf("role = %s, want nurse", got)
	}
}

func TestRejectedNurseCannotLogIn(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	nurse := newClientEnv(t, ts.URL)
	app, err := nurse.session.RegisterNurse(ctx, api.NurseRegistration{
		FullName:  "Nurse",
		Email:     "reject@test.local",
		Password:  "nurse-pw",
		NurseRole: "general",
	})
	if err != nil {
		t.Fatal(err)
	}

	admin := newClientEnv(t, ts.URL)
	if err := admin.session.Login(ctx, adminEmail, adminPass); err != nil {
		t.Fatal(err)
	}
	if err := admin.api.RejectNurse(ctx, app.ID); err != nil {
		t.Fatalf("RejectNurse: %v", err)
	}

	err = nurse.session.Login(ctx, "reject@test.local", "nurse-pw")
	if err == nil {
		t.Fatal("rejected nurse must not log in")
	}
	if got := apperr.UserMessage(err); got != "Your application was rejected" {
		t.Errorf("message = %q", got)
	}
}

func TestRequestLifecycleAndVisibility(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	patient := newClientEnv(t, ts.URL)
	registerPatient(t, patient, "p1@test.local")

	other := newClientEnv(t, ts.URL)
	registerPatient(t, other, "p2@test.local")

	created, err := patient.api.CreateRequest(ctx, api.CreateRequestInput{
		Description: "need water",
		Priority:    models.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if created.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", created.Status)
	}

	// Patients only see their own requests.
	visible, err := other.api.ListRequests(ctx, api.RequestFilters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(visible) != 0 {
		t.Errorf("other patient sees %+v", visible)
	}

	admin := newClientEnv(t, ts.URL)
	if err := admin.session.Login(ctx, adminEmail, adminPass); err != nil {
		t.Fatal(err)
	}

	for _, status := range []models.RequestStatus{
		models.StatusAssigned, models.StatusInProgress, models.StatusCompleted,
	} {
		updated, err := admin.api.UpdateRequestStatus(ctx, created.ID, status)
		if err != nil {
			t.Fatalf("UpdateRequestStatus(%s): %v", status, err)
		}
		if updated.Status != status {
			t.Errorf("status = %s, want %s", updated.Status, status)
		}
	}

	// Completed is terminal.
	_, err = admin.api.UpdateRequestStatus(ctx, created.ID, models.StatusAssigned)
	if err == nil {
		t.Fatal("transition out of completed must fail")
	}
	if got := apperr.UserMessage(err); got != "Invalid status transition" {
		t.Errorf("message = %q", got)
	}
}

func TestRequestFilters(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	patient := newClientEnv(t, ts.URL)
	registerPatient(t, patient, "p1@test.local")

	if _, err := patient.api.CreateRequest(ctx, api.CreateRequestInput{Description: "a", Priority: models.PriorityLow}); err != nil {
		t.Fatal(err)
	}
	if _, err := patient.api.CreateRequest(ctx, api.CreateRequestInput{Description: "b", Priority: models.PriorityHigh}); err != nil {
		t.Fatal(err)
	}

	high, err := patient.api.ListRequests(ctx, api.RequestFilters{Priority: models.PriorityHigh})
	if err != nil {
		t.Fatal(err)
	}
	if len(high) != 1 || high[0].Description != "b" {
		t.Errorf("filtered = %+v", high)
	}
}

func TestPatientCannotReviewNurses(t *testing.T) {
	ts := newTestServer(t)
	patient := newClientEnv(t, ts.URL)
	registerPatient(t, patient, "p1@test.local")

	_, err := patient.api.ListNurses(context.Background())
	if err == nil {
		t.Fatal("expected role rejection")
	}
	if !apperr.Is(err, apperr.KindServer) {
		t.Errorf("kind = %v, want server", apperr.KindOf(err))
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	first := newClientEnv(t, ts.URL)
	registerPatient(t, first, "dup@test.local")

	second := newClientEnv(t, ts.URL)
	err := second.session.RegisterPatient(ctx, api.PatientRegistration{
		FullName: "Dup",
		Email:    "dup@test.local",
		Password: "patient-pw",
	})
	if err == nil {
		t.Fatal("duplicate email must fail")
	}
	if got := apperr.UserMessage(err); got != "Email already registered" {
		t.Errorf("message = %q", got)
	}
}

func TestPushEventsReachSubscribedChannel(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	patient := newClientEnv(t, ts.URL)
	registerPatient(t, patient, "p1@test.local")

	channel := realtime.NewChannel(config.SocketConfig{
		URL:              ts.URL,
		HandshakeTimeout: 2 * time.Second,
	}, patient.creds, log.Discard())
	t.Cleanup(channel.Disconnect)

	newRequests := make(chan realtime.NewRequestEvent, 1)
	statusUpdates := make(chan realtime.StatusUpdateEvent, 2)
	channel.OnNewRequest(func(ev realtime.NewRequestEvent) { newRequests <- ev })
	channel.OnRequestStatusUpdated(func(ev realtime.StatusUpdateEvent) { statusUpdates <- ev })

	channel.Connect(ctx)
	if !channel.Connected() {
		t.Fatal("channel failed to connect")
	}

	created, err := patient.api.CreateRequest(ctx, api.CreateRequestInput{
		Description: "need help",
		Priority:    models.PriorityMedium,
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-newRequests:
		if ev.Request.ID != created.ID {
			t.Errorf("event request id = %s, want %s", ev.Request.ID, created.ID)
		}
		if ev.Patient == nil || ev.Patient.Email != "p1@test.local" {
			t.Errorf("event patient = %+v", ev.Patient)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("new_request never arrived")
	}

	admin := newClientEnv(t, ts.URL)
	if err := admin.session.Login(ctx, adminEmail, adminPass); err != nil {
		t.Fatal(err)
	}
	if _, err := admin.api.UpdateRequestStatus(ctx, created.ID, models.StatusAssigned); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-statusUpdates:
		if ev.OldStatus != models.StatusPending || ev.NewStatus != models.StatusAssigned {
			t.Errorf("transition = %s -> %s", ev.OldStatus, ev.NewStatus)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request_status_updated never arrived")
	}
}

func TestSocketUpgradeRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	channel := realtime.NewChannel(config.SocketConfig{
		URL:              ts.URL,
		HandshakeTimeout: 2 * time.Second,
	}, credstore.NewStore(t.TempDir()), log.Discard())

	channel.Connect(context.Background())
	if channel.Connected() {
		t.Fatal("unauthenticated connect must be a no-op")
	}

	// Dial the endpoint directly; the client short-circuits before sending
	// anything, so the server-side rejection needs its own handshake.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		conn.Close()
		t.Fatal("handshake without a token must be rejected")
	}
	if resp == nil {
		t.Fatal("no handshake response")
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	badToken, badResp, err := websocket.DefaultDialer.Dial(wsURL+"?token=garbage", nil)
	if err == nil {
		badToken.Close()
		t.Fatal("handshake with a bogus token must be rejected")
	}
	if badResp == nil || badResp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bogus token response = %+v, want 401", badResp)
	}
}
