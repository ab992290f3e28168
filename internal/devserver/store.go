package devserver

import (
	"errors"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"patientcall/internal/models"
	"patientcall/internal/security"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("account pending approval")
	ErrAccountRejected    = errors.New("account rejected")
	ErrNotFound           = errors.New("not found")
	ErrNotPending         = errors.New("application is not pending")
	ErrBadTransition      = errors.New("invalid status transition")
)

// PatientProfile carries the intake fields collected at patient registration.
type PatientProfile struct {
	FullAddress      string
	ContactNumber    string
	EmergencyContact string
	RoomNumber       string
	BedNumber        string
	Disease          string
}

type account struct {
	user         models.User
	passwordHash []byte
	patient      *PatientProfile
}

// Store is the reference server's in-memory state. It exists so the client
// can be exercised end to end without external services; it is not a durable
// backend.
type Store struct {
	mu       sync.Mutex
	byEmail  map[string]*account
	byID     map[string]*account
	apps     map[string]*models.NurseApplication
	appOrder []string
	requests map[string]*models.CareRequest
	reqOrder []string
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		byEmail:  make(map[string]*account),
		byID:     make(map[string]*account),
		apps:     make(map[string]*models.NurseApplication),
		requests: make(map[string]*models.CareRequest),
		now:      time.Now,
	}
}

// SeedAdmin provisions the admin account; admins never self-register.
func (s *Store) SeedAdmin(fullName, email, password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		return ErrEmailTaken
	}
	acc := &account{
		user: models.User{
			ID:       ksuid.New().String(),
			Email:    email,
			FullName: fullName,
			Role:     models.UserRoleAdmin,
		},
		passwordHash: hash,
	}
	s.byEmail[email] = acc
	s.byID[acc.user.ID] = acc
	return nil
}

func (s *Store) CreatePatient(fullName, email, password string, profile PatientProfile) (models.User, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		return models.User{}, ErrEmailTaken
	}

	acc := &account{
		user: models.User{
			ID:       ksuid.New().String(),
			Email:    email,
			FullName: fullName,
			Role:     models.UserRolePatient,
		},
		passwordHash: hash,
		patient:      &profile,
	}
	s.byEmail[email] = acc
	s.byID[acc.user.ID] = acc
	return acc.user, nil
}

// CreateNurse registers a nurse account and its pending application. The
// account cannot log in until an admin approves the application.
func (s *Store) CreateNurse(fullName, email, password, nurseRole string) (models.NurseApplication, error) {
	hash, err := security.HashPassword(password)
	if err != nil {
		return models.NurseApplication{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[email]; exists {
		return models.NurseApplication{}, ErrEmailTaken
	}

	acc := &account{
		user: models.User{
			ID:        ksuid.New().String(),
			Email:     email,
			FullName:  fullName,
			Role:      models.UserRoleNurse,
			NurseRole: nurseRole,
		},
		passwordHash: hash,
	}
	s.byEmail[email] = acc
	s.byID[acc.user.ID] = acc

	app := &models.NurseApplication{
		ID:        acc.user.ID,
		FullName:  fullName,
		Email:     email,
		NurseRole: nurseRole,
		Status:    models.ApplicationPending,
		CreatedAt: s.now(),
	}
	s.apps[app.ID] = app
	s.appOrder = append(s.appOrder, app.ID)
	return *app, nil
}

func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.Lock()
	acc, exists := s.byEmail[email]
	s.mu.Unlock()
	if !exists {
		return models.User{}, ErrInvalidCredentials
	}

	ok, err := security.VerifyPassword(password, acc.passwordHash)
	if err != nil || !ok {
		return models.User{}, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if acc.user.Role == models.UserRoleNurse {
		if app := s.apps[acc.user.ID]; app != nil {
			switch app.Status {
			case models.ApplicationPending:
				return models.User{}, ErrPendingApproval
			case models.ApplicationRejected:
				return models.User{}, ErrAccountRejected
			}
		}
	}
	return acc.user, nil
}

func (s *Store) GetUser(id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, exists := s.byID[id]
	if !exists {
		return models.User{}, ErrNotFound
	}
	return acc.user, nil
}

func (s *Store) ListApplications() []models.NurseApplication {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.NurseApplication, 0, len(s.appOrder))
	for _, id := range s.appOrder {
		out = append(out, *s.apps[id])
	}
	return out
}

// TransitionApplication moves a pending application to approved or rejected.
// Both are terminal; re-approving or un-rejecting fails.
func (s *Store) TransitionApplication(id string, status models.ApplicationStatus) (models.NurseApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, exists := s.apps[id]
	if !exists {
		return models.NurseApplication{}, ErrNotFound
	}
	if app.Status != models.ApplicationPending {
		return models.NurseApplication{}, ErrNotPending
	}
	app.Status = status
	return *app, nil
}

func (s *Store) CreateRequest(patientID, description string, priority models.RequestPriority) models.CareRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	req := &models.CareRequest{
		ID:          ksuid.New().String(),
		PatientID:   patientID,
		Description: description,
		Priority:    priority,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.requests[req.ID] = req
	s.reqOrder = append(s.reqOrder, req.ID)
	return *req
}

// ListRequests returns requests visible to the user: patients see their own,
// nurses and admins see everything. Filters narrow by status and priority.
func (s *Store) ListRequests(user models.User, status models.RequestStatus, priority models.RequestPriority) []models.CareRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CareRequest, 0, len(s.reqOrder))
	for _, id := range s.reqOrder {
		req := s.requests[id]
		if user.Role == models.UserRolePatient && req.PatientID != user.ID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		if priority != "" && req.Priority != priority {
			continue
		}
		out = append(out, *req)
	}
	return out
}

var allowedTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.StatusPending:    {models.StatusAssigned, models.StatusCancelled},
	models.StatusAssigned:   {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

// UpdateRequestStatus applies a lifecycle transition and returns the previous
// status alongside the updated request. Assigning a request records the
// acting nurse.
func (s *Store) UpdateRequestStatus(id string, status models.RequestStatus, actor models.User) (models.RequestStatus, models.CareRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, exists := s.requests[id]
	if !exists {
		return "", models.CareRequest{}, ErrNotFound
	}

	allowed := false
	for _, next := range allowedTransitions[req.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", models.CareRequest{}, ErrBadTransition
	}

	old := req.Status
	req.Status = status
	req.UpdatedAt = s.now()
	if status == models.StatusAssigned && actor.Role == models.UserRoleNurse {
		req.NurseID = actor.ID
	}
	return old, *req, nil
}
