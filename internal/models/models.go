package models

import "time"

type UserRole string

const (
	UserRolePatient UserRole = "patient"
	UserRoleNurse   UserRole = "nurse"
	UserRoleAdmin   UserRole = "admin"
)

// User is the authenticated identity as the server reports it. Immutable on
// the client once fetched; replaced wholesale on re-login.
type User struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FullName  string   `json:"fullName"`
	Role      UserRole `json:"role"`
	NurseRole string   `json:"nurseRole,omitempty"`
}

type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
)

func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusAssigned   RequestStatus = "assigned"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether a request in this status can still move.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CareRequest is a patient-initiated service request. The server owns it; the
// client holds a read-mostly cache keyed by ID.
type CareRequest struct {
	ID          string          `json:"id"`
	PatientID   string          `json:"patientId,omitempty"`
	NurseID     string          `json:"nurseId,omitempty"`
	Description string          `json:"description"`
	Priority    RequestPriority `json:"priority"`
	Status      RequestStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

// NurseApplication is a nurse account awaiting admin review. Transitions
// pending to approved and pending to rejected are server-authoritative and terminal.
type NurseApplication struct {
	ID        string            `json:"id"`
	FullName  string            `json:"fullName"`
	Email     string            `json:"email"`
	NurseRole string            `json:"nurseRole"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}
