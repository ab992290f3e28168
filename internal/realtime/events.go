package realtime

import (
	"encoding/json"

	"patientcall/internal/models"
)

// Event names the server pushes over the live channel.
const (
	EventNewRequest           = "new_request"
	EventRequestAssigned      = "request_assigned"
	EventRequestStatusUpdated = "request_status_updated"
	EventNurseRegistered      = "nurse_registered"
)

// Envelope is the wire shape of every pushed event.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type NewRequestEvent struct {
	Request models.CareRequest `json:"request"`
	Patient *models.User       `json:"patient,omitempty"`
}

type AssignmentEvent struct {
	Request models.CareRequest `json:"request"`
	Nurse   *models.User       `json:"nurse,omitempty"`
}

type StatusUpdateEvent struct {
	Request   models.CareRequest   `json:"request"`
	OldStatus models.RequestStatus `json:"oldStatus"`
	NewStatus models.RequestStatus `json:"newStatus"`
}
