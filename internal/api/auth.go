package api

import (
	"context"
	"net/http"

	"patientcall/internal/models"
)

// AuthPayload is the data block of a successful login or patient
// registration: a bearer token plus the authenticated user.
type AuthPayload struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PatientRegistration struct {
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullAddress      string `json:"fullAddress"`
	ContactNumber    string `json:"contactNumber"`
	EmergencyContact string `json:"emergencyContact"`
	RoomNumber       string `json:"roomNumber"`
	BedNumber        string `json:"bedNumber"`
	Disease          string `json:"disease"`
}

type NurseRegistration struct {
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	ContactNumber string `json:"contactNumber"`
	NurseRole     string `json:"nurseRole"`
}

func (c *Client) Login(ctx context.Context, input LoginInput) (AuthPayload, error) {
	var payload AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, input, &payload); err != nil {
		return AuthPayload{}, err
	}
	return payload, nil
}

func (c *Client) RegisterPatient(ctx context.Context, input PatientRegistration) (AuthPayload, error) {
	var payload AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/register-patient", nil, input, &payload); err != nil {
		return AuthPayload{}, err
	}
	return payload, nil
}

// RegisterNurse submits a nurse application. No token comes back: the account
// stays pending until an admin approves it.
func (c *Client) RegisterNurse(ctx context.Context, input NurseRegistration) (models.NurseApplication, error) {
	var app models.NurseApplication
	if err := c.do(ctx, http.MethodPost, "/api/auth/register-nurse", nil, input, &app); err != nil {
		return models.NurseApplication{}, err
	}
	return app, nil
}
