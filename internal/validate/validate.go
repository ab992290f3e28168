// Package validate holds the client-side form checks. A validation failure
// is resolved locally and never reaches the network.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"patientcall/internal/apperr"
	"patientcall/internal/models"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.New(apperr.KindValidation, fmt.Sprintf("%s is required", field))
	}
	return nil
}

func Email(value string) error {
	if !emailRx.MatchString(strings.TrimSpace(value)) {
		return apperr.New(apperr.KindValidation, "please enter a valid email address")
	}
	return nil
}

func Password(value string) error {
	if len(value) < 6 {
		return apperr.New(apperr.KindValidation, "password must be at least 6 characters")
	}
	return nil
}

func Priority(p models.RequestPriority) error {
	if !p.Valid() {
		return apperr.New(apperr.KindValidation, "priority must be low, medium or high")
	}
	return nil
}

func Status(s models.RequestStatus) error {
	if !s.Valid() {
		return apperr.New(apperr.KindValidation, "unknown request status")
	}
	return nil
}
