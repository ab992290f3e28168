package devserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"patientcall/internal/models"
	"patientcall/internal/realtime"
	"patientcall/internal/security"
)

// Every endpoint answers the {success, data, message?} envelope the client
// expects, regardless of HTTP status.

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func okMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "message": message})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func failAbort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrPendingApproval):
			fail(c, http.StatusForbidden, "Your account is pending admin approval")
		case errors.Is(err, ErrAccountRejected):
			fail(c, http.StatusForbidden, "Your application was rejected")
		default:
			fail(c, http.StatusUnauthorized, "Invalid credentials")
		}
		return
	}

	s.respondWithToken(c, user)
}

type patientRegistrationRequest struct {
	FullName         string `json:"fullName" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	FullAddress      string `json:"fullAddress"`
	ContactNumber    string `json:"contactNumber"`
	EmergencyContact string `json:"emergencyContact"`
	RoomNumber       string `json:"roomNumber"`
	BedNumber        string `json:"bedNumber"`
	Disease          string `json:"disease"`
}

func (s *Server) handleRegisterPatient(c *gin.Context) {
	var req patientRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.CreatePatient(req.FullName, req.Email, req.Password, PatientProfile{
		FullAddress:      req.FullAddress,
		ContactNumber:    req.ContactNumber,
		EmergencyContact: req.EmergencyContact,
		RoomNumber:       req.RoomNumber,
		BedNumber:        req.BedNumber,
		Disease:          req.Disease,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			fail(c, http.StatusConflict, "Email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.respondWithToken(c, user)
}

type nurseRegistrationRequest struct {
	FullName      string `json:"fullName" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	ContactNumber string `json:"contactNumber"`
	NurseRole     string `json:"nurseRole" binding:"required"`
}

func (s *Server) handleRegisterNurse(c *gin.Context) {
	var req nurseRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	app, err := s.store.CreateNurse(req.FullName, req.Email, req.Password, req.NurseRole)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			fail(c, http.StatusConflict, "Email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, "Registration failed")
		return
	}

	s.hub.Broadcast(realtime.EventNurseRegistered, gin.H{"application": app})
	okMessage(c, app, "Registration submitted, pending admin approval")
}

// respondWithToken issues a bearer token; no token means the caller stays
// unauthenticated.
func (s *Server) respondWithToken(c *gin.Context, user models.User) {
	token, err := security.GenerateAccessToken(s.cfg.JWTSecret, user, s.cfg.JWTTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("token generation failed")
		fail(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	ok(c, gin.H{"token": token, "user": user})
}

func (s *Server) handleListNurses(c *gin.Context) {
	ok(c, s.store.ListApplications())
}

func (s *Server) handleApproveNurse(c *gin.Context) {
	s.transitionApplication(c, models.ApplicationApproved)
}

func (s *Server) handleRejectNurse(c *gin.Context) {
	s.transitionApplication(c, models.ApplicationRejected)
}

func (s *Server) transitionApplication(c *gin.Context, status models.ApplicationStatus) {
	app, err := s.store.TransitionApplication(c.Param("id"), status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			fail(c, http.StatusNotFound, "Application not found")
		case errors.Is(err, ErrNotPending):
			fail(c, http.StatusConflict, "Application already decided")
		default:
			fail(c, http.StatusInternalServerError, "Transition failed")
		}
		return
	}
	ok(c, app)
}

func (s *Server) handleListRequests(c *gin.Context) {
	status := models.RequestStatus(c.Query("status"))
	priority := models.RequestPriority(c.Query("priority"))
	if status != "" && !status.Valid() {
		fail(c, http.StatusBadRequest, "unknown status filter")
		return
	}
	if priority != "" && !priority.Valid() {
		fail(c, http.StatusBadRequest, "unknown priority filter")
		return
	}
	ok(c, s.store.ListRequests(currentUser(c), status, priority))
}

type createRequestRequest struct {
	Description string                 `json:"description" binding:"required"`
	Priority    models.RequestPriority `json:"priority" binding:"required"`
}

func (s *Server) handleCreateRequest(c *gin.Context) {
	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Priority.Valid() {
		fail(c, http.StatusBadRequest, "priority must be low, medium or high")
		return
	}

	user := currentUser(c)
	request := s.store.CreateRequest(user.ID, req.Description, req.Priority)

	s.hub.Broadcast(realtime.EventNewRequest, realtime.NewRequestEvent{
		Request: request,
		Patient: &user,
	})
	ok(c, request)
}

type updateStatusRequest struct {
	Status models.RequestStatus `json:"status" binding:"required"`
}

func (s *Server) handleUpdateRequestStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Status.Valid() {
		fail(c, http.StatusBadRequest, "unknown request status")
		return
	}

	actor := currentUser(c)
	old, request, err := s.store.UpdateRequestStatus(c.Param("id"), req.Status, actor)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			fail(c, http.StatusNotFound, "Request not found")
		case errors.Is(err, ErrBadTransition):
			fail(c, http.StatusConflict, "Invalid status transition")
		default:
			fail(c, http.StatusInternalServerError, "Update failed")
		}
		return
	}

	if request.Status == models.StatusAssigned {
		s.hub.Broadcast(realtime.EventRequestAssigned, realtime.AssignmentEvent{
			Request: request,
			Nurse:   &actor,
		})
	}
	s.hub.Broadcast(realtime.EventRequestStatusUpdated, realtime.StatusUpdateEvent{
		Request:   request,
		OldStatus: old,
		NewStatus: request.Status,
	})
	ok(c, request)
}

func (s *Server) handleHealth(c *gin.Context) {
	ok(c, gin.H{"status": "ok"})
}
