package ginserver

import (
	"errors"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fleetbook/internal/app/commands"
	"fleetbook/internal/app/dto"
	bookingapp "fleetbook/internal/app/handlers/booking"
	"fleetbook/internal/app/policies"
	"fleetbook/internal/app/queries"
	domainbooking "fleetbook/internal/domain/booking"
	domainrates "fleetbook/internal/domain/rates"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	CustomerID            string    `json:"customer_id"`
	CarID                 string    `json:"car_id"`
	Type                  string    `json:"type"`
	Start                 time.Time `json:"start"`
	End                   time.Time `json:"end"`
	PickupAddress         string    `json:"pickup_address"`
	DropOffAddress        string    `json:"drop_off_address"`
	IncludeSecurityDetail bool      `json:"include_security_detail"`
	SubmittedTotal        string    `json:"submitted_total"`
}

func (h BookingHandler) Create(c *gin.Context) {
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	submitted := decimal.Zero
	if req.SubmittedTotal != "" {
		var err error
		submitted, err = decimal.NewFromString(req.SubmittedTotal)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submitted_total"})
			return
		}
	}
	cmd := bookingapp.CreateBookingCommand{
		CommandID:             uuid.NewString(),
		CustomerID:            req.CustomerID,
		CarID:                 req.CarID,
		Type:                  domainbooking.BookingType(req.Type),
		Start:                 req.Start,
		End:                   req.End,
		PickupAddress:         req.PickupAddress,
		DropOffAddress:        req.DropOffAddress,
		IncludeSecurityDetail: req.IncludeSecurityDetail,
		SubmittedTotal:        submitted,
	}
	result, err := commands.Dispatch[bookingapp.CreateBookingCommand, *bookingapp.CreateBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

type confirmBookingRequest struct {
	IntentID string `json:"intent_id"`
}

func (h BookingHandler) Confirm(c *gin.Context) {
	var req confirmBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.ConfirmBookingCommand{BookingID: c.Param("id"), IntentID: req.IntentID}
	result, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, *bookingapp.ConfirmBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Cancel(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.CancelBookingCommand{BookingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.CancelBookingCommand, *bookingapp.CancelBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type rejectBookingRequest struct {
	Reason string `json:"reason"`
}

func (h BookingHandler) Reject(c *gin.Context) {
	var req rejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.RejectBookingCommand{BookingID: c.Param("id"), Reason: req.Reason}
	result, err := commands.Dispatch[bookingapp.RejectBookingCommand, *bookingapp.RejectBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Activate(c *gin.Context) {
	cmd := bookingapp.ActivateBookingCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.ActivateBookingCommand, *bookingapp.TransitionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Complete(c *gin.Context) {
	cmd := bookingapp.CompleteBookingCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.CompleteBookingCommand, *bookingapp.TransitionResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) PaymentIntent(c *gin.Context) {
	cmd := bookingapp.RequestPaymentIntentCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.RequestPaymentIntentCommand, *bookingapp.PaymentIntentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

type assignChauffeurRequest struct {
	ChauffeurID string `json:"chauffeur_id"`
}

func (h BookingHandler) AssignChauffeur(c *gin.Context) {
	var req assignChauffeurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.AssignChauffeurCommand{BookingID: c.Param("id"), ChauffeurID: req.ChauffeurID}
	result, err := commands.Dispatch[bookingapp.AssignChauffeurCommand, *bookingapp.ChauffeurResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) UnassignChauffeur(c *gin.Context) {
	cmd := bookingapp.UnassignChauffeurCommand{BookingID: c.Param("id")}
	result, err := commands.Dispatch[bookingapp.UnassignChauffeurCommand, *bookingapp.ChauffeurResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := bookingapp.GetBookingQuery{BookingID: c.Param("id")}
	view, err := queries.Ask[bookingapp.GetBookingQuery, *dto.BookingView](c.Request.Context(), h.Queries, q)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h BookingHandler) GetByReference(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return
	}
	q := bookingapp.GetBookingByReferenceQuery{Reference: c.Param("reference")}
	view, err := queries.Ask[bookingapp.GetBookingByReferenceQuery, *dto.BookingView](c.Request.Context(), h.Queries, q)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// statusFor maps domain rejections to HTTP statuses so clients can tell
// validation failures from conflicts.
func statusFor(err error) int {
	var mismatch *domainbooking.AmountMismatchError
	switch {
	case errors.Is(err, domainbooking.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainbooking.ErrVersionConflict):
		return http.StatusConflict
	case domainbooking.IsTransitionRejected(err):
		return http.StatusConflict
	case domainbooking.IsIneligible(err):
		return http.StatusUnprocessableEntity
	case errors.As(err, &mismatch):
		return http.StatusConflict
	case errors.Is(err, policies.ErrPaymentNotSettled):
		return http.StatusPaymentRequired
	case errors.Is(err, domainbooking.ErrInvalidPeriod),
		errors.Is(err, domainbooking.ErrUnknownType),
		errors.Is(err, domainbooking.ErrSameDayCutoff),
		errors.Is(err, domainbooking.ErrPeriodInThePast):
		return http.StatusBadRequest
	case errors.Is(err, domainrates.ErrRateUnavailable):
		return http.StatusFailedDependency
	default:
		return http.StatusInternalServerError
	}
}

var _ BookingHTTP = BookingHandler{}
