package handlers

import (
	"errors"
	"net/http"

	availabilityRepo "vendly/database/repository/availability"
	bookingRepo "vendly/database/repository/booking"
	paymentRepo "vendly/database/repository/payment"
	serviceRepo "vendly/database/repository/service"
	"vendly/services/booking"
	"vendly/services/payment"
	"vendly/services/scheduling"
	"vendly/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError translates domain errors into HTTP statuses. Anything
// unrecognized is a 500 with the detail withheld from the client.
func respondServiceError(c *gin.Context, err error) {
	var (
		schedErr *scheduling.Error
		valErr   *booking.ValidationError
		authErr  *booking.AuthorizationError
	)

	switch {
	case errors.Is(err, bookingRepo.ErrBookingNotFound),
		errors.Is(err, paymentRepo.ErrPaymentNotFound),
		errors.Is(err, availabilityRepo.ErrTemplateNotFound),
		errors.Is(err, serviceRepo.ErrServiceNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())

	case errors.As(err, &valErr):
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())

	case errors.As(err, &authErr):
		utils.JSONError(c, http.StatusForbidden, "not permitted", err.Error())

	case booking.IsInvalidTransition(err), errors.Is(err, booking.ErrInsufficientNotice):
		utils.JSONError(c, http.StatusConflict, "operation not allowed", err.Error())

	case errors.As(err, &schedErr):
		status := http.StatusConflict
		if schedErr.Reason == scheduling.PastSchedule {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "scheduling rejected", "reason": schedErr.Reason, "details": schedErr.Detail})

	case payment.IsKind(err, payment.SignatureInvalid):
		utils.JSONError(c, http.StatusUnauthorized, "invalid signature", "webhook signature verification failed")

	case payment.IsKind(err, payment.ChargeNotFound):
		utils.JSONError(c, http.StatusNotFound, "charge not found", err.Error())

	case payment.IsKind(err, payment.GatewayUnavailable):
		utils.JSONError(c, http.StatusBadGateway, "payment gateway unavailable", "the charge could not be created; retry later")

	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "")
	}
}
