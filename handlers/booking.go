package handlers

import (
	"context"
	"net/http"
	"time"

	"vendly/models"
	"vendly/services/booking"
	"vendly/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes the booking lifecycle. Handlers stay thin: every
// guard and invariant lives in the booking service.
type BookingHandler struct {
	Bookings booking.Service
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req booking.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Confirm(c *gin.Context)  { h.transition(c, h.Bookings.ConfirmBooking) }
func (h *BookingHandler) Start(c *gin.Context)    { h.transition(c, h.Bookings.StartBooking) }
func (h *BookingHandler) Complete(c *gin.Context) { h.transition(c, h.Bookings.CompleteBooking) }

func (h *BookingHandler) Cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var input struct {
		Reason string `json:"reason"`
	}
	// Body is optional; an empty reason is allowed.
	_ = c.ShouldBindJSON(&input)

	result, err := h.Bookings.CancelBooking(c.Request.Context(), c.Param("id"), actor, input.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *BookingHandler) Reschedule(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var input struct {
		ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Bookings.RescheduleBooking(c.Request.Context(), c.Param("id"), input.ScheduledAt, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req booking.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	b, err := h.Bookings.UpdateBooking(c.Request.Context(), c.Param("id"), actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

func (h *BookingHandler) transition(c *gin.Context, op func(ctx context.Context, id string, actor models.Actor) (*models.Booking, error)) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	b, err := op(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}
