package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"hospital-appointment-server/internal/booking"
	"hospital-appointment-server/internal/utils"
)

// respondBookingError translates a booking error kind into an HTTP
// response. Anything unclassified is a real failure and becomes a 500.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, booking.ErrUnauthorized):
		utils.Forbidden(c, err.Error())
	case errors.Is(err, booking.ErrSlotConflict), errors.Is(err, booking.ErrDuplicateWindow):
		utils.Conflict(c, err.Error())
	case errors.Is(err, booking.ErrInvalidState),
		errors.Is(err, booking.ErrInvalidSlot),
		errors.Is(err, booking.ErrInvalidRange),
		errors.Is(err, booking.ErrValidation):
		utils.BadRequest(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
