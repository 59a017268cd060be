package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/booking"
	"hospital-appointment-server/internal/utils"
)

// AvailabilityHandler manages a doctor's own availability windows.
type AvailabilityHandler struct {
	DB      *gorm.DB
	Service *booking.Service
}

// NewAvailabilityHandler creates a new AvailabilityHandler.
func NewAvailabilityHandler(db *gorm.DB, service *booking.Service) *AvailabilityHandler {
	return &AvailabilityHandler{DB: db, Service: service}
}

func (h *AvailabilityHandler) callerDoctor(c *gin.Context) (string, bool) {
	doctor, ok := callerDoctorProfile(c, h.DB)
	if !ok {
		return "", false
	}
	return doctor.ID, true
}

// AddWindowRequest represents the request body for declaring availability.
type AddWindowRequest struct {
	Date      string `json:"date" binding:"required"`      // YYYY-MM-DD
	StartTime string `json:"startTime" binding:"required"` // HH:MM
	EndTime   string `json:"endTime" binding:"required"`   // HH:MM
}

// AddWindow declares a new availability window for the calling doctor.
func (h *AvailabilityHandler) AddWindow(c *gin.Context) {
	var req AddWindowRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, ok := h.callerDoctor(c)
	if !ok {
		return
	}

	window, err := h.Service.AddWindow(c.Request.Context(), doctorID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Created(c, "Availability window added successfully", window)
}

// RemoveWindow deletes one of the calling doctor's windows.
func (h *AvailabilityHandler) RemoveWindow(c *gin.Context) {
	doctorID, ok := h.callerDoctor(c)
	if !ok {
		return
	}

	if err := h.Service.RemoveWindow(c.Request.Context(), c.Param("id"), doctorID); err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Availability window removed successfully", nil)
}

// ListWindows returns the calling doctor's windows for the booking
// horizon, including ones marked unavailable.
func (h *AvailabilityHandler) ListWindows(c *gin.Context) {
	doctorID, ok := h.callerDoctor(c)
	if !ok {
		return
	}

	from, to := h.Service.Horizon()
	windows, err := h.Service.ListWindows(c.Request.Context(), doctorID, from, to, false)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Availability windows fetched successfully", windows)
}
