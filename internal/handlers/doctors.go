package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/booking"
	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/utils"
)

// DoctorDirectoryHandler serves the read-only doctor directory patients
// browse before booking.
type DoctorDirectoryHandler struct {
	DB      *gorm.DB
	Service *booking.Service
}

// NewDoctorDirectoryHandler creates a new DoctorDirectoryHandler.
func NewDoctorDirectoryHandler(db *gorm.DB, service *booking.Service) *DoctorDirectoryHandler {
	return &DoctorDirectoryHandler{DB: db, Service: service}
}

// ListDoctors returns active doctors, optionally filtered by a name
// search (?search=) and/or a specialization id (?specialization=).
func (h *DoctorDirectoryHandler) ListDoctors(c *gin.Context) {
	query := h.DB.Preload("Specialization").Where("is_active = ?", true)

	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if specializationID := c.Query("specialization"); specializationID != "" {
		query = query.Where("specialization_id = ?", specializationID)
	}

	var doctors []models.DoctorProfile
	if err := query.Order("name").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Doctors fetched successfully", doctors)
}

// DoctorDetail bundles a doctor profile with the open windows a patient
// can see. Availability is advisory: booking does not require a window.
type DoctorDetail struct {
	Doctor  models.DoctorProfile        `json:"doctor"`
	Windows []models.AvailabilityWindow `json:"availability"`
}

// GetDoctor returns one doctor with their open availability windows for
// the booking horizon.
func (h *DoctorDirectoryHandler) GetDoctor(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.DoctorProfile
	if err := h.DB.Preload("Specialization").
		First(&doctor, "id = ? AND is_active = ?", doctorID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	from, to := h.Service.Horizon()
	windows, err := h.Service.ListWindows(c.Request.Context(), doctor.ID, from, to, true)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Doctor fetched successfully", DoctorDetail{
		Doctor:  doctor,
		Windows: windows,
	})
}
