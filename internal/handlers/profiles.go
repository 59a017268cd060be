package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/utils"
)

// callerPatientProfile resolves the calling user's patient profile and
// writes the error response itself when that fails.
func callerPatientProfile(c *gin.Context, db *gorm.DB) (*models.PatientProfile, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	profile, err := models.PatientProfileForUser(db, userID)
	if err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			utils.NotFound(c, "Patient profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return profile, true
}

// callerDoctorProfile resolves the calling user's doctor profile and
// writes the error response itself when that fails.
func callerDoctorProfile(c *gin.Context, db *gorm.DB) (*models.DoctorProfile, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	profile, err := models.DoctorProfileForUser(db, userID)
	if err != nil {
		if errors.Is(err, models.ErrProfileNotFound) {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return profile, true
}
