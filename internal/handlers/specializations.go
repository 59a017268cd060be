package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/utils"
)

// SpecializationHandler handles specialization management (admin) and the
// public listing used by the doctor search.
type SpecializationHandler struct {
	DB *gorm.DB
}

// NewSpecializationHandler creates a new SpecializationHandler.
func NewSpecializationHandler(db *gorm.DB) *SpecializationHandler {
	return &SpecializationHandler{DB: db}
}

// ListSpecializations returns all specializations.
func (h *SpecializationHandler) ListSpecializations(c *gin.Context) {
	var specs []models.Specialization
	if err := h.DB.Order("name").Find(&specs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch specializations: "+err.Error())
		return
	}
	utils.Success(c, "Specializations fetched successfully", specs)
}

// SpecializationRequest represents the request body for creating or
// updating a specialization.
type SpecializationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateSpecialization adds a new specialization (admin).
func (h *SpecializationHandler) CreateSpecialization(c *gin.Context) {
	var req SpecializationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existing models.Specialization
	if err := h.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Specialization already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	spec := models.Specialization{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.DB.Create(&spec).Error; err != nil {
		utils.InternalServerError(c, "Failed to create specialization: "+err.Error())
		return
	}

	utils.Created(c, "Specialization created successfully", spec)
}

// UpdateSpecialization updates a specialization's name or description (admin).
func (h *SpecializationHandler) UpdateSpecialization(c *gin.Context) {
	specID := c.Param("id")

	var req SpecializationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var spec models.Specialization
	if err := h.DB.First(&spec, "id = ?", specID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Specialization not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var existing models.Specialization
	if err := h.DB.Where("name = ? AND id != ?", req.Name, spec.ID).First(&existing).Error; err == nil {
		utils.BadRequest(c, "Specialization name already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	spec.Name = req.Name
	spec.Description = req.Description
	if err := h.DB.Save(&spec).Error; err != nil {
		utils.InternalServerError(c, "Failed to update specialization: "+err.Error())
		return
	}

	utils.Success(c, "Specialization updated successfully", spec)
}

// DeleteSpecialization removes a specialization (admin). Deletion is
// refused while any doctor still references it.
func (h *SpecializationHandler) DeleteSpecialization(c *gin.Context) {
	specID := c.Param("id")

	var spec models.Specialization
	if err := h.DB.First(&spec, "id = ?", specID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Specialization not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var doctorCount int64
	if err := h.DB.Model(&models.DoctorProfile{}).
		Where("specialization_id = ?", spec.ID).
		Count(&doctorCount).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if doctorCount > 0 {
		utils.Conflict(c, "Cannot delete specialization with associated doctors")
		return
	}

	if err := h.DB.Delete(&spec).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete specialization: "+err.Error())
		return
	}

	utils.Success(c, "Specialization deleted successfully", nil)
}
