package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/utils"
)

// AdminHandler handles the administrative surface: directory management
// for doctors and patients plus the admin dashboard.
type AdminHandler struct {
	DB *gorm.DB
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{DB: db}
}

// AdminDashboard carries the admin landing-page counters.
type AdminDashboard struct {
	TotalDoctors       int64                `json:"totalDoctors"`
	TotalPatients      int64                `json:"totalPatients"`
	TotalAppointments  int64                `json:"totalAppointments"`
	BookedAppointments int64                `json:"bookedAppointments"`
	RecentAppointments []models.Appointment `json:"recentAppointments"`
}

// GetDashboard returns system-wide counters and the most recent
// appointments.
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	var dash AdminDashboard

	type counter struct {
		model  interface{}
		where  string
		args   []interface{}
		target *int64
	}
	counters := []counter{
		{&models.DoctorProfile{}, "", nil, &dash.TotalDoctors},
		{&models.PatientProfile{}, "", nil, &dash.TotalPatients},
		{&models.Appointment{}, "", nil, &dash.TotalAppointments},
		{&models.Appointment{}, "status = ?", []interface{}{models.StatusBooked}, &dash.BookedAppointments},
	}
	for _, cnt := range counters {
		query := h.DB.Model(cnt.model)
		if cnt.where != "" {
			query = query.Where(cnt.where, cnt.args...)
		}
		if err := query.Count(cnt.target).Error; err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
	}

	if err := h.DB.Order("created_at desc").Limit(5).
		Find(&dash.RecentAppointments).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	utils.Success(c, "Dashboard fetched successfully", dash)
}

// CreateDoctorRequest represents the request body for provisioning a
// doctor: the account and the profile are created together.
type CreateDoctorRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	SpecializationID string `json:"specializationId" binding:"required,uuid"`
	Phone            string `json:"phone"`
	Bio              string `json:"bio"`
	ExperienceYears  int    `json:"experienceYears"`
}

// CreateDoctor provisions a doctor account with its profile.
func (h *AdminHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	var spec models.Specialization
	if err := h.DB.First(&spec, "id = ?", req.SpecializationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.BadRequest(c, "Specialization not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	user := models.User{
		Email: req.Email,
		Role:  models.RoleDoctor,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	var profile models.DoctorProfile
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile = models.DoctorProfile{
			UserID:           user.ID,
			Name:             req.Name,
			SpecializationID: spec.ID,
			Phone:            req.Phone,
			Bio:              req.Bio,
			ExperienceYears:  req.ExperienceYears,
			IsActive:         true,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create doctor: "+err.Error())
		return
	}

	utils.Created(c, "Doctor created successfully", profile)
}

// ListDoctors returns every doctor profile, active or not, with an
// optional ?search= over name, phone and specialization name.
func (h *AdminHandler) ListDoctors(c *gin.Context) {
	query := h.DB.Model(&models.DoctorProfile{}).Preload("Specialization")
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.
			Joins("JOIN specializations ON specializations.id = doctor_profiles.specialization_id").
			Where("doctor_profiles.name LIKE ? OR doctor_profiles.phone LIKE ? OR specializations.name LIKE ?",
				pattern, pattern, pattern)
	}

	var doctors []models.DoctorProfile
	if err := query.Order("doctor_profiles.name").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}
	utils.Success(c, "Doctors fetched successfully", doctors)
}

// UpdateDoctorRequest represents the request body for editing a doctor
// profile. Zero-valued fields are left untouched.
type UpdateDoctorRequest struct {
	Name             string `json:"name"`
	SpecializationID string `json:"specializationId"`
	Phone            string `json:"phone"`
	Bio              string `json:"bio"`
	ExperienceYears  *int   `json:"experienceYears"`
	IsActive         *bool  `json:"isActive"`
}

// UpdateDoctor edits a doctor profile.
func (h *AdminHandler) UpdateDoctor(c *gin.Context) {
	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var doctor models.DoctorProfile
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.SpecializationID != "" {
		var spec models.Specialization
		if err := h.DB.First(&spec, "id = ?", req.SpecializationID).Error; err != nil {
			utils.BadRequest(c, "Specialization not found")
			return
		}
		doctor.SpecializationID = spec.ID
	}
	if req.Phone != "" {
		doctor.Phone = req.Phone
	}
	if req.Bio != "" {
		doctor.Bio = req.Bio
	}
	if req.ExperienceYears != nil {
		doctor.ExperienceYears = *req.ExperienceYears
	}
	if req.IsActive != nil {
		doctor.IsActive = *req.IsActive
	}

	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor updated successfully", doctor)
}

// DeleteDoctor removes a doctor profile together with its account.
func (h *AdminHandler) DeleteDoctor(c *gin.Context) {
	var doctor models.DoctorProfile
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&doctor).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", doctor.UserID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor deleted successfully", nil)
}

// CreatePatientRequest represents the request body for provisioning a
// patient from the admin side.
type CreatePatientRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Phone          string `json:"phone"`
	DateOfBirth    string `json:"dateOfBirth"`
	Address        string `json:"address"`
	MedicalHistory string `json:"medicalHistory"`
}

// CreatePatient provisions a patient account with its profile.
func (h *AdminHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	if req.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", req.DateOfBirth); err != nil {
			utils.BadRequest(c, "dateOfBirth must be YYYY-MM-DD")
			return
		}
	}

	user := models.User{
		Email: req.Email,
		Role:  models.RolePatient,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	var profile models.PatientProfile
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile = models.PatientProfile{
			UserID:         user.ID,
			Name:           req.Name,
			Phone:          req.Phone,
			DateOfBirth:    req.DateOfBirth,
			Address:        req.Address,
			MedicalHistory: req.MedicalHistory,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient created successfully", profile)
}

// ListPatients returns every patient profile with an optional ?search=
// over name, phone and account email.
func (h *AdminHandler) ListPatients(c *gin.Context) {
	query := h.DB.Model(&models.PatientProfile{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.
			Joins("JOIN users ON users.id = patient_profiles.user_id").
			Where("patient_profiles.name LIKE ? OR patient_profiles.phone LIKE ? OR users.email LIKE ?",
				pattern, pattern, pattern)
	}

	var patients []models.PatientProfile
	if err := query.Order("patient_profiles.name").Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// UpdatePatientRequest represents the request body for editing a patient
// profile. Zero-valued fields are left untouched.
type UpdatePatientRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	DateOfBirth    string `json:"dateOfBirth"`
	Address        string `json:"address"`
	MedicalHistory string `json:"medicalHistory"`
}

// UpdatePatient edits a patient profile.
func (h *AdminHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var patient models.PatientProfile
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.DateOfBirth != "" {
		if _, err := time.Parse("2006-01-02", req.DateOfBirth); err != nil {
			utils.BadRequest(c, "dateOfBirth must be YYYY-MM-DD")
			return
		}
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Name != "" {
		patient.Name = req.Name
	}
	if req.Phone != "" {
		patient.Phone = req.Phone
	}
	if req.Address != "" {
		patient.Address = req.Address
	}
	if req.MedicalHistory != "" {
		patient.MedicalHistory = req.MedicalHistory
	}

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// DeletePatient removes a patient profile together with its account.
func (h *AdminHandler) DeletePatient(c *gin.Context) {
	var patient models.PatientProfile
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&patient).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", patient.UserID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient deleted successfully", nil)
}
